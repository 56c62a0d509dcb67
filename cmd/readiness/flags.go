package main

import (
	"strings"

	"github.com/aretw0/readiness/pkg/ports"
	"github.com/spf13/cobra"
)

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// probeLine returns the first output line of a successful probe, or "".
func probeLine(cmd *cobra.Command, c ports.Capturer, target string, args ...string) string {
	res := c.Capture(cmd.Context(), target, args...)
	if !res.OK() {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Output), "\n")
	return strings.TrimSpace(line)
}
