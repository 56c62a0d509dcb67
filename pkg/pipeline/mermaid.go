package pipeline

import (
	"fmt"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
)

// Overlay carries the verdicts read from existing artifacts.
type Overlay struct {
	Verdicts map[string]domain.Verdict
}

// Mermaid renders g as a flowchart.
//
// Stage nodes are rectangles, external artifacts parallelograms and run
// reports subroutines. Optional edges are dotted and plan-to-step edges
// thick. With an overlay, nodes
// are classed by the verdict of their artifact.
func Mermaid(g Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range g.Nodes {
		opener, closer := "[", "]"
		switch n.Kind {
		case KindExternal:
			opener, closer = "[/", "/]"
		case KindRunReport:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, n.ID, closer)
	}

	for _, e := range g.Edges {
		arrow := "-->"
		switch {
		case e.Runs:
			arrow = "== runs ==>"
		case e.Optional:
			arrow = "-. optional .->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.From), arrow, mermaidID(e.To))
	}

	if overlay != nil && len(overlay.Verdicts) > 0 {
		sb.WriteString("\n    %% Verdicts\n")
		sb.WriteString("    classDef ready fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef blocked fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef missing fill:#fff9c4,stroke:#f9a825,stroke-width:2px,color:#000;\n")
		for _, n := range g.Nodes {
			v, ok := overlay.Verdicts[n.ID]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", mermaidID(n.ID), verdictClass(v))
		}
	}

	return sb.String()
}

func verdictClass(v domain.Verdict) string {
	switch {
	case v.IsReadyClass():
		return "ready"
	case v == domain.VerdictMissingInputs || v == "":
		return "missing"
	default:
		return "blocked"
	}
}

func mermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_").Replace(id)
}
