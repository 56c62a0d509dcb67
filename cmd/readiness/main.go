package main

import (
	"context"
	"os"

	"github.com/aretw0/readiness/internal/cli"
)

func main() {
	ctx := cli.NewSignalContext(context.Background())
	code := Execute(ctx)
	ctx.Cancel()
	os.Exit(code)
}
