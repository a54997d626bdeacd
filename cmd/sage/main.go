// Package main provides the entry point for the sage CLI.
package main

import (
	"context"
	"os"

	"github.com/sage-cli/sage/internal/cli"
	"github.com/sage-cli/sage/internal/signal"
)

// Build-time variables set via ldflags.
var (
	version = "dev"     //nolint:gochecknoglobals // Set via ldflags
	commit  = "none"    //nolint:gochecknoglobals // Set via ldflags
	date    = "unknown" //nolint:gochecknoglobals // Set via ldflags
)

func main() {
	h := signal.NewHandler(context.Background())
	defer h.Stop()

	err := cli.Execute(h.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
