package main

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/matzehuels/polaroid/internal/cli"
	"github.com/matzehuels/polaroid/pkg/buildinfo"
	perrors "github.com/matzehuels/polaroid/pkg/errors"
)

func main() {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	// fang adds styled help and errors, completions, man pages and --version,
	// and cancels the context on SIGINT/SIGTERM.
	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(buildinfo.Version),
		fang.WithCommit(buildinfo.Commit),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
		fang.WithErrorHandler(handleError),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		os.Exit(1)
	}
}

// handleError prints errors without their internal code prefix. Interrupts
// are silent.
func handleError(w io.Writer, styles fang.Styles, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	fang.DefaultErrorHandler(w, styles, errors.New(perrors.UserMessage(err)))
}
