package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/internal/cli"
	tverrors "github.com/matzehuels/typeviz/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	c := cli.New(os.Stderr, cli.LogInfo)

	err := run(ctx, c)
	cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		c.Logger.Error(tverrors.UserMessage(err), "code", tverrors.GetCode(err))
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error to a process status: 2 for bad arguments or
// configuration, 130 for an interrupt, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	switch tverrors.GetCode(err) {
	case tverrors.ErrCodeInvalidInput, tverrors.ErrCodeInvalidConfig, tverrors.ErrCodeInvalidPath, tverrors.ErrCodeFileNotFound:
		return 2
	}
	return 1
}

func run(ctx context.Context, c *cli.CLI) error {
	var verbose bool

	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline, cache and TypeDB events")

	setup := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if setup != nil {
			return setup(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
