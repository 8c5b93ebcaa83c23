package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/query"
)

// queryResponse is a decoded response and where it came from.
type queryResponse struct {
	*query.Response
	source string
}

// materializeCommand creates the materialize command, which prints the
// logical graph of a saved query response.
func (c *CLI) materializeCommand() *cobra.Command {
	var output string
	var indent bool

	cmd := &cobra.Command{
		Use:   "materialize <file|->",
		Short: "Build the logical graph of a query response",
		Long: `Materialize reads a TypeDB query response (the JSON body returned by
POST /v1/query) and writes its logical graph: every vertex once, and for
each answer the edges instantiated from the query structure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMaterialize(cmd, args[0], output, indent)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")

	return cmd
}

func (c *CLI) runMaterialize(cmd *cobra.Command, input, output string, indent bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	resp, err := loadResponse(runner, input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	sw := startStopwatch(logger)
	g, err := runner.Materialize(ctx, resp.Response)
	if err != nil {
		return err
	}
	sw.done("Materialized", "answers", len(g.Answers), "source", resp.source)

	var data []byte
	if indent {
		data, err = json.MarshalIndent(g, "", "  ")
	} else {
		data, err = json.Marshal(g)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode logical graph")
	}
	data = append(data, '\n')

	if err := writeOutput(output, data, cmd.OutOrStdout()); err != nil {
		return err
	}
	if output != "" {
		st := newStatus(cmd.ErrOrStderr())
		st.success("Logical graph: %d vertices, %d edges", len(g.Vertices), g.EdgeCount())
		st.file(output)
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == stdinArg {
		_, err := stdout.Write(data)
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
