package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/pipeline"
)

// inspectCommand creates the inspect command, an interactive browser over
// the answers of a saved response. Selecting an answer renders the graph
// with that answer highlighted.
func (c *CLI) inspectCommand() *cobra.Command {
	var formatsStr string
	var plain bool
	opts := renderOpts{highlight: noHighlight}

	cmd := &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Browse the answers of a query response",
		Long: `Inspect lists every answer of a query response with its branches,
bindings and instantiated edges. Press enter on an answer to render the
graph with that answer highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runInspect(cmd, args[0], plain, &opts)
		},
	}

	opts.addFlags(cmd, &formatsStr)
	cmd.Flags().BoolVar(&plain, "plain", false, "print the answer table once instead of starting the browser")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, plain bool, opts *renderOpts) error {
	ctx := cmd.Context()

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
	g, err := runner.Materialize(ctx, resp.Response)
	if err != nil {
		return err
	}

	draw := convert.EdgesToDraw(resp.Structure, cfg.Structure)
	if opts.drawAll {
		draw = convert.DrawAll(resp.Structure)
	}
	model := NewAnswerListModel(summarizeAnswers(resp.Response, g, draw))

	if plain {
		model.Height = max(len(model.Answers), 1)
		model.Detail = false
		fmt.Fprint(cmd.OutOrStdout(), model.View())
		return nil
	}

	teaOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(cmd.ErrOrStderr())}
	if input == stdinArg {
		// The response already consumed stdin.
		teaOpts = append(teaOpts, tea.WithInputTTY())
	}
	final, err := tea.NewProgram(model, teaOpts...).Run()
	if err != nil {
		return err
	}
	m, ok := final.(AnswerListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	opts.highlight = *m.Selected
	opts.coords = ""
	newStatus(cmd.ErrOrStderr()).info("Highlighting answer %d", opts.highlight)
	return c.execute(ctx, cmd, runner, resp, baseName(input), opts)
}
