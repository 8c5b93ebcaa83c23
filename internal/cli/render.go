package cli

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/pipeline"
	"github.com/matzehuels/typeviz/pkg/query"
)

// noHighlight is the --highlight value meaning "highlight nothing".
const noHighlight = -1

// renderOpts holds the command-line flags shared by render and query.
type renderOpts struct {
	output    string   // output file (single format) or base path (several)
	formats   []string // logical, json, dot, svg, png
	highlight int      // answer index to highlight, or noHighlight
	coords    string   // "branch,constraint" of a structure edge to highlight
	detailed  bool     // label edges with answer and structure coordinates
	drawAll   bool     // draw edges the structure parameters would hide
}

func (o *renderOpts) addFlags(cmd *cobra.Command, formatsStr *string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (several formats)")
	cmd.Flags().StringVarP(formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json, logical (comma-separated)")
	cmd.Flags().IntVar(&o.highlight, "highlight", noHighlight, "highlight the edges of one answer (0-based)")
	cmd.Flags().StringVar(&o.coords, "coords", "", "highlight the edges one structure edge produced, as branch,constraint")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "label edges with answer and structure coordinates")
	cmd.Flags().BoolVar(&o.drawAll, "draw-all", false, "draw isa/sub/relates/plays edges to type labels too")
}

// pipelineOptions converts the flags into pipeline options.
func (o *renderOpts) pipelineOptions() (pipeline.Options, error) {
	opts := pipeline.Options{
		Formats:  o.formats,
		Detailed: o.detailed,
		DrawAll:  o.drawAll,
	}
	if o.highlight != noHighlight {
		h := o.highlight
		opts.Highlight = &h
	}
	if o.coords != "" {
		c, err := query.ParseCoordinates(o.coords)
		if err != nil {
			return opts, err
		}
		opts.HighlightCoordinates = &c
	}
	return opts, nil
}

// renderCommand creates the render command for a saved query response.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{highlight: noHighlight}

	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render a query response as a graph",
		Long: `Render materializes a TypeDB query response, replays the edges its
structure selects and writes the resulting graph in each requested format.`,
		Example: `  typeviz render answers.json
  typeviz render answers.json -f svg,dot --highlight 2 -o friends
  typeviz render answers.json --coords 0,1 --detailed
  curl -s ... | typeviz render - -f json -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}
	opts.addFlags(cmd, &formatsStr)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
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
	return c.execute(ctx, cmd, runner, resp, baseName(input), opts)
}

// execute runs the pipeline on resp and writes every artifact.
func (c *CLI) execute(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, resp *queryResponse, name string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", resp.source)

	popts, err := opts.pipelineOptions()
	if err != nil {
		return err
	}
	sw := startStopwatch(logger)
	result, err := runner.Execute(ctx, resp.Response, popts)
	if err != nil {
		return err
	}
	sw.done("Rendered", "formats", strings.Join(opts.formats, ","))

	paths := outputPaths(opts.output, name, opts.formats)
	for _, format := range opts.formats {
		if err := writeOutput(paths[format], result.Artifacts[format], cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	if opts.output == stdinArg {
		return nil
	}
	st := newStatus(cmd.ErrOrStderr())
	st.success("Rendered %s", resp.source)
	for _, format := range opts.formats {
		st.file(paths[format])
	}
	st.stats(result.Stats, slices.ContainsFunc(opts.formats, isImageFormat))
	return nil
}

func isImageFormat(f string) bool {
	return f == pipeline.FormatSVG || f == pipeline.FormatPNG
}

// baseName derives an output name from an input path. Stdin renders to
// files named after the application.
func baseName(input string) string {
	if input == stdinArg {
		return appName
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// outputPaths maps each format to a file path. A single format writes to
// output verbatim; several formats use output (or name) as the base path and
// append the format extension. Output "-" sends everything to stdout.
func outputPaths(output, name string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output == stdinArg {
		for _, f := range formats {
			paths[f] = stdinArg
		}
		return paths
	}
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}

	base := name
	if output != "" {
		base = output
		if ext := strings.TrimPrefix(filepath.Ext(output), "."); pipeline.ValidateFormat(ext) == nil {
			base = strings.TrimSuffix(output, filepath.Ext(output))
		}
	}
	for _, f := range formats {
		paths[f] = base + "." + extension(f)
	}
	return paths
}

// extension is the file extension for a format.
func extension(format string) string {
	switch format {
	case pipeline.FormatLogical:
		return "logical.json"
	default:
		return format
	}
}
