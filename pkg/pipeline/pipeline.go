// Package pipeline runs the load → materialize → replay → render chain that
// the CLI and the HTTP server share.
//
// # Stages
//
//  1. Load: decode a TypeDB query response (the answers plus the query
//     structure)
//  2. Materialize: build the logical graph with [logical.FromResponse]
//  3. Replay: walk the logical graph with [convert.Replay] into a
//     [render.Builder], optionally highlighting one answer or one
//     structure edge
//  4. Render: export the requested formats
//
// # Usage
//
//	runner := pipeline.NewRunner(cfg.Structure, cfg.Style, c, logger)
//	resp, err := runner.LoadFile("answers.json")
//	result, err := runner.Execute(ctx, resp, pipeline.Options{Formats: []string{"svg"}})
//	svg := result.Artifacts["svg"]
//
// SVG and PNG artifacts are cached by the content hash of the styled graph,
// so re-rendering an unchanged answer set skips Graphviz.
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/logical"
	"github.com/matzehuels/typeviz/pkg/query"
	"github.com/matzehuels/typeviz/pkg/render"
)

// Format constants for output formats.
const (
	FormatLogical = "logical" // logical graph JSON
	FormatJSON    = "json"    // styled render graph JSON
	FormatDOT     = "dot"     // Graphviz source
	FormatSVG     = "svg"
	FormatPNG     = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatLogical: true,
	FormatJSON:    true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatPNG:     true,
}

// ContentTypes maps formats to their MIME types.
var ContentTypes = map[string]string{
	FormatLogical: "application/json",
	FormatJSON:    "application/json",
	FormatDOT:     "text/vnd.graphviz",
	FormatSVG:     "image/svg+xml",
	FormatPNG:     "image/png",
}

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	// Formats lists the artifacts to produce. Defaults to svg.
	Formats []string `json:"formats,omitempty"`

	// Highlight, when set, marks the edges contributed by this answer.
	Highlight *int `json:"highlight,omitempty"`

	// HighlightCoordinates, when set, marks the edges produced by the
	// structure edge at these coordinates in every answer. It cannot be
	// combined with Highlight.
	HighlightCoordinates *query.Coordinates `json:"highlight_coordinates,omitempty"`

	// Detailed shows hover labels and provenance in DOT-based outputs.
	Detailed bool `json:"detailed,omitempty"`

	// DrawAll draws every structure edge, including those the structure
	// parameters hide.
	DrawAll bool `json:"draw_all,omitempty"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Highlight != nil && *o.Highlight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "highlight must not be negative, got %d", *o.Highlight)
	}
	if o.Highlight != nil && o.HighlightCoordinates != nil {
		return errors.New(errors.ErrCodeInvalidInput, "highlight an answer or a structure edge, not both")
	}
	return nil
}

// ValidateFormat returns an error if format is not supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", format, formatList())
	}
	return nil
}

// ValidateFormats validates each format and rejects duplicates.
func ValidateFormats(formats []string) error {
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
		if seen[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "format %s requested twice", f)
		}
		seen[f] = true
	}
	return nil
}

func formatList() string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return fmt.Sprint(names)
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run in logs and API responses.
	ID string

	// Graph is the materialized logical graph.
	Graph *logical.Graph

	// Render is the styled graph built by replay.
	Render *render.Graph

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Answers      int
	Vertices     int
	LogicalEdges int
	Placeholders int
	Nodes        int
	Edges        int
	Highlighted  int

	MaterializeTime time.Duration
	ReplayTime      time.Duration
	RenderTime      time.Duration

	// ArtifactHits lists formats served from the cache.
	ArtifactHits []string
}
