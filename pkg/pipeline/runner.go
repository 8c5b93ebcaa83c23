package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/typeviz/pkg/cache"
	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/logical"
	"github.com/matzehuels/typeviz/pkg/observability"
	"github.com/matzehuels/typeviz/pkg/query"
	"github.com/matzehuels/typeviz/pkg/render"
	"github.com/matzehuels/typeviz/pkg/render/nodelink"
)

// Runner executes the pipeline. It holds no per-run state, so one Runner
// may serve concurrent runs.
type Runner struct {
	Structure convert.StructureParameters
	Style     render.Style
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact caching and a
// nil logger discards output.
func NewRunner(structure convert.StructureParameters, style render.Style, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Structure: structure,
		Style:     style,
		Cache:     c,
		Keyer:     cache.NewDefaultKeyer(),
		Logger:    logger,
	}
}

// Load decodes a query response from rd.
func (r *Runner) Load(rd io.Reader) (*query.Response, error) {
	return query.Decode(rd)
}

// LoadFile decodes the query response stored at path.
func (r *Runner) LoadFile(path string) (*query.Response, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return r.Load(f)
}

// Execute runs materialize, replay and render on resp.
func (r *Runner) Execute(ctx context.Context, resp *query.Response, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{ID: uuid.NewString()}
	logger := r.Logger.With("run", result.ID)

	start := time.Now()
	g, err := r.Materialize(ctx, resp)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.MaterializeTime = time.Since(start)
	result.Stats.Answers = len(g.Answers)
	result.Stats.Vertices = len(g.Vertices)
	result.Stats.LogicalEdges = g.EdgeCount()
	result.Stats.Placeholders = g.PlaceholderCount()
	logger.Info("materialized logical graph",
		"answers", result.Stats.Answers,
		"vertices", result.Stats.Vertices,
		"edges", result.Stats.LogicalEdges,
		"duration", result.Stats.MaterializeTime)

	start = time.Now()
	b, err := r.Replay(ctx, g, resp.Structure, opts)
	if err != nil {
		return nil, err
	}
	result.Render = b.Graph()
	result.Stats.ReplayTime = time.Since(start)
	result.Stats.Nodes = b.Graph().NodeCount()
	result.Stats.Edges = b.Graph().EdgeCount()
	if opts.Highlight != nil || opts.HighlightCoordinates != nil {
		for _, e := range b.Graph().Edges() {
			if e.Highlighted {
				result.Stats.Highlighted++
			}
		}
	}
	logger.Info("replayed structure",
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"duration", result.Stats.ReplayTime)

	start = time.Now()
	artifacts, hits, err := r.Render(ctx, g, b.Graph(), opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.ArtifactHits = hits
	result.Stats.RenderTime = time.Since(start)
	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Materialize builds the logical graph of a concept-row response.
func (r *Runner) Materialize(ctx context.Context, resp *query.Response) (*logical.Graph, error) {
	if resp == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil response")
	}
	hooks := observability.Pipeline()
	hooks.OnMaterializeStart(ctx, len(resp.Answers))
	start := time.Now()

	g, err := logical.FromResponse(resp)
	if err != nil {
		hooks.OnMaterializeComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnMaterializeComplete(ctx, len(g.Vertices), g.EdgeCount(), time.Since(start), nil)
	return g, nil
}

// Replay draws g into a fresh builder. The structure decides which edges
// are drawn unless opts.DrawAll is set.
func (r *Runner) Replay(ctx context.Context, g *logical.Graph, s *query.Structure, opts Options) (*render.Builder, error) {
	if opts.Highlight != nil && opts.HighlightCoordinates != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "highlight an answer or a structure edge, not both")
	}
	if opts.Highlight != nil && (*opts.Highlight < 0 || *opts.Highlight >= len(g.Answers)) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "highlight %d out of range: %d answers", *opts.Highlight, len(g.Answers))
	}
	if c := opts.HighlightCoordinates; c != nil {
		if _, ok := s.Edge(*c); !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no structure edge at %s", c)
		}
	}

	draw := convert.EdgesToDraw(s, r.Structure)
	if opts.DrawAll {
		draw = convert.DrawAll(s)
	}

	hooks := observability.Pipeline()
	hooks.OnReplayStart(ctx, len(draw))
	start := time.Now()

	b := render.NewBuilder(r.Style)
	if err := convert.Replay(g, draw, b); err != nil {
		hooks.OnReplayComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	switch {
	case opts.Highlight != nil:
		b.Highlight(*opts.Highlight)
	case opts.HighlightCoordinates != nil:
		b.HighlightCoordinates(*opts.HighlightCoordinates)
	}
	hooks.OnReplayComplete(ctx, b.Graph().NodeCount(), b.Graph().EdgeCount(), time.Since(start), nil)
	return b, nil
}

// Render exports the requested formats. It returns the artifacts and the
// formats that were served from the cache.
func (r *Runner) Render(ctx context.Context, g *logical.Graph, rg *render.Graph, opts Options) (map[string][]byte, []string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hits, err := r.render(ctx, g, rg, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return artifacts, hits, nil
}

func (r *Runner) render(ctx context.Context, g *logical.Graph, rg *render.Graph, opts Options) (map[string][]byte, []string, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var hits []string
	var dot string

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatLogical:
			data, err = json.Marshal(g)
		case FormatJSON:
			data, err = json.Marshal(rg)
		case FormatDOT:
			if dot == "" {
				dot = nodelink.ToDOT(rg, nodelink.Options{Detailed: opts.Detailed})
			}
			data = []byte(dot)
		case FormatSVG, FormatPNG:
			if dot == "" {
				dot = nodelink.ToDOT(rg, nodelink.Options{Detailed: opts.Detailed})
			}
			var hit bool
			data, hit, err = r.graphviz(ctx, dot, format)
			if hit {
				hits = append(hits, format)
			}
		default:
			return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, hits, nil
}

// graphviz renders dot through the artifact cache.
func (r *Runner) graphviz(ctx context.Context, dot, format string) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(cache.Hash([]byte(dot)), format)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	data, err := nodelink.Render(ctx, dot, nodelink.Format(format))
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
		r.Logger.Warn("cache artifact", "format", format, "error", err)
	}
	return data, false, nil
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
