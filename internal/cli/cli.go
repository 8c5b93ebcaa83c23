// Package cli implements the typeviz command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/buildinfo"
	"github.com/matzehuels/typeviz/pkg/cache"
	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/observability"
	"github.com/matzehuels/typeviz/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "typeviz"

	// stdinArg selects standard input instead of a file.
	stdinArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline, cache and
// HTTP events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "typeviz draws TypeDB query answers as graphs",
		Long:         `typeviz turns the concept rows of a TypeDB query, together with the query's structure, into a logical graph and renders it as DOT, SVG, PNG or graph JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the query and artifact cache")

	root.AddCommand(c.materializeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the file named by --config, or the default location.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configFile(), "cache", cfg.Cache.Backend)
	return cfg, nil
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.DefaultPath()
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg.Structure, cfg.Style, cache.WithHooks(ch, "artifact"), c.Logger), nil
}

// newCache opens the configured backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Cache.Redis.Addr)
		}
		return rc, nil
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "error", err)
				return cache.NewNullCache(), nil
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cannot open cache, caching disabled", "dir", dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Input and Options Helpers
// =============================================================================

// loadResponse reads a query response from path, or from stdin for "-".
func loadResponse(r *pipeline.Runner, path string, stdin io.Reader) (*queryResponse, error) {
	if path == stdinArg {
		resp, err := r.Load(stdin)
		if err != nil {
			return nil, err
		}
		return &queryResponse{Response: resp, source: "stdin"}, nil
	}
	resp, err := r.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &queryResponse{Response: resp, source: path}, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
