package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/cache"
	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the query response and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached query response and rendered artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st := newStatus(cmd.ErrOrStderr())
			if cfg.Cache.Backend == config.CacheNone {
				st.info("Caching is disabled")
				return nil
			}

			ch, err := c.newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "%s cache cannot be cleared", cfg.Cache.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return err
			}

			st.success("Cleared %s cache", cfg.Cache.Backend)
			st.detail("Location: %s", cacheLocation(cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory or redis address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(cfg))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps entries.
func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return "redis://" + cfg.Cache.Redis.Addr + "/" + fmt.Sprint(cfg.Cache.Redis.DB)
	case config.CacheNone:
		return "none"
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "none"
	}
	return dir
}
