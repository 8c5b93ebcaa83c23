package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/internal/server"
	"github.com/matzehuels/typeviz/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the materialize and render API over HTTP",
		Long: `Serve starts an HTTP server with these routes:

  GET  /healthz
  POST /v1/materialize                 query response in, logical graph out
  POST /v1/render?format=svg&highlight=N query response in, artifact out
                                       (or &coords=B,C for one structure edge)

Rendered artifacts are cached in the configured cache backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			observability.NewLogHooks(c.Logger).Install()
			return server.New(runner, c.Logger, cfg.Server).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr from config)")

	return cmd
}
