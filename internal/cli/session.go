package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/cache"
	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/session"
	"github.com/matzehuels/typeviz/pkg/typedb"
)

// withClient calls fn with a client for the configured server. A token from
// an earlier run is reused when one is stored; if the server rejects it, the
// CLI signs in again and calls fn once more.
func (c *CLI) withClient(ctx context.Context, cfg *config.Config, fn func(*typedb.Client) error) error {
	ch, err := c.newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer ch.Close()

	opts := []typedb.Option{
		typedb.WithTimeout(cfg.TypeDB.Timeout.Duration),
		typedb.WithCache(cache.WithHooks(ch, "query"), cfg.Cache.TTL.Duration),
		typedb.WithLogger(c.Logger),
	}
	address, username := cfg.TypeDB.Address, cfg.TypeDB.Username
	id := session.ID(address, username)

	store, err := session.NewFileStore("")
	if err != nil {
		c.Logger.Debug("session store unavailable", "err", err)
		store = nil
	} else if err := store.Cleanup(ctx); err != nil {
		c.Logger.Debug("session cleanup failed", "err", err)
	}

	if store != nil {
		if sess, _ := store.Get(ctx, id); sess != nil {
			client, err := typedb.Resume(address, username, sess.Token, opts...)
			if err != nil {
				return err
			}
			c.Logger.Debug("reusing session", "address", address, "username", username, "expires", sess.ExpiresAt)
			err = fn(client)
			if !errors.Is(err, errors.ErrCodeUnauthorized) {
				return err
			}
			c.Logger.Debug("stored token rejected, signing in again")
			_ = store.Delete(ctx, id)
		}
	}

	spinner := newSpinnerWithContext(ctx, "Signing in to "+address)
	spinner.Start()
	client, err := typedb.SignIn(ctx, address, username, cfg.TypeDB.Password, opts...)
	spinner.Stop()
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.Set(ctx, session.New(address, username, client.Token(), session.DefaultTTL)); err != nil {
			c.Logger.Warn("could not save session", "err", err)
		}
	}
	return fn(client)
}

// logoutCommand forgets the stored token for the configured server.
func (c *CLI) logoutCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored TypeDB token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := newStatus(cmd.ErrOrStderr())
			store, err := session.NewFileStore("")
			if err != nil {
				return err
			}
			if all {
				if err := clearSessions(ctx, store); err != nil {
					return err
				}
				st.success("Removed all stored tokens")
				return nil
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			id := session.ID(cfg.TypeDB.Address, cfg.TypeDB.Username)
			sess, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			if sess == nil {
				st.info("Not signed in to %s", cfg.TypeDB.Address)
				return nil
			}
			if err := store.Delete(ctx, id); err != nil {
				return err
			}
			st.success("Signed out %s from %s", sess.Username, sess.Address)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "forget tokens for every server")

	return cmd
}

// clearSessions deletes every stored session.
func clearSessions(ctx context.Context, store *session.FileStore) error {
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
