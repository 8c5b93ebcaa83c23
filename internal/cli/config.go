package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/errors"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// configInitCommand writes the defaults to the config path.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().WriteFile(path); err != nil {
				return err
			}
			st := newStatus(cmd.ErrOrStderr())
			st.success("Wrote default config")
			st.file(path)
			st.nextStep("Point it at your server", "$EDITOR "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// configShowCommand prints the effective configuration: file, defaults and
// environment overrides merged.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.TypeDB.Password != "" {
				cfg.TypeDB.Password = "********"
			}
			if cfg.Cache.Redis.Password != "" {
				cfg.Cache.Redis.Password = "********"
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}
