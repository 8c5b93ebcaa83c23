package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/pipeline"
	"github.com/matzehuels/typeviz/pkg/query"
	"github.com/matzehuels/typeviz/pkg/typedb"
)

// queryOpts holds the flags of the query command.
type queryOpts struct {
	renderOpts
	database string
	tx       string
	file     string
	save     string
	list     bool
}

// queryCommand creates the query command, which runs TypeQL against a
// TypeDB server and renders the answers.
func (c *CLI) queryCommand() *cobra.Command {
	var formatsStr string
	opts := queryOpts{renderOpts: renderOpts{highlight: noHighlight}, tx: string(query.QueryRead)}

	cmd := &cobra.Command{
		Use:   "query [typeql]",
		Short: "Run a TypeQL query and render its answers",
		Long: `Query signs in to the TypeDB HTTP API configured under [typedb], runs the
query in a transaction of the given type and renders the concept rows it
returns. Read query responses are cached.`,
		Example: `  typeviz query -d social 'match $p isa person, has name $n;'
  typeviz query -d social --file friends.tql -f svg,logical --save friends.json
  typeviz query --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				return c.runListDatabases(cmd)
			}
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			text, err := queryText(args, opts.file)
			if err != nil {
				return err
			}
			return c.runQuery(cmd, text, &opts)
		},
	}

	opts.addFlags(cmd, &formatsStr)
	cmd.Flags().StringVarP(&opts.database, "database", "d", "", "database name (default typedb.database from config)")
	cmd.Flags().StringVar(&opts.tx, "tx", opts.tx, "transaction type: read, write, schema")
	cmd.Flags().StringVar(&opts.file, "file", "", "read the query from a file")
	cmd.Flags().StringVar(&opts.save, "save", "", "also save the raw query response to this file")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list the databases on the server and exit")

	return cmd
}

// queryText returns the query from the positional argument or --file.
func queryText(args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New(errors.ErrCodeInvalidInput, "pass the query as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read query")
			}
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read query")
		}
		return string(data), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "no query given")
	}
}

func parseTx(s string) (query.QueryType, error) {
	switch tx := query.QueryType(s); tx {
	case query.QueryRead, query.QueryWrite, query.QuerySchema:
		return tx, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid transaction type %q (must be read, write or schema)", s)
	}
}

func (c *CLI) runQuery(cmd *cobra.Command, text string, opts *queryOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	sw := startStopwatch(logger)

	tx, err := parseTx(opts.tx)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	database := opts.database
	if database == "" {
		database = cfg.TypeDB.Database
	}
	if err := errors.ValidateDatabaseName(database); err != nil {
		return err
	}

	var resp *query.Response
	err = c.withClient(ctx, cfg, func(client *typedb.Client) error {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Running %s query on %s", tx, database))
		spinner.Start()
		defer spinner.Stop()
		r, err := client.Query(ctx, database, text, tx)
		resp = r
		return err
	})
	if err != nil {
		return err
	}
	sw.done("Received answers", "count", len(resp.Answers), "type", resp.AnswerType)

	if opts.save != "" {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode response")
		}
		if err := writeOutput(opts.save, append(data, '\n'), cmd.OutOrStdout()); err != nil {
			return err
		}
		logger.Infof("Saved response to %s", opts.save)
	}

	if resp.AnswerType != query.AnswerConceptRows {
		newStatus(cmd.ErrOrStderr()).warn("%s query returned %s answers; nothing to draw", tx, resp.AnswerType)
		return nil
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return c.execute(ctx, cmd, runner, &queryResponse{Response: resp, source: database}, database, &opts.renderOpts)
}

func (c *CLI) runListDatabases(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	var names []string
	var address string
	err = c.withClient(ctx, cfg, func(client *typedb.Client) error {
		address = client.Address()
		dbs, err := client.Databases(ctx)
		names = dbs
		return err
	})
	if err != nil {
		return err
	}
	st := newStatus(cmd.ErrOrStderr())
	st.keyValue("Server", address)
	if len(names) == 0 {
		st.info("No databases")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), "  "+StyleValue.Render(name))
	}
	st.newline()
	st.nextStep("Query one", "typeviz query -d "+names[0]+" '<typeql>'")
	return nil
}
