package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/musecrm/museflow/pkg/buildtime"
	kdb "github.com/musecrm/museflow/pkg/domain/museflow/db"
	"github.com/musecrm/museflow/pkg/domain/museflow/db/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Options are connection settings shared by subcommands.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// path to the schema repository directory.
	Schema string
}

// DefaultOptions reads defaults from environment variables.
func DefaultOptions() *Options {
	port := 5432
	if sp := os.Getenv("DB_PORT"); sp != "" {
		if p, err := strconv.Atoi(sp); err == nil {
			port = p
		}
	}
	return &Options{
		Host:     os.Getenv("DB_HOST"),
		Port:     port,
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: os.Getenv("DB_NAME"),
		Schema:   os.Getenv("MUSEFLOW_SCHEMA"),
	}
}

// URL is the connection string of the database.
func (o *Options) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(o.User, o.Password),
		Host:   fmt.Sprintf("%s:%d", o.Host, o.Port),
		Path:   "/" + o.Database,
	}
	return u.String()
}

type connector func(ctx context.Context, opts *Options) (kdb.Database, error)

func connect(ctx context.Context, opts *Options) (kdb.Database, error) {
	return postgres.New(ctx, opts.URL(), postgres.WithSchemaRepository(opts.Schema))
}

// NewRootCommand builds the command line.
//
// Running it without subcommand is the same as "upgrade".
func NewRootCommand(opts *Options, logger logrus.FieldLogger, conn connector) *cobra.Command {
	upgrade := NewUpgradeCommand(opts, logger, conn)

	root := &cobra.Command{
		Use:           "schema_upgrader",
		Short:         "database schema upgrader",
		Version:       buildtime.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          upgrade.RunE,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.Host, "host", opts.Host, "The host of the database.")
	flags.IntVar(&opts.Port, "port", opts.Port, "The port of the database.")
	flags.StringVar(&opts.User, "user", opts.User, "The user of the database.")
	flags.StringVar(&opts.Password, "pass", opts.Password, "The password of the database.")
	flags.StringVar(&opts.Database, "database", opts.Database, "The name of the database.")
	flags.StringVar(&opts.Schema, "schema", opts.Schema, "The path to the schema repository directory.")

	root.AddCommand(upgrade, NewVersionCommand(opts, conn))
	return root
}

func NewUpgradeCommand(opts *Options, logger logrus.FieldLogger, conn connector) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Apply schema versions newer than the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Schema == "" {
				return fmt.Errorf("--schema is required")
			}
			ctx := cmd.Context()
			db, err := conn(ctx, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			before, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			if err := db.Schema().Upgrade(ctx); err != nil {
				return err
			}
			after, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"from": before, "to": after}).Info("schema upgraded")
			return nil
		},
	}
}

func NewVersionCommand(opts *Options, conn connector) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the schema version of the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := conn(ctx, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
}
