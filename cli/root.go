package cli

import (
	"context"
	"fmt"

	"github.com/kutbudev/decktree/internal/app"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand builds decktreectl, the operator CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "decktreectl",
		Short: "Administer a decktree store",
		Long: `decktreectl runs the decktree HTTP server and performs maintenance on
its database.

Examples:
  decktreectl migrate
  decktreectl serve --config config.yaml
  decktreectl reset --yes
  decktreectl config show`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a config file (default ./config.yaml)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newResetCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// open loads config and opens the application. app.New migrates.
func (o *rootOptions) open(ctx context.Context) (*app.App, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log)
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the nodes and edges tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", a.DB.Driver())
			return nil
		},
	}
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every node and edge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Service.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All nodes and edges deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
