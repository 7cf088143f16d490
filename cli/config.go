package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

// NewConfigCommand groups configuration inspection commands
func NewConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		Long:  `Shows configuration after merging config.yaml, .env and DECKTREE_* variables.`,
	}

	cmd.AddCommand(newConfigShowCommand(opts))

	return cmd
}

func newConfigShowCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Database.Password != "" {
				shown.Database.Password = redacted
			}
			if shown.Redis.Password != "" {
				shown.Redis.Password = redacted
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(shown); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	return cmd
}
