package commands

import (
	"github.com/urfave/cli/v2"
)

// NewApp builds the decktree command line.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    "decktree",
		Usage:   "Compose slides into nested decks",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file (default ./config.yaml)",
				EnvVars: []string{"DECKTREE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "server",
				Usage:   "talk to a decktree server instead of the local database",
				EnvVars: []string{"DECKTREE_SERVER_URL"},
			},
		},
		Commands: []*cli.Command{
			NewDeckCommand(),
			NewSlideCommand(),
			NewNodeCommand(),
			NewEdgeCommand(),
			NewTreeCommand(),

			// Meta
			NewMcpCommand(),
		},
	}
}
