package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/internal/mcp"
	"github.com/urfave/cli/v2"
)

func NewMcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "MCP (Model Context Protocol) server management",
		Subcommands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start MCP server (stdio)",
				Action: func(c *cli.Context) error {
					b, release, err := openBackend(c)
					if err != nil {
						return err
					}
					defer release()
					// stdout carries the protocol; logs go to stderr
					log, err := logger.New("prod", false)
					if err != nil {
						return err
					}
					defer log.Sync()
					return mcp.ServeStdio(c.Context, b, c.App.Version, log)
				},
			},
			{
				Name:  "config",
				Usage: "Print MCP config examples for clients",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "client",
						Aliases: []string{"c"},
						Usage:   "target client (generic|codex)",
						Value:   "generic",
					},
				},
				Action: func(c *cli.Context) error {
					switch strings.ToLower(c.String("client")) {
					case "codex":
						printCodexConfig(c)
					default:
						return printGenericConfig(c)
					}
					return nil
				},
			},
			{
				Name:  "tools",
				Usage: "List available MCP tools",
				Action: func(c *cli.Context) error {
					b, err := json.MarshalIndent(mcp.ToolDefinitions(), "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(b))
					return nil
				},
			},
		},
	}
}

func printGenericConfig(c *cli.Context) error {
	cfg := map[string]interface{}{
		"mcpServers": map[string]interface{}{
			"decktree": map[string]interface{}{
				"command": "decktree",
				"args":    []string{"mcp", "serve"},
			},
		},
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(b))
	return nil
}

func printCodexConfig(c *cli.Context) {
	w := c.App.Writer
	fmt.Fprintln(w, "# Add the following to ~/.codex/config.toml (merge with existing settings)")
	fmt.Fprintln(w, "[mcp_servers.decktree]")
	fmt.Fprintln(w, "command = \"decktree\"")
	fmt.Fprintln(w, "args = [\"mcp\", \"serve\"]")
	fmt.Fprintln(w, "enabled = true")
}
