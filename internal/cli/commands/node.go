package commands

import (
	"fmt"
	"strings"

	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/urfave/cli/v2"
)

// NewSlideCommand creates the 'slide' command group.
func NewSlideCommand() *cli.Command {
	return &cli.Command{
		Name:    "slide",
		Aliases: []string{"s"},
		Usage:   "Manage slides",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a new slide",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "deck",
						Usage: "append the new slide to this deck",
					},
				},
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					s, err := b.CreateNode(c.Context, models.KindSlide, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "✅ Slide '%s' created\n", s.Name)
					fmt.Fprintf(c.App.Writer, "ID: %s\n", s.ID)
					if raw := c.String("deck"); raw != "" {
						return appendTo(c, b, raw, s)
					}
					return nil
				}),
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all slides",
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					slides, err := b.ListNodes(c.Context, models.KindSlide)
					if err != nil {
						return err
					}
					printNodes(c.App.Writer, slides, "No slides found. Use 'decktree slide create' to add one.")
					return nil
				}),
			},
		},
	}
}

func appendTo(c *cli.Context, b deck.Backend, rawDeck string, n *models.Node) error {
	id, err := parseUUID(rawDeck, "deck ID")
	if err != nil {
		return err
	}
	e, err := b.AddChild(c.Context, id, n.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "➕ Added to deck %s at position %d\n", shortID(id), *e.Sequence)
	return nil
}

// NewNodeCommand groups operations valid for both slides and decks.
func NewNodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "node",
		Usage: "Inspect, rename or delete a slide or deck",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a node and the decks containing it",
				ArgsUsage: "[id]",
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					id, err := argID(c, 0, "node ID")
					if err != nil {
						return err
					}
					n, err := b.GetNode(c.Context, id)
					if err != nil {
						return err
					}
					parents, err := b.Parents(c.Context, id)
					if err != nil {
						return err
					}
					w := c.App.Writer
					fmt.Fprintf(w, "ID:         %s\n", n.ID)
					fmt.Fprintf(w, "Kind:       %s\n", n.Kind)
					fmt.Fprintf(w, "Name:       %s\n", n.Name)
					fmt.Fprintf(w, "Created At: %s\n", n.CreatedAt.Format("2006-01-02 15:04:05"))
					fmt.Fprintf(w, "Parents:\n")
					printNodes(w, parents, "  (none)")
					return nil
				}),
			},
			{
				Name:      "rename",
				Usage:     "Rename a slide or deck",
				ArgsUsage: "[id] [name]",
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					id, err := argID(c, 0, "node ID")
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Tail(), " ")
					n, err := b.RenameNode(c.Context, id, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "✅ %s renamed to '%s'\n", n.Kind, n.Name)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a slide or deck that is not linked to anything",
				ArgsUsage: "[id]",
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					id, err := argID(c, 0, "node ID")
					if err != nil {
						return err
					}
					if err := b.DeleteNode(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "🗑️ Node %s deleted.\n", id)
					return nil
				}),
			},
			{
				Name:      "parents",
				Usage:     "List the decks directly containing a node",
				ArgsUsage: "[id]",
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					id, err := argID(c, 0, "node ID")
					if err != nil {
						return err
					}
					parents, err := b.Parents(c.Context, id)
					if err != nil {
						return err
					}
					printNodes(c.App.Writer, parents, "No deck contains this node.")
					return nil
				}),
			},
		},
	}
}

// NewEdgeCommand manages containment edges directly.
func NewEdgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "edge",
		Usage: "Manage containment edges",
		Subcommands: []*cli.Command{
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove one edge",
				ArgsUsage: "[edge-id]",
				Action: withBackend(func(c *cli.Context, b deck.Backend) error {
					id, err := argID(c, 0, "edge ID")
					if err != nil {
						return err
					}
					if err := b.RemoveEdge(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "🗑️ Edge %s removed.\n", id)
					return nil
				}),
			},
		},
	}
}
