package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	userconfig "github.com/kutbudev/decktree/internal/config"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// NewDeckCommand creates all subcommands for the 'deck' command group.
func NewDeckCommand() *cli.Command {
	return &cli.Command{
		Name:    "deck",
		Aliases: []string{"d"},
		Usage:   "Manage decks and their contents",
		Subcommands: []*cli.Command{
			deckCreateCmd(),
			deckListCmd(),
			deckAddCmd(),
			deckChildrenCmd(),
			deckSlidesCmd(),
			deckUseCmd(),
		},
	}
}

func deckCreateCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new deck",
		ArgsUsage: "[name]",
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			name := strings.Join(c.Args().Slice(), " ")
			d, err := b.CreateNode(c.Context, models.KindDeck, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "✅ Deck '%s' created\n", d.Name)
			fmt.Fprintf(c.App.Writer, "ID: %s\n", d.ID)
			return nil
		}),
	}
}

func deckListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all decks",
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			decks, err := b.ListNodes(c.Context, models.KindDeck)
			if err != nil {
				return err
			}
			printNodes(c.App.Writer, decks, "No decks found. Use 'decktree deck create' to add one.")
			return nil
		}),
	}
}

func deckAddCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Append slides or decks to the end of a deck",
		ArgsUsage: "[deck-id] [child-id...]",
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			if c.NArg() < 2 {
				return fmt.Errorf("deck ID and at least one child ID are required")
			}
			deckID, err := argID(c, 0, "deck ID")
			if err != nil {
				return err
			}
			for i := 1; i < c.NArg(); i++ {
				childID, err := argID(c, i, "child ID")
				if err != nil {
					return err
				}
				e, err := b.AddChild(c.Context, deckID, childID)
				if err != nil {
					return fmt.Errorf("add %s: %w", childID, err)
				}
				fmt.Fprintf(c.App.Writer, "➕ %s %s at position %d (edge %s)\n",
					e.TailKind, shortID(e.TailID), *e.Sequence, e.ID)
			}
			return nil
		}),
	}
}

func deckChildrenCmd() *cli.Command {
	return &cli.Command{
		Name:      "children",
		Usage:     "List the direct children of a deck in order",
		ArgsUsage: "[deck-id]",
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			deckID, err := deckArg(c)
			if err != nil {
				return err
			}
			nodes, err := b.DirectChildren(c.Context, deckID)
			if err != nil {
				return err
			}
			printNodes(c.App.Writer, nodes, "Deck is empty.")
			return nil
		}),
	}
}

func deckSlidesCmd() *cli.Command {
	return &cli.Command{
		Name:      "slides",
		Usage:     "List every slide under a deck, at any depth",
		ArgsUsage: "[deck-id]",
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			deckID, err := deckArg(c)
			if err != nil {
				return err
			}
			nodes, err := b.AllSlides(c.Context, deckID)
			if err != nil {
				return err
			}
			printNodes(c.App.Writer, nodes, "No slides under this deck.")
			return nil
		}),
	}
}

func deckUseCmd() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Set the active deck used when no deck ID is given",
		ArgsUsage: "[deck-id]",
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			deckID, err := argID(c, 0, "deck ID")
			if err != nil {
				return err
			}
			d, err := b.GetNode(c.Context, deckID)
			if err != nil {
				return err
			}
			if !d.IsDeck() {
				return fmt.Errorf("%s is a %s, not a deck", d.ID, d.Kind)
			}
			ucfg, err := userconfig.LoadConfig()
			if err != nil {
				return err
			}
			ucfg.ActiveDeckID = d.ID.String()
			if err := userconfig.SaveConfig(ucfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "🎯 Active deck: %s (%s)\n", d.Name, shortID(d.ID))
			return nil
		}),
	}
}

// NewTreeCommand prints a deck as an indented tree or exports it.
func NewTreeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Show a deck and everything under it",
		ArgsUsage: "[deck-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (text|json|yaml)",
				Value:   "text",
			},
		},
		Action: withBackend(func(c *cli.Context, b deck.Backend) error {
			deckID, err := deckArg(c)
			if err != nil {
				return err
			}
			t, err := b.Tree(c.Context, deckID)
			if err != nil {
				return err
			}
			return writeTree(c.App.Writer, t, c.String("format"))
		}),
	}
}

func writeTree(w io.Writer, t *models.TreeNode, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	case "", "text":
		printTree(w, t, "", true, true)
		fmt.Fprintf(w, "\n%d distinct slides\n", t.CountSlides())
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func printTree(w io.Writer, t *models.TreeNode, prefix string, last, root bool) {
	icon := "📄"
	if t.Kind == models.KindDeck {
		icon = "🗂️"
	}
	suffix := ""
	if t.Shared {
		suffix = " [shared, expanded above]"
	}
	switch {
	case root:
		fmt.Fprintf(w, "%s %s (%s)\n", icon, t.Name, shortID(t.ID))
	case last:
		fmt.Fprintf(w, "%s└── %s %s (%s)%s\n", prefix, icon, t.Name, shortID(t.ID), suffix)
	default:
		fmt.Fprintf(w, "%s├── %s %s (%s)%s\n", prefix, icon, t.Name, shortID(t.ID), suffix)
	}
	childPrefix := prefix
	if !root {
		if last {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, ch := range t.Children {
		printTree(w, ch, childPrefix, i == len(t.Children)-1, false)
	}
}
