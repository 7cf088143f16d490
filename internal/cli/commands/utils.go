package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	userconfig "github.com/kutbudev/decktree/internal/config"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/urfave/cli/v2"
)

// Helper functions shared across commands

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// argID parses the n-th positional argument as a UUID.
func argID(c *cli.Context, n int, what string) (uuid.UUID, error) {
	return parseUUID(c.Args().Get(n), what)
}

func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", what)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", what, raw, err)
	}
	return id, nil
}

// deckArg returns the deck named by the first argument, or the active deck
// set with "decktree deck use".
func deckArg(c *cli.Context) (uuid.UUID, error) {
	if c.NArg() > 0 {
		return argID(c, 0, "deck ID")
	}
	ucfg, err := userconfig.LoadConfig()
	if err != nil {
		return uuid.Nil, err
	}
	if id, ok := ucfg.ActiveDeck(); ok {
		return id, nil
	}
	return uuid.Nil, fmt.Errorf("deck ID is required (or set one with 'decktree deck use')")
}

func printNodes(w io.Writer, nodes []*models.Node, empty string) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME")
	fmt.Fprintln(tw, "--\t----\t----")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Kind, truncateString(n.Name, 48))
	}
	tw.Flush()
}
