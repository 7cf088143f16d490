package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts(server *mcp.Server) {
	// Deck Outline - summarize a deck's structure before editing it
	server.AddPrompt(&mcp.Prompt{
		Name:        "deck_outline",
		Title:       "Deck Outline",
		Description: "Summarize the structure of a deck and suggest how to reorganize it",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "deck_id",
				Description: "ID of the deck to outline",
				Required:    true,
			},
		},
	}, s.handleDeckOutlinePrompt)
}

func (s *Server) handleDeckOutlinePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	raw := req.Params.Arguments["deck_id"]
	if raw == "" {
		return nil, fmt.Errorf("deck_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("deck_id must be a UUID: %w", err)
	}
	t, err := s.backend.Tree(ctx, id)
	if err != nil {
		return nil, toolError(err)
	}

	var b strings.Builder
	writeOutline(&b, t, 0)

	promptText := fmt.Sprintf(`Here is the current structure of the deck %q (%d distinct slides):

%s
Please:
1. Summarize what the deck covers
2. Point out slides that appear under more than one sub-deck
3. Suggest a better order if the current one does not flow

Use add_child and remove_edge to apply changes once the user agrees.`,
		t.Name, t.CountSlides(), b.String())

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Outline of deck: %s", t.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText},
			},
		},
	}, nil
}

func writeOutline(b *strings.Builder, t *models.TreeNode, depth int) {
	marker := "-"
	if t.Kind == models.KindDeck {
		marker = "+"
	}
	if t.Shared {
		fmt.Fprintf(b, "%s%s %s (%s, shared: contents listed above)\n", strings.Repeat("  ", depth), marker, t.Name, t.ID)
		return
	}
	fmt.Fprintf(b, "%s%s %s (%s)\n", strings.Repeat("  ", depth), marker, t.Name, t.ID)
	for _, c := range t.Children {
		writeOutline(b, c, depth+1)
	}
}
