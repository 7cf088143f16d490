package mcp

import (
	"context"
	"strings"

	"github.com/kutbudev/decktree/pkg/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxCompletions = 20

// completionHandler suggests deck ids for prompt and resource arguments
func (s *Server) completionHandler(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	argName := req.Params.Argument.Name
	argValue := strings.ToLower(req.Params.Argument.Value)

	var values []string
	switch argName {
	case "deck_id", "id":
		values = s.completeDeckIDs(ctx, argValue)
	case "kind":
		values = completeStaticValues(argValue, []string{models.KindDeck.String(), models.KindSlide.String()})
	default:
		values = []string{}
	}

	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values:  values,
			Total:   len(values),
			HasMore: false,
		},
	}, nil
}

// completeDeckIDs matches the prefix against deck ids and names.
func (s *Server) completeDeckIDs(ctx context.Context, prefix string) []string {
	decks, err := s.backend.ListNodes(ctx, models.KindDeck)
	if err != nil {
		s.log.Debug("Deck completion failed", "error", err)
		return []string{}
	}

	matches := []string{}
	for _, d := range decks {
		id := d.ID.String()
		if prefix == "" || strings.HasPrefix(id, prefix) || strings.HasPrefix(strings.ToLower(d.Name), prefix) {
			matches = append(matches, id)
		}
		if len(matches) >= maxCompletions {
			break
		}
	}
	return matches
}

// completeStaticValues filters a static list of values by prefix
func completeStaticValues(prefix string, options []string) []string {
	if prefix == "" {
		return options
	}

	matches := []string{}
	for _, opt := range options {
		if strings.HasPrefix(strings.ToLower(opt), prefix) {
			matches = append(matches, opt)
		}
	}
	return matches
}
