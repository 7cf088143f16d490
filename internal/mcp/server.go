package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const instructions = `decktree stores slides and decks. A deck contains slides and other decks,
in order. The same slide or deck may appear under several decks.

## Quick Reference
- CREATE: create_deck(name), create_slide(name)
- COMPOSE: add_child(deck_id, child_id) appends at the end of the deck
- READ: list_children(deck_id) for one level, all_slides(deck_id) for every slide at any depth
- NAVIGATE: list_parents(node_id), deck_tree(deck_id)

all_slides and deck_tree fail with cycle_detected when a deck reaches itself.
Remove the offending edge with remove_edge(edge_id) and try again.`

// Server exposes the deck composition operations as MCP tools.
type Server struct {
	backend deck.Backend
	log     *logger.Logger
}

// NewServer builds the MCP server over backend with every tool, resource,
// prompt and completion registered.
func NewServer(backend deck.Backend, version string, log *logger.Logger) *mcp.Server {
	s := &Server{backend: backend, log: log.With("component", "MCPServer")}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "decktree",
			Version: version,
		},
		&mcp.ServerOptions{
			CompletionHandler: s.completionHandler,
			Instructions:      instructions,
		},
	)

	s.registerTools(server)
	s.registerResources(server)
	s.registerPrompts(server)
	return server
}

// ServeStdio starts the MCP server over stdio and blocks until the client
// disconnects or ctx is cancelled.
func ServeStdio(ctx context.Context, backend deck.Backend, version string, log *logger.Logger) error {
	if backend == nil {
		return errors.New("deck backend is required")
	}
	return NewServer(backend, version, log).Run(ctx, &mcp.StdioTransport{})
}

// listResult wraps a slice so the result is always an object.
func listResult[T any](items []T) map[string]interface{} {
	if items == nil {
		items = []T{}
	}
	return map[string]interface{}{"items": items, "count": len(items)}
}

// textResult converts any data to a CallToolResult with JSON TextContent.
func textResult(data interface{}) (*mcp.CallToolResult, error) {
	if data == nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "{}"},
			},
		}, nil
	}
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

// mustTextResult is like textResult but returns an error result instead of failing.
func mustTextResult(data interface{}) *mcp.CallToolResult {
	res, err := textResult(data)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf(`{"error": %q}`, err.Error())},
			},
			IsError: true,
		}
	}
	return res
}

func boolPtr(b bool) *bool {
	return &b
}
