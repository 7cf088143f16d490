package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/api/handlers"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolInfo is the short description printed by "decktree mcp tools".
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ReadOnly    bool   `json:"read_only"`
}

var toolInfos = []ToolInfo{
	{"create_deck", "Create an empty deck.", false},
	{"create_slide", "Create a slide.", false},
	{"add_child", "Append a slide or deck to the end of a deck.", false},
	{"remove_edge", "Remove one containment edge by id.", false},
	{"rename_node", "Rename a slide or deck.", false},
	{"list_decks", "List every deck.", true},
	{"list_children", "List the direct children of a deck in order.", true},
	{"all_slides", "List every slide under a deck at any depth, each once.", true},
	{"list_parents", "List the decks that directly contain a node.", true},
	{"deck_tree", "Show a deck and everything under it as a nested tree. A shared sub-deck is expanded once and marked shared elsewhere.", true},
}

// ToolDefinitions lists the registered tools.
func ToolDefinitions() []ToolInfo {
	out := make([]ToolInfo, len(toolInfos))
	copy(out, toolInfos)
	return out
}

func describe(name string) string {
	for _, t := range toolInfos {
		if t.Name == name {
			return t.Description
		}
	}
	return ""
}

func tool(name, title string) *mcp.Tool {
	readOnly := false
	for _, t := range toolInfos {
		if t.Name == name {
			readOnly = t.ReadOnly
		}
	}
	ann := &mcp.ToolAnnotations{
		Title:         title,
		ReadOnlyHint:  readOnly,
		OpenWorldHint: boolPtr(false),
	}
	if !readOnly {
		ann.DestructiveHint = boolPtr(name == "remove_edge")
	}
	return &mcp.Tool{Name: name, Description: describe(name), Annotations: ann}
}

func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, tool("create_deck", "Create Deck"), s.handleCreateDeck)
	mcp.AddTool(server, tool("create_slide", "Create Slide"), s.handleCreateSlide)
	mcp.AddTool(server, tool("add_child", "Add Child"), s.handleAddChild)
	mcp.AddTool(server, tool("remove_edge", "Remove Edge"), s.handleRemoveEdge)
	mcp.AddTool(server, tool("rename_node", "Rename Node"), s.handleRenameNode)
	mcp.AddTool(server, tool("list_decks", "List Decks"), s.handleListDecks)
	mcp.AddTool(server, tool("list_children", "List Children"), s.handleListChildren)
	mcp.AddTool(server, tool("all_slides", "All Slides"), s.handleAllSlides)
	mcp.AddTool(server, tool("list_parents", "List Parents"), s.handleListParents)
	mcp.AddTool(server, tool("deck_tree", "Deck Tree"), s.handleDeckTree)
}

// toolError keeps the stable error code visible to the agent.
func toolError(err error) error {
	_, code := handlers.Classify(err)
	return fmt.Errorf("%s: %w", code, err)
}

func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a UUID: %w", field, err)
	}
	return id, nil
}

type CreateNodeInput struct {
	Name string `json:"name" jsonschema:"display name"`
}

func (s *Server) createNode(ctx context.Context, kind models.Kind, input CreateNodeInput) (*mcp.CallToolResult, interface{}, error) {
	n, err := s.backend.CreateNode(ctx, kind, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(n), nil, nil
}

func (s *Server) handleCreateDeck(ctx context.Context, _ *mcp.CallToolRequest, input CreateNodeInput) (*mcp.CallToolResult, interface{}, error) {
	return s.createNode(ctx, models.KindDeck, input)
}

func (s *Server) handleCreateSlide(ctx context.Context, _ *mcp.CallToolRequest, input CreateNodeInput) (*mcp.CallToolResult, interface{}, error) {
	return s.createNode(ctx, models.KindSlide, input)
}

type AddChildInput struct {
	DeckID  string `json:"deck_id" jsonschema:"the containing deck"`
	ChildID string `json:"child_id" jsonschema:"the slide or deck to append"`
}

func (s *Server) handleAddChild(ctx context.Context, _ *mcp.CallToolRequest, input AddChildInput) (*mcp.CallToolResult, interface{}, error) {
	deckID, err := parseID("deck_id", input.DeckID)
	if err != nil {
		return nil, nil, err
	}
	childID, err := parseID("child_id", input.ChildID)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.backend.AddChild(ctx, deckID, childID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(e), nil, nil
}

type RemoveEdgeInput struct {
	EdgeID string `json:"edge_id"`
}

func (s *Server) handleRemoveEdge(ctx context.Context, _ *mcp.CallToolRequest, input RemoveEdgeInput) (*mcp.CallToolResult, interface{}, error) {
	id, err := parseID("edge_id", input.EdgeID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.backend.RemoveEdge(ctx, id); err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(map[string]interface{}{"ok": true, "edge_id": id}), nil, nil
}

type RenameNodeInput struct {
	NodeID string `json:"node_id"`
	Name   string `json:"name"`
}

func (s *Server) handleRenameNode(ctx context.Context, _ *mcp.CallToolRequest, input RenameNodeInput) (*mcp.CallToolResult, interface{}, error) {
	id, err := parseID("node_id", input.NodeID)
	if err != nil {
		return nil, nil, err
	}
	n, err := s.backend.RenameNode(ctx, id, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(n), nil, nil
}

type ListDecksInput struct{}

func (s *Server) handleListDecks(ctx context.Context, _ *mcp.CallToolRequest, _ ListDecksInput) (*mcp.CallToolResult, interface{}, error) {
	decks, err := s.backend.ListNodes(ctx, models.KindDeck)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(listResult(decks)), nil, nil
}

type DeckInput struct {
	DeckID string `json:"deck_id"`
}

func (s *Server) handleListChildren(ctx context.Context, _ *mcp.CallToolRequest, input DeckInput) (*mcp.CallToolResult, interface{}, error) {
	id, err := parseID("deck_id", input.DeckID)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := s.backend.DirectChildren(ctx, id)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(listResult(nodes)), nil, nil
}

func (s *Server) handleAllSlides(ctx context.Context, _ *mcp.CallToolRequest, input DeckInput) (*mcp.CallToolResult, interface{}, error) {
	id, err := parseID("deck_id", input.DeckID)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := s.backend.AllSlides(ctx, id)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(listResult(nodes)), nil, nil
}

func (s *Server) handleDeckTree(ctx context.Context, _ *mcp.CallToolRequest, input DeckInput) (*mcp.CallToolResult, interface{}, error) {
	id, err := parseID("deck_id", input.DeckID)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.backend.Tree(ctx, id)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(t), nil, nil
}

type NodeInput struct {
	NodeID string `json:"node_id"`
}

func (s *Server) handleListParents(ctx context.Context, _ *mcp.CallToolRequest, input NodeInput) (*mcp.CallToolResult, interface{}, error) {
	id, err := parseID("node_id", input.NodeID)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := s.backend.Parents(ctx, id)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return mustTextResult(listResult(nodes)), nil, nil
}
