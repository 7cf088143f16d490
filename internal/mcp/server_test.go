package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	decktreemcp "github.com/kutbudev/decktree/internal/mcp"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository/repotest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) (*mcp.ClientSession, *deck.Service) {
	t.Helper()
	ctx := context.Background()
	svc := deck.NewService(repotest.DB(t), logger.Nop())
	server := decktreemcp.NewServer(svc, "test", logger.Nop())

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs, svc
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decodeTool[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

type listing struct {
	Items []models.Node `json:"items"`
	Count int           `json:"count"`
}

func TestToolsAreListed(t *testing.T) {
	cs, _ := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	for _, def := range decktreemcp.ToolDefinitions() {
		assert.Contains(t, names, def.Name)
	}
}

func TestComposeThroughTools(t *testing.T) {
	cs, _ := connect(t)

	root := decodeTool[models.Node](t, call(t, cs, "create_deck", map[string]any{"name": "root"}))
	sub := decodeTool[models.Node](t, call(t, cs, "create_deck", map[string]any{"name": "sub"}))
	slide := decodeTool[models.Node](t, call(t, cs, "create_slide", map[string]any{"name": "intro"}))
	assert.Equal(t, models.KindSlide, slide.Kind)

	edge := decodeTool[models.Edge](t, call(t, cs, "add_child", map[string]any{"deck_id": sub.ID.String(), "child_id": slide.ID.String()}))
	assert.Equal(t, 0, *edge.Sequence)
	decodeTool[models.Edge](t, call(t, cs, "add_child", map[string]any{"deck_id": root.ID.String(), "child_id": sub.ID.String()}))

	all := decodeTool[listing](t, call(t, cs, "all_slides", map[string]any{"deck_id": root.ID.String()}))
	require.Equal(t, 1, all.Count)
	assert.Equal(t, slide.ID, all.Items[0].ID)

	children := decodeTool[listing](t, call(t, cs, "list_children", map[string]any{"deck_id": root.ID.String()}))
	require.Len(t, children.Items, 1)
	assert.Equal(t, sub.ID, children.Items[0].ID)

	parents := decodeTool[listing](t, call(t, cs, "list_parents", map[string]any{"node_id": slide.ID.String()}))
	require.Len(t, parents.Items, 1)
	assert.Equal(t, sub.ID, parents.Items[0].ID)

	tree := decodeTool[models.TreeNode](t, call(t, cs, "deck_tree", map[string]any{"deck_id": root.ID.String()}))
	assert.Equal(t, 1, tree.CountSlides())

	decks := decodeTool[listing](t, call(t, cs, "list_decks", map[string]any{}))
	assert.Equal(t, 2, decks.Count)

	decodeTool[map[string]any](t, call(t, cs, "remove_edge", map[string]any{"edge_id": edge.ID.String()}))
	all = decodeTool[listing](t, call(t, cs, "all_slides", map[string]any{"deck_id": root.ID.String()}))
	assert.Equal(t, 0, all.Count)
}

func TestToolErrors(t *testing.T) {
	cs, svc := connect(t)
	ctx := context.Background()
	a, err := svc.CreateDeck(ctx, "a")
	require.NoError(t, err)
	b, err := svc.CreateDeck(ctx, "b")
	require.NoError(t, err)
	_, err = svc.AddChild(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = svc.AddChild(ctx, b.ID, a.ID)
	require.NoError(t, err)

	res := call(t, cs, "all_slides", map[string]any{"deck_id": a.ID.String()})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "cycle_detected")

	res = call(t, cs, "list_children", map[string]any{"deck_id": "nope"})
	assert.True(t, res.IsError)
}

func TestDeckTreeResource(t *testing.T) {
	cs, svc := connect(t)
	ctx := context.Background()
	d, err := svc.CreateDeck(ctx, "talk")
	require.NoError(t, err)

	res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "decktree://decks/" + d.ID.String() + "/tree"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var tree models.TreeNode
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &tree))
	assert.Equal(t, "talk", tree.Name)
}

func TestDeckOutlinePrompt(t *testing.T) {
	cs, svc := connect(t)
	ctx := context.Background()
	d, err := svc.CreateDeck(ctx, "talk")
	require.NoError(t, err)
	s, err := svc.CreateSlide(ctx, "opening")
	require.NoError(t, err)
	_, err = svc.AddChild(ctx, d.ID, s.ID)
	require.NoError(t, err)

	res, err := cs.GetPrompt(ctx, &mcp.GetPromptParams{Name: "deck_outline", Arguments: map[string]string{"deck_id": d.ID.String()}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	tc, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "- opening")
}
