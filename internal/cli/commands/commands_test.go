package commands

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var idLine = regexp.MustCompile(`ID: ([0-9a-f-]{36})`)

type harness struct {
	t   *testing.T
	out *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("DECKTREE_DATABASE_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("DECKTREE_LOG_MODE", "nop")
	t.Setenv("DECKTREE_SERVER_URL", "")
	return &harness{t: t, out: &bytes.Buffer{}}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	h.out.Reset()
	app := NewApp("test")
	app.Writer = h.out
	app.ErrWriter = h.out
	err := app.Run(append([]string{"decktree"}, args...))
	return h.out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) create(args ...string) string {
	h.t.Helper()
	out := h.mustRun(args...)
	m := idLine.FindStringSubmatch(out)
	require.Len(h.t, m, 2, out)
	return m[1]
}

func TestDeckWorkflow(t *testing.T) {
	h := newHarness(t)

	root := h.create("deck", "create", "Quarterly", "review")
	sub := h.create("deck", "create", "Numbers")
	s1 := h.create("slide", "create", "--deck", sub, "Revenue")
	s2 := h.create("slide", "create", "Costs")

	out := h.mustRun("deck", "add", sub, s2)
	assert.Contains(t, out, "at position 1")
	h.mustRun("deck", "add", root, sub)

	out = h.mustRun("deck", "slides", root)
	assert.Contains(t, out, s1)
	assert.Contains(t, out, s2)

	out = h.mustRun("deck", "list")
	assert.Contains(t, out, "Quarterly review")

	h.mustRun("deck", "use", root)
	out = h.mustRun("deck", "children")
	assert.Contains(t, out, sub)
	assert.NotContains(t, out, s1)

	out = h.mustRun("node", "parents", s1)
	assert.Contains(t, out, sub)

	out = h.mustRun("tree")
	assert.Contains(t, out, "Revenue")
	assert.Contains(t, out, "2 distinct slides")

	out = h.mustRun("tree", "--format", "yaml", root)
	var tree models.TreeNode
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "Quarterly review", tree.Name)
	require.Len(t, tree.Children, 1)
	assert.Len(t, tree.Children[0].Children, 2)
}

func TestCycleIsReported(t *testing.T) {
	h := newHarness(t)
	a := h.create("deck", "create", "A")
	b := h.create("deck", "create", "B")
	h.mustRun("deck", "add", a, b)
	h.mustRun("deck", "add", b, a)

	_, err := h.run("deck", "slides", a)
	assert.ErrorIs(t, err, repository.ErrCycleDetected)
}

func TestSlideCannotContain(t *testing.T) {
	h := newHarness(t)
	s1 := h.create("slide", "create", "one")
	s2 := h.create("slide", "create", "two")

	_, err := h.run("deck", "add", s1, s2)
	assert.ErrorIs(t, err, repository.ErrInvalidRelation)

	_, err = h.run("deck", "use", s1)
	assert.Error(t, err)
}

func TestDeckArgRequired(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("deck", "slides")
	assert.ErrorContains(t, err, "deck ID is required")

	_, err = h.run("tree", "--format", "xml", "not-a-uuid")
	assert.Error(t, err)
}

func TestMcpTools(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("mcp", "tools")
	assert.Contains(t, out, "all_slides")
	assert.Contains(t, out, "add_child")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
}

func TestPrintTreeMarksSharedDecks(t *testing.T) {
	common := uuid.New()
	tree := &models.TreeNode{ID: uuid.New(), Kind: models.KindDeck, Name: "root", Children: []*models.TreeNode{
		{ID: uuid.New(), Kind: models.KindDeck, Name: "left", Children: []*models.TreeNode{
			{ID: common, Kind: models.KindDeck, Name: "common", Children: []*models.TreeNode{
				{ID: uuid.New(), Kind: models.KindSlide, Name: "x"},
			}},
		}},
		{ID: uuid.New(), Kind: models.KindDeck, Name: "right", Children: []*models.TreeNode{
			{ID: common, Kind: models.KindDeck, Name: "common", Shared: true},
		}},
	}}

	var out bytes.Buffer
	printTree(&out, tree, "", true, true)
	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "[shared, expanded above]"))
	assert.Equal(t, 2, strings.Count(text, "common"))
	assert.Equal(t, 1, strings.Count(text, " x "))
}
