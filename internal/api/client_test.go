package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	router "github.com/kutbudev/decktree/api"
	"github.com/kutbudev/decktree/internal/api"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
	"github.com/kutbudev/decktree/pkg/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := deck.NewService(repotest.DB(t), logger.Nop())
	srv := httptest.NewServer(router.NewRouter(svc, logger.Nop(), router.RouterOptions{}))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	require.NoError(t, c.Ping(ctx))

	root, err := c.CreateNode(ctx, models.KindDeck, "root")
	require.NoError(t, err)
	sub, err := c.CreateNode(ctx, models.KindDeck, "sub")
	require.NoError(t, err)
	slide, err := c.CreateNode(ctx, models.KindSlide, "intro")
	require.NoError(t, err)

	e, err := c.AddChild(ctx, sub.ID, slide.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, e.HeadID)
	_, err = c.AddChild(ctx, root.ID, sub.ID)
	require.NoError(t, err)

	slides, err := c.AllSlides(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, slide.ID, slides[0].ID)

	children, err := c.DirectChildren(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, sub.ID, children[0].ID)

	parents, err := c.Parents(ctx, slide.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)

	tree, err := c.Tree(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "sub", tree.Children[0].Name)

	renamed, err := c.RenameNode(ctx, slide.ID, "outro")
	require.NoError(t, err)
	assert.Equal(t, "outro", renamed.Name)

	decks, err := c.ListNodes(ctx, models.KindDeck)
	require.NoError(t, err)
	assert.Len(t, decks, 2)

	require.NoError(t, c.RemoveEdge(ctx, e.ID))
	slides, err = c.AllSlides(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, slides)

	require.NoError(t, c.DeleteNode(ctx, slide.ID))
	_, err = c.GetNode(ctx, slide.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClientMapsDomainErrors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	a, err := c.CreateNode(ctx, models.KindDeck, "a")
	require.NoError(t, err)
	b, err := c.CreateNode(ctx, models.KindDeck, "b")
	require.NoError(t, err)
	_, err = c.AddChild(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = c.AddChild(ctx, b.ID, a.ID)
	require.NoError(t, err)

	_, err = c.AllSlides(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrCycleDetected)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = c.AllSlides(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	s, err := c.CreateNode(ctx, models.KindSlide, "s")
	require.NoError(t, err)
	_, err = c.AddChild(ctx, s.ID, a.ID)
	assert.ErrorIs(t, err, repository.ErrInvalidRelation)

	_, err = c.CreateNode(ctx, models.Kind("folder"), "x")
	assert.ErrorIs(t, err, repository.ErrInvalidKind)
}

func TestInvalidKindMatchesLocalBackend(t *testing.T) {
	ctx := context.Background()
	local := deck.NewService(repotest.DB(t), logger.Nop())
	backends := map[string]deck.Backend{
		"local":  local,
		"remote": newClient(t),
	}
	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			_, err := b.CreateNode(ctx, models.Kind("folder"), "x")
			assert.ErrorIs(t, err, repository.ErrInvalidKind)
		})
	}
}
