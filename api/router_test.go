package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kutbudev/decktree/api"
	"github.com/kutbudev/decktree/api/handlers"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/internal/metrics"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository/repotest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := deck.NewService(repotest.DB(t), logger.Nop())
	return api.NewRouter(svc, logger.Nop(), api.RouterOptions{
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func create(t *testing.T, r http.Handler, kind, name string) models.Node {
	t.Helper()
	w := do(t, r, http.MethodPost, "/v1/"+kind+"s", handlers.CreateNodeInput{Name: name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Node](t, w)
}

func attach(t *testing.T, r http.Handler, parent, child uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, r, http.MethodPost, "/v1/decks/"+parent.String()+"/children",
		handlers.AddChildInput{ChildID: child.String()})
}

func TestPing(t *testing.T) {
	r := newRouter(t)
	w := do(t, r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestComposeAndQuery(t *testing.T) {
	r := newRouter(t)
	root := create(t, r, "deck", "root")
	sub := create(t, r, "deck", "sub")
	s1 := create(t, r, "slide", "one")
	s2 := create(t, r, "slide", "two")
	assert.Equal(t, models.KindDeck, root.Kind)
	assert.Equal(t, models.KindSlide, s1.Kind)

	w := attach(t, r, sub.ID, s1.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := decode[models.Edge](t, w)
	assert.Equal(t, 0, *e.Sequence)

	require.Equal(t, http.StatusCreated, attach(t, r, sub.ID, s2.ID).Code)
	require.Equal(t, http.StatusCreated, attach(t, r, root.ID, sub.ID).Code)

	w = do(t, r, http.MethodGet, "/v1/decks/"+root.ID.String()+"/slides", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slides := decode[handlers.ListResponse[models.Node]](t, w)
	assert.Equal(t, 2, slides.Count)

	w = do(t, r, http.MethodGet, "/v1/decks/"+sub.ID.String()+"/children", nil)
	require.Equal(t, http.StatusOK, w.Code)
	children := decode[handlers.ListResponse[models.Node]](t, w)
	require.Len(t, children.Items, 2)
	assert.Equal(t, s1.ID, children.Items[0].ID)

	w = do(t, r, http.MethodGet, "/v1/nodes/"+s1.ID.String()+"/parents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	parents := decode[handlers.ListResponse[models.Node]](t, w)
	require.Len(t, parents.Items, 1)
	assert.Equal(t, sub.ID, parents.Items[0].ID)

	w = do(t, r, http.MethodGet, "/v1/decks/"+root.ID.String()+"/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[models.TreeNode](t, w)
	assert.Equal(t, 2, tree.CountSlides())

	w = do(t, r, http.MethodGet, "/v1/nodes?kind=deck", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[handlers.ListResponse[models.Node]](t, w).Count)
}

func TestEmptyListsAreArrays(t *testing.T) {
	r := newRouter(t)
	d := create(t, r, "deck", "empty")

	w := do(t, r, http.MethodGet, "/v1/decks/"+d.ID.String()+"/slides", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
}

func TestErrorMapping(t *testing.T) {
	r := newRouter(t)
	a := create(t, r, "deck", "a")
	b := create(t, r, "deck", "b")
	s := create(t, r, "slide", "s")
	require.Equal(t, http.StatusCreated, attach(t, r, a.ID, b.ID).Code)
	require.Equal(t, http.StatusCreated, attach(t, r, b.ID, a.ID).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"cycle", http.MethodGet, "/v1/decks/" + a.ID.String() + "/slides", nil, http.StatusConflict, handlers.CodeCycleDetected},
		{"unknown deck", http.MethodGet, "/v1/decks/" + uuid.NewString() + "/slides", nil, http.StatusNotFound, handlers.CodeNotFound},
		{"slide as root", http.MethodGet, "/v1/decks/" + s.ID.String() + "/slides", nil, http.StatusUnprocessableEntity, handlers.CodeInvalidRelation},
		{"slide as parent", http.MethodPost, "/v1/decks/" + s.ID.String() + "/children", handlers.AddChildInput{ChildID: a.ID.String()}, http.StatusUnprocessableEntity, handlers.CodeInvalidRelation},
		{"bad id", http.MethodGet, "/v1/nodes/not-a-uuid", nil, http.StatusBadRequest, handlers.CodeBadRequest},
		{"bad kind", http.MethodGet, "/v1/nodes?kind=folder", nil, http.StatusBadRequest, handlers.CodeBadRequest},
		{"missing edge", http.MethodDelete, "/v1/edges/" + uuid.NewString(), nil, http.StatusNotFound, handlers.CodeNotFound},
		{"referenced node", http.MethodDelete, "/v1/nodes/" + a.ID.String(), nil, http.StatusUnprocessableEntity, handlers.CodeInvalidRelation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[handlers.ErrorResponse](t, w).Code)
		})
	}
}

func TestRenameAndDelete(t *testing.T) {
	r := newRouter(t)
	d := create(t, r, "deck", "draft")

	w := do(t, r, http.MethodPatch, "/v1/nodes/"+d.ID.String(), handlers.RenameNodeInput{Name: "final"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "final", decode[models.Node](t, w).Name)

	w = do(t, r, http.MethodPatch, "/v1/nodes/"+d.ID.String(), handlers.RenameNodeInput{Name: ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decode[models.Node](t, w).Name)

	w = do(t, r, http.MethodDelete, "/v1/nodes/"+d.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/v1/nodes/"+d.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t)
	do(t, r, http.MethodGet, "/ping", nil)

	w := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `decktree_http_requests_total{method="GET",route="/ping",status="200"} 1`))
}
