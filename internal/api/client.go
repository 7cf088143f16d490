package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/api/handlers"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
)

const defaultBaseURL = "http://localhost:8080"

// Client talks to a decktree server over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ deck.Backend = (*Client)(nil)

// NewClient creates a client for baseURL. An empty baseURL falls back to
// DECKTREE_SERVER_URL and then to localhost.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("DECKTREE_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx reply. It unwraps to the matching domain error so
// callers can use errors.Is against the repository sentinels.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return handlers.SentinelFor(e.Code)
}

// makeRequest makes an HTTP request and decodes the JSON reply into out.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var er handlers.ErrorResponse
		if json.Unmarshal(respBody, &er) != nil || er.Error == "" {
			er.Error = string(respBody)
		}
		return &APIError{Status: resp.StatusCode, Code: er.Code, Message: er.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) list(ctx context.Context, endpoint string) ([]*models.Node, error) {
	var resp handlers.ListResponse[*models.Node]
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Ping checks that the server is up.
func (c *Client) Ping(ctx context.Context) error {
	return c.makeRequest(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *Client) CreateNode(ctx context.Context, kind models.Kind, name string) (*models.Node, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("create node: %w: %q", repository.ErrInvalidKind, kind)
	}
	var n models.Node
	err := c.makeRequest(ctx, http.MethodPost, "/v1/"+kind.String()+"s", handlers.CreateNodeInput{Name: name}, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) GetNode(ctx context.Context, id uuid.UUID) (*models.Node, error) {
	var n models.Node
	if err := c.makeRequest(ctx, http.MethodGet, "/v1/nodes/"+id.String(), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) ListNodes(ctx context.Context, kind models.Kind) ([]*models.Node, error) {
	endpoint := "/v1/nodes"
	if kind != "" {
		endpoint += "?kind=" + url.QueryEscape(kind.String())
	}
	return c.list(ctx, endpoint)
}

func (c *Client) RenameNode(ctx context.Context, id uuid.UUID, name string) (*models.Node, error) {
	var n models.Node
	err := c.makeRequest(ctx, http.MethodPatch, "/v1/nodes/"+id.String(), handlers.RenameNodeInput{Name: name}, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNode(ctx context.Context, id uuid.UUID) error {
	return c.makeRequest(ctx, http.MethodDelete, "/v1/nodes/"+id.String(), nil, nil)
}

func (c *Client) AddChild(ctx context.Context, parentID, childID uuid.UUID) (*models.Edge, error) {
	var e models.Edge
	err := c.makeRequest(ctx, http.MethodPost, "/v1/decks/"+parentID.String()+"/children",
		handlers.AddChildInput{ChildID: childID.String()}, &e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) RemoveEdge(ctx context.Context, edgeID uuid.UUID) error {
	return c.makeRequest(ctx, http.MethodDelete, "/v1/edges/"+edgeID.String(), nil, nil)
}

func (c *Client) DirectChildren(ctx context.Context, deckID uuid.UUID) ([]*models.Node, error) {
	return c.list(ctx, "/v1/decks/"+deckID.String()+"/children")
}

func (c *Client) AllSlides(ctx context.Context, deckID uuid.UUID) ([]*models.Node, error) {
	return c.list(ctx, "/v1/decks/"+deckID.String()+"/slides")
}

func (c *Client) Parents(ctx context.Context, nodeID uuid.UUID) ([]*models.Node, error) {
	return c.list(ctx, "/v1/nodes/"+nodeID.String()+"/parents")
}

func (c *Client) Tree(ctx context.Context, deckID uuid.UUID) (*models.TreeNode, error) {
	var t models.TreeNode
	if err := c.makeRequest(ctx, http.MethodGet, "/v1/decks/"+deckID.String()+"/tree", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
