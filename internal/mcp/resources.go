package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "decktree://"

func (s *Server) registerResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         uriScheme + "decks",
		Name:        "decks",
		Description: "Every deck in the store",
		MIMEType:    "application/json",
	}, s.handleDecksResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "decks/{id}/tree",
		Name:        "deck-tree",
		Description: "A deck and everything under it as a nested tree",
		MIMEType:    "application/json",
	}, s.handleDeckTreeResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "decks/{id}/slides",
		Name:        "deck-slides",
		Description: "Every slide reachable from a deck",
		MIMEType:    "application/json",
	}, s.handleDeckSlidesResource)
}

// extractIDFromURI extracts the {id} portion from a resource URI
func extractIDFromURI(uri, prefix, suffix string) string {
	s := strings.TrimPrefix(uri, prefix)
	if suffix != "" {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

func jsonContents(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) deckIDFromURI(uri, suffix string) (uuid.UUID, error) {
	raw := extractIDFromURI(uri, uriScheme+"decks/", suffix)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.ResourceNotFoundError(uri)
	}
	return id, nil
}

func resourceErr(uri string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return mcp.ResourceNotFoundError(uri)
	}
	return toolError(err)
}

func (s *Server) handleDecksResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	decks, err := s.backend.ListNodes(ctx, models.KindDeck)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return jsonContents(req.Params.URI, listResult(decks))
}

func (s *Server) handleDeckTreeResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := s.deckIDFromURI(req.Params.URI, "/tree")
	if err != nil {
		return nil, err
	}
	t, err := s.backend.Tree(ctx, id)
	if err != nil {
		return nil, resourceErr(req.Params.URI, err)
	}
	return jsonContents(req.Params.URI, t)
}

func (s *Server) handleDeckSlidesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := s.deckIDFromURI(req.Params.URI, "/slides")
	if err != nil {
		return nil, err
	}
	slides, err := s.backend.AllSlides(ctx, id)
	if err != nil {
		return nil, resourceErr(req.Params.URI, err)
	}
	return jsonContents(req.Params.URI, listResult(slides))
}
