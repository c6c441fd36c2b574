package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clipvault/clipvault/src/internal/auth"
	"github.com/clipvault/clipvault/src/internal/database/models"
	"github.com/clipvault/clipvault/src/internal/services"
	"github.com/clipvault/clipvault/src/internal/syntax"
)

// httpError translates service error kinds into HTTP status codes so the
// transport stays a thin shell over the vault engine.
func httpError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidHierarchy):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// parseID parses a :id path parameter
func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// SnippetResponse represents a snippet in API responses
type SnippetResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Code          string     `json:"code"`
	Language      string     `json:"language"`
	LanguageColor string     `json:"language_color,omitempty"`
	Tags          []string   `json:"tags"`
	CollectionID  *uuid.UUID `json:"collection_id,omitempty"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

// CollectionResponse represents a collection with its nested children
type CollectionResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	ParentID       *uuid.UUID           `json:"parent_id,omitempty"`
	SubCollections []CollectionResponse `json:"sub_collections"`
	Snippets       []SnippetResponse    `json:"snippets"`
}

func toSnippetResponse(s *models.Snippet) SnippetResponse {
	return SnippetResponse{
		ID:            s.ID,
		Title:         s.Title,
		Code:          s.Code,
		Language:      s.Language.Name,
		LanguageColor: syntax.Color(s.Language.Name),
		Tags:          s.TagNames(),
		CollectionID:  s.CollectionID,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toSnippetResponses(snippets []models.Snippet) []SnippetResponse {
	out := make([]SnippetResponse, 0, len(snippets))
	for i := range snippets {
		out = append(out, toSnippetResponse(&snippets[i]))
	}
	return out
}

func toCollectionResponse(c *models.Collection) CollectionResponse {
	resp := CollectionResponse{
		ID:             c.ID,
		Name:           c.Name,
		ParentID:       c.ParentID,
		SubCollections: make([]CollectionResponse, 0, len(c.SubCollections)),
		Snippets:       toSnippetResponses(c.Snippets),
	}
	for i := range c.SubCollections {
		resp.SubCollections = append(resp.SubCollections, toCollectionResponse(&c.SubCollections[i]))
	}
	return resp
}

func toCollectionResponses(collections []models.Collection) []CollectionResponse {
	out := make([]CollectionResponse, 0, len(collections))
	for i := range collections {
		out = append(out, toCollectionResponse(&collections[i]))
	}
	return out
}
