package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/cache"
	"github.com/clipvault/clipvault/src/internal/services"
	"github.com/clipvault/clipvault/src/internal/syntax"
)

// SnippetHandler handles snippet endpoints
type SnippetHandler struct {
	snippets *services.SnippetService
}

// NewSnippetHandler creates a new snippet handler
func NewSnippetHandler(db *gorm.DB, config *viper.Viper, cacheManager *cache.Manager) *SnippetHandler {
	return &SnippetHandler{
		snippets: services.NewSnippetService(db, config, cacheManager),
	}
}

// CreateSnippetRequest represents a snippet creation request. Language may be
// omitted when a filename with a recognizable extension is supplied.
type CreateSnippetRequest struct {
	Title        string     `json:"title" validate:"required,max=255"`
	Code         string     `json:"code" validate:"required"`
	Language     string     `json:"language" validate:"max=50"`
	Filename     string     `json:"filename" validate:"max=255"`
	Tags         []string   `json:"tags"`
	CollectionID *uuid.UUID `json:"collection_id"`
}

// UpdateSnippetRequest represents a partial snippet update
type UpdateSnippetRequest struct {
	Title        *string    `json:"title"`
	Code         *string    `json:"code"`
	Language     *string    `json:"language"`
	CollectionID *uuid.UUID `json:"collection_id"`
}

// TagsRequest carries tag names for the tag mutation endpoints
type TagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1"`
}

// Create creates a new snippet
func (h *SnippetHandler) Create(c echo.Context) error {
	var req CreateSnippetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	language := req.Language
	if language == "" {
		detected, ok := syntax.DetectByFilename(req.Filename)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "language or a recognizable filename is required")
		}
		language = detected.Name
	}

	snippet, err := h.snippets.CreateSnippet(services.CreateSnippetInput{
		Title:        req.Title,
		Code:         req.Code,
		Language:     language,
		Tags:         req.Tags,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, toSnippetResponse(snippet))
}

// Get returns a live snippet by ID
func (h *SnippetHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	snippet, err := h.snippets.GetSnippet(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}

// List returns all live snippets
func (h *SnippetHandler) List(c echo.Context) error {
	snippets, err := h.snippets.ListSnippets()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponses(snippets))
}

// Search filters live snippets by keyword, language, and tags. Tags are
// comma-separated and all of them must be present on a match.
func (h *SnippetHandler) Search(c echo.Context) error {
	input := services.SearchSnippetsInput{
		Keyword:  c.QueryParam("keyword"),
		Language: c.QueryParam("language"),
	}
	if tags := c.QueryParam("tags"); tags != "" {
		input.Tags = strings.Split(tags, ",")
	}

	snippets, err := h.snippets.SearchSnippets(input)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponses(snippets))
}

// Update applies a partial update to a snippet
func (h *SnippetHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateSnippetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	snippet, err := h.snippets.UpdateSnippet(id, services.UpdateSnippetInput{
		Title:        req.Title,
		Code:         req.Code,
		Language:     req.Language,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}

// Delete moves a snippet to the trash
func (h *SnippetHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	changed, err := h.snippets.SoftDeleteSnippet(id)
	if err != nil {
		return httpError(err)
	}
	if !changed {
		return echo.NewHTTPError(http.StatusNotFound, "snippet not found")
	}

	return c.NoContent(http.StatusNoContent)
}

// AddTags attaches tags to a snippet, creating unseen ones
func (h *SnippetHandler) AddTags(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req TagsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	snippet, err := h.snippets.AddTags(id, req.Tags)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}

// RemoveTags detaches the named tags from a snippet
func (h *SnippetHandler) RemoveTags(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req TagsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	snippet, err := h.snippets.RemoveTags(id, req.Tags)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}

// ReplaceTags swaps a snippet's tag set for the given names
func (h *SnippetHandler) ReplaceTags(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req TagsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	snippet, err := h.snippets.ReplaceTags(id, req.Tags)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}
