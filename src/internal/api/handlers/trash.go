package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/cache"
	"github.com/clipvault/clipvault/src/internal/services"
)

// TrashHandler handles trash endpoints
type TrashHandler struct {
	trash *services.TrashService
}

// NewTrashHandler creates a new trash handler
func NewTrashHandler(db *gorm.DB, config *viper.Viper, cacheManager *cache.Manager) *TrashHandler {
	return &TrashHandler{
		trash: services.NewTrashService(db, config, cacheManager),
	}
}

// ListCollections returns trashed root collections with their subtrees
func (h *TrashHandler) ListCollections(c echo.Context) error {
	collections, err := h.trash.ListTrashedCollections()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCollectionResponses(collections))
}

// ListSnippets returns independently trashed snippets
func (h *TrashHandler) ListSnippets(c echo.Context) error {
	snippets, err := h.trash.ListTrashedSnippets()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponses(snippets))
}

// RestoreCollection restores a trashed collection and its subtree
func (h *TrashHandler) RestoreCollection(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	collection, err := h.trash.RestoreCollection(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCollectionResponse(collection))
}

// RestoreSnippet restores a single trashed snippet
func (h *TrashHandler) RestoreSnippet(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	snippet, err := h.trash.RestoreSnippet(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}

// PurgeCollection permanently deletes a trashed collection subtree
func (h *TrashHandler) PurgeCollection(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	removed, err := h.trash.PurgeCollection(id)
	if err != nil {
		return httpError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "trashed collection not found")
	}

	return c.NoContent(http.StatusNoContent)
}

// PurgeSnippet permanently deletes a trashed snippet
func (h *TrashHandler) PurgeSnippet(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	removed, err := h.trash.PurgeSnippet(id)
	if err != nil {
		return httpError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "trashed snippet not found")
	}

	return c.NoContent(http.StatusNoContent)
}

// Empty purges everything currently in the trash
func (h *TrashHandler) Empty(c echo.Context) error {
	count, err := h.trash.EmptyTrash()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"removed": count})
}
