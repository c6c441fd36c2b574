package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/cache"
	"github.com/clipvault/clipvault/src/internal/services"
)

// CollectionHandler handles collection endpoints
type CollectionHandler struct {
	collections *services.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(db *gorm.DB, config *viper.Viper, cacheManager *cache.Manager) *CollectionHandler {
	return &CollectionHandler{
		collections: services.NewCollectionService(db, config, cacheManager),
	}
}

// CreateCollectionRequest represents a collection creation request
type CreateCollectionRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCollectionRequest renames a collection
type UpdateCollectionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// MoveCollectionRequest reparents a collection; a nil parent detaches it
type MoveCollectionRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create creates a collection, optionally nested under a root
func (h *CollectionHandler) Create(c echo.Context) error {
	var req CreateCollectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	collection, err := h.collections.CreateCollection(req.Name, req.ParentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toCollectionResponse(collection))
}

// Get returns a live collection with its snippets and sub-collections
func (h *CollectionHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	collection, err := h.collections.GetCollectionWithSnippets(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCollectionResponse(collection))
}

// List returns the live root collections with their subtrees
func (h *CollectionHandler) List(c echo.Context) error {
	collections, err := h.collections.ListCollections()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCollectionResponses(collections))
}

// Update renames a collection
func (h *CollectionHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateCollectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	collection, err := h.collections.UpdateCollection(id, req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCollectionResponse(collection))
}

// Move reparents a collection
func (h *CollectionHandler) Move(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req MoveCollectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	collection, err := h.collections.MoveCollection(id, req.ParentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCollectionResponse(collection))
}

// Delete moves a collection and its whole subtree to the trash
func (h *CollectionHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	changed, err := h.collections.SoftDeleteCollection(id)
	if err != nil {
		return httpError(err)
	}
	if !changed {
		return echo.NewHTTPError(http.StatusNotFound, "collection not found")
	}

	return c.NoContent(http.StatusNoContent)
}
