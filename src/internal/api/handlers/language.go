package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clipvault/clipvault/src/internal/syntax"
)

// LanguageHandler serves language metadata
type LanguageHandler struct{}

// NewLanguageHandler creates a new language handler
func NewLanguageHandler() *LanguageHandler {
	return &LanguageHandler{}
}

// List returns the known languages with their aliases, extensions, and colors
func (h *LanguageHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, syntax.Known())
}
