package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clipvault/clipvault/src/internal/api/handlers"
	"github.com/clipvault/clipvault/src/internal/auth"
)

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	authMiddleware := auth.NewMiddleware(s.auth)

	// Health check
	s.echo.GET("/health", s.handleHealth)

	apiV1 := s.echo.Group("/api/v1")

	// Authentication routes
	authHandler := handlers.NewAuthHandler(s.db, s.auth, s.config)
	authGroup := apiV1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Snippet routes
	snippetHandler := handlers.NewSnippetHandler(s.db, s.config, s.cache)
	snippetGroup := apiV1.Group("/snippets", authMiddleware.Auth())
	snippetGroup.GET("", snippetHandler.List)
	snippetGroup.POST("", snippetHandler.Create)
	snippetGroup.GET("/search", snippetHandler.Search)
	snippetGroup.GET("/:id", snippetHandler.Get)
	snippetGroup.PATCH("/:id", snippetHandler.Update)
	snippetGroup.DELETE("/:id", snippetHandler.Delete)
	snippetGroup.POST("/:id/tags", snippetHandler.AddTags)
	snippetGroup.DELETE("/:id/tags", snippetHandler.RemoveTags)
	snippetGroup.PUT("/:id/tags", snippetHandler.ReplaceTags)

	// Language metadata
	languageHandler := handlers.NewLanguageHandler()
	apiV1.GET("/languages", languageHandler.List, authMiddleware.Auth())

	// Collection routes
	collectionHandler := handlers.NewCollectionHandler(s.db, s.config, s.cache)
	collectionGroup := apiV1.Group("/collections", authMiddleware.Auth())
	collectionGroup.GET("", collectionHandler.List)
	collectionGroup.POST("", collectionHandler.Create)
	collectionGroup.GET("/:id", collectionHandler.Get)
	collectionGroup.PATCH("/:id", collectionHandler.Update)
	collectionGroup.PUT("/:id/move", collectionHandler.Move)
	collectionGroup.DELETE("/:id", collectionHandler.Delete)

	// Trash routes
	trashHandler := handlers.NewTrashHandler(s.db, s.config, s.cache)
	trashGroup := apiV1.Group("/trash", authMiddleware.Auth())
	trashGroup.GET("/collections", trashHandler.ListCollections)
	trashGroup.GET("/snippets", trashHandler.ListSnippets)
	trashGroup.POST("/collections/:id/restore", trashHandler.RestoreCollection)
	trashGroup.POST("/snippets/:id/restore", trashHandler.RestoreSnippet)
	trashGroup.DELETE("/collections/:id", trashHandler.PurgeCollection)
	trashGroup.DELETE("/snippets/:id", trashHandler.PurgeSnippet)
	trashGroup.DELETE("", trashHandler.Empty)
}

func (s *Server) handleHealth(c echo.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
