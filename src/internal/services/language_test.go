package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipvault/clipvault/src/internal/database/models"
)

func TestLanguageService(t *testing.T) {
	db := setupTestDB(t)
	languageService := NewLanguageService(db)

	t.Run("ResolveCreatesUnseenLanguage", func(t *testing.T) {
		language, err := languageService.ResolveLanguage("Go")
		assert.NoError(t, err)
		assert.Equal(t, "Go", language.Name)
		assert.Equal(t, "go", language.NameNormalized)
	})

	t.Run("ResolveIsCaseInsensitive", func(t *testing.T) {
		first, err := languageService.ResolveLanguage("Python")
		require.NoError(t, err)

		second, err := languageService.ResolveLanguage("PYTHON")
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Python", second.Name)

		var count int64
		db.Model(&models.Language{}).Where("name_normalized = ?", "python").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ResolveCollapsesAliases", func(t *testing.T) {
		byAlias, err := languageService.ResolveLanguage("js")
		assert.NoError(t, err)
		assert.Equal(t, "JavaScript", byAlias.Name)

		byName, err := languageService.ResolveLanguage("javascript")
		assert.NoError(t, err)
		assert.Equal(t, byAlias.ID, byName.ID)

		again, err := languageService.ResolveLanguage("node")
		assert.NoError(t, err)
		assert.Equal(t, byAlias.ID, again.ID)
	})

	t.Run("ResolveKeepsUnknownCasing", func(t *testing.T) {
		language, err := languageService.ResolveLanguage("Brainfuck")
		assert.NoError(t, err)
		assert.Equal(t, "Brainfuck", language.Name)
	})
}
