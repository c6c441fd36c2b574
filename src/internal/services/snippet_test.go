package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipvault/clipvault/src/internal/database/models"
)

func TestSnippetService(t *testing.T) {
	db := setupTestDB(t)
	cfg := viper.New()

	snippetService := NewSnippetService(db, cfg, nil) // nil cache for testing
	require.NotNil(t, snippetService)

	t.Run("CreateSnippet", func(t *testing.T) {
		snippet, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    "Hello World",
			Code:     "fmt.Println(\"hello\")",
			Language: "Go",
			Tags:     []string{"basics", "stdout"},
		})
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, snippet.ID)
		assert.False(t, snippet.IsDeleted)
		assert.Equal(t, "Go", snippet.Language.Name)
		assert.ElementsMatch(t, []string{"basics", "stdout"}, snippet.TagNames())
		assert.Nil(t, snippet.CollectionID)
	})

	t.Run("CreateSnippetInCollection", func(t *testing.T) {
		collection := &models.Collection{Name: "Utilities"}
		require.NoError(t, db.Create(collection).Error)

		snippet, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:        "Retry",
			Code:         "for i := 0; i < 3; i++ {}",
			Language:     "go",
			CollectionID: &collection.ID,
		})
		assert.NoError(t, err)
		require.NotNil(t, snippet.CollectionID)
		assert.Equal(t, collection.ID, *snippet.CollectionID)
	})

	t.Run("CreateSnippetInMissingCollection", func(t *testing.T) {
		missing := uuid.New()
		_, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:        "Orphan",
			Code:         "x",
			Language:     "go",
			CollectionID: &missing,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("GetSnippet", func(t *testing.T) {
		created, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    "Get Test",
			Code:     "code",
			Language: "go",
			Tags:     []string{"get"},
		})
		require.NoError(t, err)

		snippet, err := snippetService.GetSnippet(created.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Get Test", snippet.Title)
		assert.Equal(t, []string{"get"}, snippet.TagNames())

		_, err = snippetService.GetSnippet(uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateSnippetPartial", func(t *testing.T) {
		created, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    "Original",
			Code:     "original code",
			Language: "go",
		})
		require.NoError(t, err)

		newTitle := "Renamed"
		updated, err := snippetService.UpdateSnippet(created.ID, UpdateSnippetInput{Title: &newTitle})
		assert.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		// Absent fields stay untouched
		assert.Equal(t, "original code", updated.Code)
		assert.Equal(t, "go", updated.Language.NameNormalized)

		newLanguage := "TypeScript"
		updated, err = snippetService.UpdateSnippet(created.ID, UpdateSnippetInput{Language: &newLanguage})
		assert.NoError(t, err)
		assert.Equal(t, "TypeScript", updated.Language.Name)
	})

	t.Run("UpdateMissingSnippet", func(t *testing.T) {
		title := "nope"
		_, err := snippetService.UpdateSnippet(uuid.New(), UpdateSnippetInput{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SoftDeleteSnippet", func(t *testing.T) {
		created, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    "Doomed",
			Code:     "x",
			Language: "go",
		})
		require.NoError(t, err)

		changed, err := snippetService.SoftDeleteSnippet(created.ID)
		assert.NoError(t, err)
		assert.True(t, changed)

		// Trashed snippets are invisible to the live API
		_, err = snippetService.GetSnippet(created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		title := "still doomed"
		_, err = snippetService.UpdateSnippet(created.ID, UpdateSnippetInput{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)

		// Second delete reports no state change
		changed, err = snippetService.SoftDeleteSnippet(created.ID)
		assert.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("TagMutation", func(t *testing.T) {
		created, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    "Tagged",
			Code:     "x",
			Language: "go",
			Tags:     []string{"alpha"},
		})
		require.NoError(t, err)

		// Re-adding an existing tag is a no-op
		snippet, err := snippetService.AddTags(created.ID, []string{"Alpha", "beta"})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"alpha", "beta"}, snippet.TagNames())

		var joins int64
		db.Model(&models.SnippetTag{}).Where("snippet_id = ?", created.ID).Count(&joins)
		assert.Equal(t, int64(2), joins)

		// Unknown names are silently ignored on remove
		snippet, err = snippetService.RemoveTags(created.ID, []string{"BETA", "missing"})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"alpha"}, snippet.TagNames())

		// The tag itself survives association removal
		var count int64
		db.Model(&models.Tag{}).Where("name_normalized = ?", "beta").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ReplaceTagsIsExactSet", func(t *testing.T) {
		created, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    "Replace Test",
			Code:     "x",
			Language: "go",
			Tags:     []string{"one", "two"},
		})
		require.NoError(t, err)

		snippet, err := snippetService.ReplaceTags(created.ID, []string{"Two", "three"})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"two", "three"}, snippet.TagNames())

		// Replacing with nothing clears the set
		snippet, err = snippetService.ReplaceTags(created.ID, nil)
		assert.NoError(t, err)
		assert.Empty(t, snippet.TagNames())
	})
}

func TestSnippetServicePersistenceErrors(t *testing.T) {
	db := setupTestDB(t)
	snippetService := NewSnippetService(db, viper.New(), nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A failing existence check is a persistence error, not a missing record
	collectionID := uuid.New()
	_, err = snippetService.CreateSnippet(CreateSnippetInput{
		Title: "x", Code: "y", Language: "go", CollectionID: &collectionID,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSnippetSearch(t *testing.T) {
	db := setupTestDB(t)
	snippetService := NewSnippetService(db, viper.New(), nil)

	mustCreate := func(title, code, language string, tags ...string) *models.Snippet {
		t.Helper()
		snippet, err := snippetService.CreateSnippet(CreateSnippetInput{
			Title:    title,
			Code:     code,
			Language: language,
			Tags:     tags,
		})
		require.NoError(t, err)
		return snippet
	}

	mustCreate("Binary Search", "func bsearch() {}", "Go", "a", "b")
	a := mustCreate("Linear Scan", "for range items {}", "Go", "a")
	mustCreate("Sorting", "sort.Slice(...)", "Python", "b")

	titles := func(snippets []models.Snippet) []string {
		out := make([]string, 0, len(snippets))
		for _, s := range snippets {
			out = append(out, s.Title)
		}
		return out
	}

	t.Run("KeywordIsCaseInsensitiveSubstring", func(t *testing.T) {
		results, err := snippetService.SearchSnippets(SearchSnippetsInput{Keyword: "SEARCH"})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Binary Search"}, titles(results))

		// Matches code as well as title
		results, err = snippetService.SearchSnippets(SearchSnippetsInput{Keyword: "sort.slice"})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Sorting"}, titles(results))
	})

	t.Run("LanguageFilterIsExactCaseInsensitive", func(t *testing.T) {
		results, err := snippetService.SearchSnippets(SearchSnippetsInput{Language: "GO"})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Binary Search", "Linear Scan"}, titles(results))
	})

	t.Run("TagFilterIsConjunction", func(t *testing.T) {
		results, err := snippetService.SearchSnippets(SearchSnippetsInput{Tags: []string{"a", "b"}})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Binary Search"}, titles(results))

		results, err = snippetService.SearchSnippets(SearchSnippetsInput{Tags: []string{"a", "c"}})
		assert.NoError(t, err)
		assert.Empty(t, results)

		results, err = snippetService.SearchSnippets(SearchSnippetsInput{Tags: []string{"a"}})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Binary Search", "Linear Scan"}, titles(results))
	})

	t.Run("DeletedSnippetsAreNotCandidates", func(t *testing.T) {
		changed, err := snippetService.SoftDeleteSnippet(a.ID)
		require.NoError(t, err)
		require.True(t, changed)

		results, err := snippetService.SearchSnippets(SearchSnippetsInput{Tags: []string{"a"}})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Binary Search"}, titles(results))
	})

	t.Run("CombinedFilters", func(t *testing.T) {
		results, err := snippetService.SearchSnippets(SearchSnippetsInput{
			Keyword:  "binary",
			Language: "go",
			Tags:     []string{"b"},
		})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Binary Search"}, titles(results))
	})
}
