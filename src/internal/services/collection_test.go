package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipvault/clipvault/src/internal/database/models"
)

func TestCollectionService(t *testing.T) {
	db := setupTestDB(t)
	cfg := viper.New()

	collectionService := NewCollectionService(db, cfg, nil)
	require.NotNil(t, collectionService)

	t.Run("CreateRootCollection", func(t *testing.T) {
		collection, err := collectionService.CreateCollection("Algorithms", nil)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, collection.ID)
		assert.True(t, collection.IsRoot())
		assert.False(t, collection.IsDeleted)
	})

	t.Run("CreateSubCollection", func(t *testing.T) {
		root, err := collectionService.CreateCollection("Networking", nil)
		require.NoError(t, err)

		sub, err := collectionService.CreateCollection("HTTP", &root.ID)
		assert.NoError(t, err)
		require.NotNil(t, sub.ParentID)
		assert.Equal(t, root.ID, *sub.ParentID)
	})

	t.Run("NestingIsCappedAtOneLevel", func(t *testing.T) {
		root, err := collectionService.CreateCollection("Databases", nil)
		require.NoError(t, err)
		sub, err := collectionService.CreateCollection("SQL", &root.ID)
		require.NoError(t, err)

		// A sub-collection cannot itself be a parent
		_, err = collectionService.CreateCollection("Joins", &sub.ID)
		assert.ErrorIs(t, err, ErrInvalidHierarchy)
	})

	t.Run("CreateUnderMissingParent", func(t *testing.T) {
		missing := uuid.New()
		_, err := collectionService.CreateCollection("Orphan", &missing)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateUnderTrashedParent", func(t *testing.T) {
		root, err := collectionService.CreateCollection("Doomed Parent", nil)
		require.NoError(t, err)
		changed, err := collectionService.SoftDeleteCollection(root.ID)
		require.NoError(t, err)
		require.True(t, changed)

		_, err = collectionService.CreateCollection("Child", &root.ID)
		assert.ErrorIs(t, err, ErrInvalidHierarchy)
	})

	t.Run("UpdateCollection", func(t *testing.T) {
		collection, err := collectionService.CreateCollection("Tmp", nil)
		require.NoError(t, err)

		renamed, err := collectionService.UpdateCollection(collection.ID, "Temporary")
		assert.NoError(t, err)
		assert.Equal(t, "Temporary", renamed.Name)

		_, err = collectionService.UpdateCollection(uuid.New(), "Nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("MoveCollection", func(t *testing.T) {
		a, err := collectionService.CreateCollection("Move A", nil)
		require.NoError(t, err)
		b, err := collectionService.CreateCollection("Move B", nil)
		require.NoError(t, err)
		leaf, err := collectionService.CreateCollection("Move Leaf", &a.ID)
		require.NoError(t, err)

		// Reparent under another root
		moved, err := collectionService.MoveCollection(leaf.ID, &b.ID)
		assert.NoError(t, err)
		require.NotNil(t, moved.ParentID)
		assert.Equal(t, b.ID, *moved.ParentID)

		// Detach to root
		moved, err = collectionService.MoveCollection(leaf.ID, nil)
		assert.NoError(t, err)
		assert.True(t, moved.IsRoot())
	})

	t.Run("MoveRejectsSelfParent", func(t *testing.T) {
		collection, err := collectionService.CreateCollection("Selfish", nil)
		require.NoError(t, err)

		_, err = collectionService.MoveCollection(collection.ID, &collection.ID)
		assert.ErrorIs(t, err, ErrInvalidHierarchy)
	})

	t.Run("MoveRejectsParentWithChildren", func(t *testing.T) {
		parent, err := collectionService.CreateCollection("Busy Parent", nil)
		require.NoError(t, err)
		_, err = collectionService.CreateCollection("Busy Child", &parent.ID)
		require.NoError(t, err)
		target, err := collectionService.CreateCollection("Target", nil)
		require.NoError(t, err)

		// Nesting a collection that has children would make a three-level tree
		_, err = collectionService.MoveCollection(parent.ID, &target.ID)
		assert.ErrorIs(t, err, ErrInvalidHierarchy)

		// Detaching it is still allowed
		moved, err := collectionService.MoveCollection(parent.ID, nil)
		assert.NoError(t, err)
		assert.True(t, moved.IsRoot())
	})

	t.Run("MoveRejectsNestedTarget", func(t *testing.T) {
		root, err := collectionService.CreateCollection("Deep Root", nil)
		require.NoError(t, err)
		sub, err := collectionService.CreateCollection("Deep Sub", &root.ID)
		require.NoError(t, err)
		loose, err := collectionService.CreateCollection("Loose", nil)
		require.NoError(t, err)

		_, err = collectionService.MoveCollection(loose.ID, &sub.ID)
		assert.ErrorIs(t, err, ErrInvalidHierarchy)
	})
}

func TestCollectionCascade(t *testing.T) {
	db := setupTestDB(t)
	cfg := viper.New()

	collectionService := NewCollectionService(db, cfg, nil)
	snippetService := NewSnippetService(db, cfg, nil)

	// Root C with snippet S1, sub-collection D with snippet S2
	buildTree := func(t *testing.T, prefix string) (c, d *models.Collection, s1, s2 *models.Snippet) {
		t.Helper()
		var err error
		c, err = collectionService.CreateCollection(prefix+" C", nil)
		require.NoError(t, err)
		d, err = collectionService.CreateCollection(prefix+" D", &c.ID)
		require.NoError(t, err)
		s1, err = snippetService.CreateSnippet(CreateSnippetInput{
			Title: prefix + " S1", Code: "x", Language: "go", CollectionID: &c.ID,
		})
		require.NoError(t, err)
		s2, err = snippetService.CreateSnippet(CreateSnippetInput{
			Title: prefix + " S2", Code: "y", Language: "go", CollectionID: &d.ID,
		})
		require.NoError(t, err)
		return c, d, s1, s2
	}

	isDeleted := func(t *testing.T, model interface{}, id uuid.UUID) bool {
		t.Helper()
		var deleted bool
		err := db.Model(model).Select("is_deleted").Where("id = ?", id).Scan(&deleted).Error
		require.NoError(t, err)
		return deleted
	}

	t.Run("SoftDeleteCascadesToSubtree", func(t *testing.T) {
		c, d, s1, s2 := buildTree(t, "Del")

		changed, err := collectionService.SoftDeleteCollection(c.ID)
		assert.NoError(t, err)
		assert.True(t, changed)

		assert.True(t, isDeleted(t, &models.Collection{}, c.ID))
		assert.True(t, isDeleted(t, &models.Collection{}, d.ID))
		assert.True(t, isDeleted(t, &models.Snippet{}, s1.ID))
		assert.True(t, isDeleted(t, &models.Snippet{}, s2.ID))

		// Re-deleting a trashed collection reports no change
		changed, err = collectionService.SoftDeleteCollection(c.ID)
		assert.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("RestoreMirrorsTheCascade", func(t *testing.T) {
		c, d, s1, s2 := buildTree(t, "Res")

		changed, err := collectionService.SoftDeleteCollection(c.ID)
		require.NoError(t, err)
		require.True(t, changed)

		restored, err := collectionService.RestoreCollection(c.ID)
		assert.NoError(t, err)
		assert.Equal(t, c.ID, restored.ID)

		assert.False(t, isDeleted(t, &models.Collection{}, c.ID))
		assert.False(t, isDeleted(t, &models.Collection{}, d.ID))
		assert.False(t, isDeleted(t, &models.Snippet{}, s1.ID))
		assert.False(t, isDeleted(t, &models.Snippet{}, s2.ID))
	})

	t.Run("RestoreRequiresTrashedState", func(t *testing.T) {
		c, _, _, _ := buildTree(t, "Live")

		_, err := collectionService.RestoreCollection(c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SoftDeleteSubtreeOnly", func(t *testing.T) {
		c, d, s1, s2 := buildTree(t, "Sub")

		// Trashing the sub-collection leaves the root and its snippet alone
		changed, err := collectionService.SoftDeleteCollection(d.ID)
		assert.NoError(t, err)
		assert.True(t, changed)

		assert.False(t, isDeleted(t, &models.Collection{}, c.ID))
		assert.True(t, isDeleted(t, &models.Collection{}, d.ID))
		assert.False(t, isDeleted(t, &models.Snippet{}, s1.ID))
		assert.True(t, isDeleted(t, &models.Snippet{}, s2.ID))
	})

	t.Run("LiveViewsHideTrashedMembers", func(t *testing.T) {
		c, d, s1, _ := buildTree(t, "View")

		changed, err := snippetService.SoftDeleteSnippet(s1.ID)
		require.NoError(t, err)
		require.True(t, changed)
		changed, err = collectionService.SoftDeleteCollection(d.ID)
		require.NoError(t, err)
		require.True(t, changed)

		loaded, err := collectionService.GetCollectionWithSnippets(c.ID)
		assert.NoError(t, err)
		assert.Empty(t, loaded.Snippets)
		assert.Empty(t, loaded.SubCollections)

		roots, err := collectionService.ListCollections()
		assert.NoError(t, err)
		for _, root := range roots {
			if root.ID == c.ID {
				assert.Empty(t, root.Snippets)
				assert.Empty(t, root.SubCollections)
			}
		}
	})

	t.Run("TrashedCollectionsLeaveListings", func(t *testing.T) {
		c, _, _, _ := buildTree(t, "Gone")

		changed, err := collectionService.SoftDeleteCollection(c.ID)
		require.NoError(t, err)
		require.True(t, changed)

		_, err = collectionService.GetCollectionWithSnippets(c.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		roots, err := collectionService.ListCollections()
		assert.NoError(t, err)
		for _, root := range roots {
			assert.NotEqual(t, c.ID, root.ID)
		}
	})

	t.Run("SoftDeleteMissingCollection", func(t *testing.T) {
		changed, err := collectionService.SoftDeleteCollection(uuid.New())
		assert.NoError(t, err)
		assert.False(t, changed)
	})
}
