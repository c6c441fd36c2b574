package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/cache"
	"github.com/clipvault/clipvault/src/internal/database/models"
)

// TrashService exposes the trashed side of the vault: listing, restore, and
// permanent purge.
type TrashService struct {
	db          *gorm.DB
	cfg         *viper.Viper
	cache       *cache.Manager
	collections *CollectionService
}

// NewTrashService creates a new trash service
func NewTrashService(db *gorm.DB, cfg *viper.Viper, cacheManager *cache.Manager) *TrashService {
	return &TrashService{
		db:          db,
		cfg:         cfg,
		cache:       cacheManager,
		collections: NewCollectionService(db, cfg, cacheManager),
	}
}

// ListTrashedCollections returns trashed root collections with their subtree
// and snippets attached for display.
func (s *TrashService) ListTrashedCollections() ([]models.Collection, error) {
	var collections []models.Collection
	err := s.db.
		Preload("Snippets").
		Preload("Snippets.Language").
		Preload("Snippets.Tags").
		Preload("SubCollections").
		Preload("SubCollections.Snippets").
		Preload("SubCollections.Snippets.Language").
		Preload("SubCollections.Snippets.Tags").
		Where("parent_id IS NULL AND is_deleted = ?", true).
		Order("name").
		Find(&collections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed collections: %w", err)
	}
	return collections, nil
}

// ListTrashedSnippets returns snippets that were trashed on their own. A
// snippet whose owning collection is also trashed is suppressed here; it
// surfaces under that collection's trash entry instead.
func (s *TrashService) ListTrashedSnippets() ([]models.Snippet, error) {
	var snippets []models.Snippet
	err := s.db.
		Select("snippets.*").
		Joins("LEFT JOIN collections ON collections.id = snippets.collection_id").
		Where("snippets.is_deleted = ? AND (snippets.collection_id IS NULL OR collections.is_deleted = ?)", true, false).
		Preload("Language").
		Preload("Tags").
		Find(&snippets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed snippets: %w", err)
	}
	return snippets, nil
}

// RestoreCollection brings a trashed collection and its subtree back to life
func (s *TrashService) RestoreCollection(id uuid.UUID) (*models.Collection, error) {
	return s.collections.RestoreCollection(id)
}

// RestoreSnippet clears a single snippet's tombstone. ErrNotFound when the
// snippet is not currently trashed.
func (s *TrashService) RestoreSnippet(id uuid.UUID) (*models.Snippet, error) {
	var snippet models.Snippet
	err := s.db.First(&snippet, "id = ? AND is_deleted = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("trashed snippet %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	err = s.db.Model(&snippet).Update("is_deleted", false).Error
	if err != nil {
		return nil, fmt.Errorf("failed to restore snippet: %w", err)
	}

	s.invalidateSnippets([]uuid.UUID{id})

	err = s.db.Preload("Language").Preload("Tags").First(&snippet, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &snippet, nil
}

// PurgeCollection permanently removes a trashed collection, its
// sub-collections, and every snippet in the subtree, children before parents.
// Returns false, without error, when the collection is missing or not trashed.
func (s *TrashService) PurgeCollection(id uuid.UUID) (bool, error) {
	root, err := s.collections.loadSubtree(id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	collectionIDs, snippetIDs := collectSubtree(root)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := purgeSnippetRows(tx, snippetIDs); err != nil {
		tx.Rollback()
		return false, err
	}

	// Parent-first collection order reversed so children go before parents.
	for i := len(collectionIDs) - 1; i >= 0; i-- {
		if err := tx.Delete(&models.Collection{}, "id = ?", collectionIDs[i]).Error; err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to purge collection: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateSnippets(snippetIDs)
	return true, nil
}

// PurgeSnippet permanently removes a single trashed snippet and its tag
// associations. Returns false when the snippet is missing or not trashed.
func (s *TrashService) PurgeSnippet(id uuid.UUID) (bool, error) {
	var snippet models.Snippet
	err := s.db.First(&snippet, "id = ? AND is_deleted = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := purgeSnippetRows(tx, []uuid.UUID{id}); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateSnippets([]uuid.UUID{id})
	return true, nil
}

// EmptyTrash purges every trashed collection with its subtree and every
// independently trashed snippet. The returned count covers purged collection
// rows plus independent snippets; snippets swept out with their collection
// are neither counted nor freed twice.
func (s *TrashService) EmptyTrash() (int, error) {
	var trashedCollections []models.Collection
	if err := s.db.Where("is_deleted = ?", true).Find(&trashedCollections).Error; err != nil {
		return 0, fmt.Errorf("failed to load trashed collections: %w", err)
	}

	collectionIDs := make([]uuid.UUID, 0, len(trashedCollections))
	for _, c := range trashedCollections {
		collectionIDs = append(collectionIDs, c.ID)
	}

	// Snippets owned by a trashed collection go with it, whatever their own
	// flag says.
	var ownedSnippetIDs []uuid.UUID
	if len(collectionIDs) > 0 {
		err := s.db.Model(&models.Snippet{}).
			Where("collection_id IN ?", collectionIDs).
			Pluck("id", &ownedSnippetIDs).Error
		if err != nil {
			return 0, fmt.Errorf("failed to load collection snippets: %w", err)
		}
	}

	var independentSnippetIDs []uuid.UUID
	err := s.db.Model(&models.Snippet{}).
		Joins("LEFT JOIN collections ON collections.id = snippets.collection_id").
		Where("snippets.is_deleted = ? AND (snippets.collection_id IS NULL OR collections.is_deleted = ?)", true, false).
		Pluck("snippets.id", &independentSnippetIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load trashed snippets: %w", err)
	}

	allSnippetIDs := append(append([]uuid.UUID{}, ownedSnippetIDs...), independentSnippetIDs...)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := purgeSnippetRows(tx, allSnippetIDs); err != nil {
		tx.Rollback()
		return 0, err
	}

	if len(collectionIDs) > 0 {
		// Sub-collections first, then roots.
		err = tx.Where("id IN ? AND parent_id IS NOT NULL", collectionIDs).
			Delete(&models.Collection{}).Error
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to purge sub-collections: %w", err)
		}
		if err := tx.Where("id IN ?", collectionIDs).Delete(&models.Collection{}).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to purge collections: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateAll()

	return len(collectionIDs) + len(independentSnippetIDs), nil
}

// purgeSnippetRows removes snippets and their tag join rows so no
// association is ever orphaned.
func purgeSnippetRows(tx *gorm.DB, snippetIDs []uuid.UUID) error {
	if len(snippetIDs) == 0 {
		return nil
	}
	if err := tx.Where("snippet_id IN ?", snippetIDs).Delete(&models.SnippetTag{}).Error; err != nil {
		return fmt.Errorf("failed to purge tag associations: %w", err)
	}
	if err := tx.Where("id IN ?", snippetIDs).Delete(&models.Snippet{}).Error; err != nil {
		return fmt.Errorf("failed to purge snippets: %w", err)
	}
	return nil
}

// invalidateSnippets drops the snippet keys plus the root listing, which
// embeds snippet state.
func (s *TrashService) invalidateSnippets(ids []uuid.UUID) {
	if s.cache == nil {
		return
	}
	ctx := context.Background()
	for _, id := range ids {
		s.cache.Delete(ctx, cache.SnippetKey(id.String()))
	}
	s.cache.Delete(ctx, cache.CollectionRootsKey())
}

// invalidateAll sweeps every cached snippet after a mass purge.
func (s *TrashService) invalidateAll() {
	if s.cache == nil {
		return
	}
	ctx := context.Background()
	s.cache.DeletePattern(ctx, "snippet:*")
	s.cache.Delete(ctx, cache.CollectionRootsKey())
}
