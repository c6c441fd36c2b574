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

// CollectionService handles the collection tree and its lifecycle cascades
type CollectionService struct {
	db    *gorm.DB
	cfg   *viper.Viper
	cache *cache.Manager
}

// NewCollectionService creates a new collection service
func NewCollectionService(db *gorm.DB, cfg *viper.Viper, cacheManager *cache.Manager) *CollectionService {
	return &CollectionService{db: db, cfg: cfg, cache: cacheManager}
}

// CreateCollection creates a collection, optionally under a root parent.
func (s *CollectionService) CreateCollection(name string, parentID *uuid.UUID) (*models.Collection, error) {
	if err := s.checkParentIsRoot(parentID); err != nil {
		return nil, err
	}

	collection := &models.Collection{Name: name, ParentID: parentID}
	if err := s.db.Create(collection).Error; err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	s.invalidate()
	return collection, nil
}

// MoveCollection reparents a collection; a nil parent detaches it to root.
// A collection that still has children can only be detached, never pushed
// under another parent, so the one-level cap cannot be violated from either
// direction.
func (s *CollectionService) MoveCollection(id uuid.UUID, newParentID *uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.First(&collection, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, fmt.Errorf("collection cannot be its own parent: %w", ErrInvalidHierarchy)
		}
		var children int64
		err := s.db.Model(&models.Collection{}).Where("parent_id = ?", id).Count(&children).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count sub-collections: %w", err)
		}
		if children > 0 {
			return nil, fmt.Errorf("collection with sub-collections cannot be nested: %w", ErrInvalidHierarchy)
		}
		if err := s.checkParentIsRoot(newParentID); err != nil {
			return nil, err
		}
	}

	collection.ParentID = newParentID
	if err := s.db.Save(&collection).Error; err != nil {
		return nil, fmt.Errorf("failed to move collection: %w", err)
	}

	s.invalidate()
	return &collection, nil
}

// UpdateCollection renames a live collection
func (s *CollectionService) UpdateCollection(id uuid.UUID, name string) (*models.Collection, error) {
	var collection models.Collection
	err := s.db.First(&collection, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	collection.Name = name
	if err := s.db.Save(&collection).Error; err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	s.invalidate()
	return &collection, nil
}

// GetCollectionWithSnippets returns a live collection with its live snippets
// and live sub-collections attached.
func (s *CollectionService) GetCollectionWithSnippets(id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	err := s.liveTreeQuery().First(&collection, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &collection, nil
}

// ListCollections returns all live root collections with their live subtrees
func (s *CollectionService) ListCollections() ([]models.Collection, error) {
	ctx := context.Background()
	if s.cache != nil {
		var cached []models.Collection
		if err := s.cache.GetJSON(ctx, cache.CollectionRootsKey(), &cached); err == nil {
			return cached, nil
		}
	}

	var collections []models.Collection
	err := s.liveTreeQuery().
		Where("parent_id IS NULL AND is_deleted = ?", false).
		Order("name").
		Find(&collections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, cache.CollectionRootsKey(), collections, cache.TTLShort)
	}

	return collections, nil
}

// SoftDeleteCollection tombstones a collection, all of its sub-collections,
// and every snippet sitting in any of them. Returns false, without error,
// when the collection is missing or already trashed.
func (s *CollectionService) SoftDeleteCollection(id uuid.UUID) (bool, error) {
	root, err := s.loadSubtree(id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	collectionIDs, snippetIDs := collectSubtree(root)
	if err := s.setDeleted(collectionIDs, snippetIDs, true); err != nil {
		return false, err
	}

	s.invalidate()
	s.invalidateSnippets(snippetIDs)
	return true, nil
}

// RestoreCollection clears the tombstone across the same subtree. Returns
// ErrNotFound when the collection is not currently trashed.
func (s *CollectionService) RestoreCollection(id uuid.UUID) (*models.Collection, error) {
	root, err := s.loadSubtree(id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("trashed collection %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	collectionIDs, snippetIDs := collectSubtree(root)
	if err := s.setDeleted(collectionIDs, snippetIDs, false); err != nil {
		return nil, err
	}

	s.invalidate()
	s.invalidateSnippets(snippetIDs)
	return s.GetCollectionWithSnippets(id)
}

// loadSubtree fetches a collection in the given lifecycle state with its full
// subtree and all member snippets, whatever their own state. Cascades load
// everything up front, then mutate.
func (s *CollectionService) loadSubtree(id uuid.UUID, deleted bool) (*models.Collection, error) {
	var collection models.Collection
	err := s.db.
		Preload("Snippets").
		Preload("SubCollections").
		Preload("SubCollections.Snippets").
		First(&collection, "id = ? AND is_deleted = ?", id, deleted).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// collectSubtree walks the preloaded tree with an explicit stack and returns
// every collection and snippet ID exactly once, children after their parent.
func collectSubtree(root *models.Collection) (collectionIDs, snippetIDs []uuid.UUID) {
	stack := []*models.Collection{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		collectionIDs = append(collectionIDs, node.ID)
		for _, snippet := range node.Snippets {
			snippetIDs = append(snippetIDs, snippet.ID)
		}
		for i := range node.SubCollections {
			stack = append(stack, &node.SubCollections[i])
		}
	}
	return collectionIDs, snippetIDs
}

// setDeleted flips the tombstone flag for the given rows in one transaction.
func (s *CollectionService) setDeleted(collectionIDs, snippetIDs []uuid.UUID, deleted bool) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	err := tx.Model(&models.Collection{}).
		Where("id IN ?", collectionIDs).
		Update("is_deleted", deleted).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update collections: %w", err)
	}

	if len(snippetIDs) > 0 {
		err = tx.Model(&models.Snippet{}).
			Where("id IN ?", snippetIDs).
			Update("is_deleted", deleted).Error
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update snippets: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// checkParentIsRoot enforces the one-level nesting cap: a parent must exist,
// be live, and itself sit at the root.
func (s *CollectionService) checkParentIsRoot(parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}

	var parent models.Collection
	if err := s.db.First(&parent, "id = ?", *parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("parent collection %s: %w", *parentID, ErrNotFound)
		}
		return err
	}
	if parent.IsDeleted {
		return fmt.Errorf("parent collection %s is in the trash: %w", *parentID, ErrInvalidHierarchy)
	}
	if !parent.IsRoot() {
		return fmt.Errorf("parent collection %s is itself nested: %w", *parentID, ErrInvalidHierarchy)
	}
	return nil
}

func (s *CollectionService) liveTreeQuery() *gorm.DB {
	return s.db.
		Preload("Snippets", "is_deleted = ?", false).
		Preload("Snippets.Language").
		Preload("Snippets.Tags").
		Preload("SubCollections", "is_deleted = ?", false).
		Preload("SubCollections.Snippets", "is_deleted = ?", false).
		Preload("SubCollections.Snippets.Language").
		Preload("SubCollections.Snippets.Tags")
}

func (s *CollectionService) invalidate() {
	if s.cache == nil {
		return
	}
	s.cache.Delete(context.Background(), cache.CollectionRootsKey())
}

func (s *CollectionService) invalidateSnippets(ids []uuid.UUID) {
	if s.cache == nil {
		return
	}
	ctx := context.Background()
	for _, id := range ids {
		s.cache.Delete(ctx, cache.SnippetKey(id.String()))
	}
}
