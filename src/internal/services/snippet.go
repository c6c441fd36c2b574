package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/cache"
	"github.com/clipvault/clipvault/src/internal/database/models"
)

// SnippetService handles snippet lifecycle and tag mutation
type SnippetService struct {
	db        *gorm.DB
	cfg       *viper.Viper
	cache     *cache.Manager
	tags      *TagService
	languages *LanguageService
}

// NewSnippetService creates a new snippet service
func NewSnippetService(db *gorm.DB, cfg *viper.Viper, cacheManager *cache.Manager) *SnippetService {
	return &SnippetService{
		db:        db,
		cfg:       cfg,
		cache:     cacheManager,
		tags:      NewTagService(db),
		languages: NewLanguageService(db),
	}
}

// CreateSnippetInput represents input for creating a snippet
type CreateSnippetInput struct {
	Title        string
	Code         string
	Language     string
	Tags         []string
	CollectionID *uuid.UUID
}

// CreateSnippet creates a snippet, auto-vivifying its language and tags.
func (s *SnippetService) CreateSnippet(input CreateSnippetInput) (*models.Snippet, error) {
	if input.CollectionID != nil {
		if err := s.checkCollectionLive(*input.CollectionID); err != nil {
			return nil, err
		}
	}

	language, err := s.languages.ResolveLanguage(input.Language)
	if err != nil {
		return nil, err
	}

	// Tags are persisted by reconciliation; only the join rows ride the
	// snippet's own transaction.
	tags, err := s.tags.ReconcileTags(input.Tags)
	if err != nil {
		return nil, err
	}

	snippet := &models.Snippet{
		Title:        input.Title,
		Code:         input.Code,
		LanguageID:   language.ID,
		CollectionID: input.CollectionID,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(snippet).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create snippet: %w", err)
	}

	for _, tag := range tags {
		link := &models.SnippetTag{SnippetID: snippet.ID, TagID: tag.ID}
		if err := tx.Create(link).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to associate tag: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(snippet.ID)
	return s.loadSnippet(snippet.ID)
}

// GetSnippet retrieves a live snippet by ID
func (s *SnippetService) GetSnippet(id uuid.UUID) (*models.Snippet, error) {
	cacheKey := cache.SnippetKey(id.String())
	ctx := context.Background()

	if s.cache != nil {
		var cached models.Snippet
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	snippet, err := s.loadSnippet(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, cacheKey, snippet, cache.TTLMedium)
	}

	return snippet, nil
}

// ListSnippets returns all live snippets
func (s *SnippetService) ListSnippets() ([]models.Snippet, error) {
	var snippets []models.Snippet
	err := s.db.Where("is_deleted = ?", false).
		Preload("Language").Preload("Tags").
		Order("created_at DESC").
		Find(&snippets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snippets: %w", err)
	}
	return snippets, nil
}

// UpdateSnippetInput represents a partial snippet update; nil fields are
// left untouched.
type UpdateSnippetInput struct {
	Title        *string
	Code         *string
	Language     *string
	CollectionID *uuid.UUID
}

// UpdateSnippet applies a partial update to a live snippet. Trashed snippets
// are invisible here; they are reachable only through the trash service.
func (s *SnippetService) UpdateSnippet(id uuid.UUID, input UpdateSnippetInput) (*models.Snippet, error) {
	snippet, err := s.loadSnippet(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		snippet.Title = *input.Title
	}
	if input.Code != nil {
		snippet.Code = *input.Code
	}
	if input.Language != nil && *input.Language != "" {
		language, err := s.languages.ResolveLanguage(*input.Language)
		if err != nil {
			return nil, err
		}
		snippet.LanguageID = language.ID
	}
	if input.CollectionID != nil {
		if err := s.checkCollectionLive(*input.CollectionID); err != nil {
			return nil, err
		}
		snippet.CollectionID = input.CollectionID
	}

	if err := s.db.Omit("Tags", "Language").Save(snippet).Error; err != nil {
		return nil, fmt.Errorf("failed to update snippet: %w", err)
	}

	s.invalidate(id)

	return s.loadSnippet(id)
}

// SoftDeleteSnippet tombstones a snippet. Returns false, without error, if the
// snippet is missing or already trashed.
func (s *SnippetService) SoftDeleteSnippet(id uuid.UUID) (bool, error) {
	result := s.db.Model(&models.Snippet{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete snippet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.invalidate(id)
	return true, nil
}

// SearchSnippetsInput represents search filters; zero values are skipped
type SearchSnippetsInput struct {
	Keyword  string
	Language string
	Tags     []string
}

// SearchSnippets filters live snippets. The keyword matches a
// case-insensitive substring of title or code (lowered on both sides so the
// behavior is the same on every supported database). The tag filter is a
// conjunction: a snippet matches only if it carries every supplied tag.
func (s *SnippetService) SearchSnippets(input SearchSnippetsInput) ([]models.Snippet, error) {
	query := s.db.Model(&models.Snippet{}).
		Select("snippets.*").
		Where("snippets.is_deleted = ?", false)

	if input.Keyword != "" {
		pattern := "%" + strings.ToLower(input.Keyword) + "%"
		query = query.Where("LOWER(snippets.title) LIKE ? OR LOWER(snippets.code) LIKE ?", pattern, pattern)
	}

	if input.Language != "" {
		query = query.Joins("JOIN languages ON languages.id = snippets.language_id").
			Where("languages.name_normalized = ?", models.NormalizeName(input.Language))
	}

	if len(input.Tags) > 0 {
		normalized := make([]string, 0, len(input.Tags))
		seen := make(map[string]bool, len(input.Tags))
		for _, name := range input.Tags {
			key := models.NormalizeName(name)
			if key != "" && !seen[key] {
				seen[key] = true
				normalized = append(normalized, key)
			}
		}
		query = query.Joins("JOIN snippet_tags ON snippet_tags.snippet_id = snippets.id").
			Joins("JOIN tags ON tags.id = snippet_tags.tag_id").
			Where("tags.name_normalized IN ?", normalized).
			Group("snippets.id").
			Having("COUNT(DISTINCT tags.id) = ?", len(normalized))
	}

	var snippets []models.Snippet
	if err := query.Preload("Language").Preload("Tags").Find(&snippets).Error; err != nil {
		return nil, fmt.Errorf("failed to search snippets: %w", err)
	}
	return snippets, nil
}

// AddTags reconciles the given names and associates any tag the snippet does
// not already carry. Re-adding an existing tag is a no-op.
func (s *SnippetService) AddTags(id uuid.UUID, names []string) (*models.Snippet, error) {
	snippet, err := s.loadSnippet(id)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ReconcileTags(names)
	if err != nil {
		return nil, err
	}

	existing := make(map[uuid.UUID]bool, len(snippet.Tags))
	for _, tag := range snippet.Tags {
		existing[tag.ID] = true
	}

	for _, tag := range tags {
		if existing[tag.ID] {
			continue
		}
		link := &models.SnippetTag{SnippetID: snippet.ID, TagID: tag.ID}
		if err := s.db.Create(link).Error; err != nil {
			return nil, fmt.Errorf("failed to associate tag: %w", err)
		}
	}

	s.invalidate(id)
	return s.loadSnippet(id)
}

// RemoveTags drops the associations whose tag name matches any of the given
// names case-insensitively. Names with no matching association are ignored.
// The tags themselves survive; only join rows go.
func (s *SnippetService) RemoveTags(id uuid.UUID, names []string) (*models.Snippet, error) {
	snippet, err := s.loadSnippet(id)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if key := models.NormalizeName(name); key != "" {
			wanted[key] = true
		}
	}

	var removeIDs []uuid.UUID
	for _, tag := range snippet.Tags {
		if wanted[tag.NameNormalized] {
			removeIDs = append(removeIDs, tag.ID)
		}
	}

	if len(removeIDs) > 0 {
		err := s.db.Where("snippet_id = ? AND tag_id IN ?", snippet.ID, removeIDs).
			Delete(&models.SnippetTag{}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to remove tags: %w", err)
		}
	}

	s.invalidate(id)
	return s.loadSnippet(id)
}

// ReplaceTags swaps the snippet's tag set for exactly the reconciled input
// set, regardless of what it carried before.
func (s *SnippetService) ReplaceTags(id uuid.UUID, names []string) (*models.Snippet, error) {
	snippet, err := s.loadSnippet(id)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ReconcileTags(names)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("snippet_id = ?", snippet.ID).Delete(&models.SnippetTag{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear tags: %w", err)
	}

	for _, tag := range tags {
		link := &models.SnippetTag{SnippetID: snippet.ID, TagID: tag.ID}
		if err := tx.Create(link).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to associate tag: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(id)
	return s.loadSnippet(id)
}

// checkCollectionLive reports ErrNotFound when the given collection does not
// exist or is in the trash. Query failures surface as persistence errors, not
// as a miss.
func (s *SnippetService) checkCollectionLive(id uuid.UUID) error {
	var count int64
	err := s.db.Model(&models.Collection{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to look up collection: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	return nil
}

// loadSnippet fetches a live snippet with its language and tags, mapping a
// miss to ErrNotFound.
func (s *SnippetService) loadSnippet(id uuid.UUID) (*models.Snippet, error) {
	var snippet models.Snippet
	err := s.db.Preload("Language").Preload("Tags").
		First(&snippet, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("snippet %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &snippet, nil
}

func (s *SnippetService) invalidate(id uuid.UUID) {
	if s.cache == nil {
		return
	}
	ctx := context.Background()
	s.cache.Delete(ctx, cache.SnippetKey(id.String()))
	s.cache.Delete(ctx, cache.CollectionRootsKey())
}
