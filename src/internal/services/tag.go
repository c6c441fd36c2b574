package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/database/models"
)

// TagService resolves caller-supplied tag names to canonical Tag rows.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a new tag service
func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// ReconcileTags maps a list of tag names to Tag rows, creating the ones that
// don't exist yet. Matching is case-insensitive; a freshly created tag keeps
// the casing of its first appearance in the input. Duplicate input names
// collapse to one tag. New tags are persisted immediately so later reads in
// the same operation observe them; join rows stay the caller's job.
func (s *TagService) ReconcileTags(names []string) ([]models.Tag, error) {
	// Dedupe on the normalized key, keeping first-seen display casing.
	normalized := make([]string, 0, len(names))
	display := make(map[string]string, len(names))
	for _, name := range names {
		key := models.NormalizeName(name)
		if key == "" {
			continue
		}
		if _, seen := display[key]; !seen {
			display[key] = name
			normalized = append(normalized, key)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	var existing []models.Tag
	if err := s.db.Where("name_normalized IN ?", normalized).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}

	found := make(map[string]bool, len(existing))
	for _, tag := range existing {
		found[tag.NameNormalized] = true
	}

	var created []models.Tag
	for _, key := range normalized {
		if found[key] {
			continue
		}
		created = append(created, models.Tag{Name: display[key]})
	}
	if len(created) > 0 {
		if err := s.db.Create(&created).Error; err != nil {
			return nil, fmt.Errorf("failed to create tags: %w", err)
		}
		existing = append(existing, created...)
	}

	return existing, nil
}

// TagsByNames returns the existing tags whose normalized name matches any of
// the given names. Names with no match are simply absent from the result.
func (s *TagService) TagsByNames(names []string) ([]models.Tag, error) {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if key := models.NormalizeName(name); key != "" {
			normalized = append(normalized, key)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	if err := s.db.Where("name_normalized IN ?", normalized).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	return tags, nil
}
