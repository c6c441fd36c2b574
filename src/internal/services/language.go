package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/database/models"
	"github.com/clipvault/clipvault/src/internal/syntax"
)

// LanguageService resolves free-text language names to Language rows.
type LanguageService struct {
	db *gorm.DB
}

// NewLanguageService creates a new language service
func NewLanguageService(db *gorm.DB) *LanguageService {
	return &LanguageService{db: db}
}

// ResolveLanguage returns the language matching the given name
// case-insensitively, creating it if unseen. Known names and aliases ("js",
// "golang") collapse to their canonical form; unknown languages keep the
// caller's casing.
func (s *LanguageService) ResolveLanguage(name string) (*models.Language, error) {
	display := syntax.Canonical(name)
	key := models.NormalizeName(display)

	var language models.Language
	err := s.db.First(&language, "name_normalized = ?", key).Error
	if err == nil {
		return &language, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up language: %w", err)
	}

	language = models.Language{Name: display}
	if err := s.db.Create(&language).Error; err != nil {
		return nil, fmt.Errorf("failed to create language: %w", err)
	}
	return &language, nil
}
