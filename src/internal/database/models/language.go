package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Language is auto-vivified the first time a snippet references it. Same
// natural-key rules as Tag: display casing preserved, lookups normalized.
type Language struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Name           string    `gorm:"size:50;not null"`
	NameNormalized string    `gorm:"size:50;uniqueIndex;not null" json:"-"`
	CreatedAt      time.Time

	// Relations
	Snippets []Snippet `json:"-"`
}

func (l *Language) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.NameNormalized == "" {
		l.NameNormalized = NormalizeName(l.Name)
	}
	return nil
}
