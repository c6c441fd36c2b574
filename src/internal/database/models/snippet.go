package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Snippet is a piece of code in the vault. It may sit in at most one
// collection. IsDeleted is independent of the owning collection's flag: a
// snippet can be trashed directly or swept along when its collection is.
type Snippet struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	Title        string     `gorm:"size:255;not null"`
	Code         string     `gorm:"type:text;not null"`
	LanguageID   uuid.UUID  `gorm:"type:uuid;not null"`
	CollectionID *uuid.UUID `gorm:"type:uuid;index"`
	IsDeleted    bool       `gorm:"default:false;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Relations
	Language   Language    `gorm:"foreignKey:LanguageID"`
	Collection *Collection `gorm:"foreignKey:CollectionID" json:"-"`
	Tags       []Tag       `gorm:"many2many:snippet_tags;"`
}

// TagNames returns the flattened tag name list the presentation layer uses.
func (s *Snippet) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Name)
	}
	return names
}

func (s *Snippet) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
