package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels snippets. The display casing of the first insertion is kept in
// Name; NameNormalized is the natural key every lookup compares against.
// Tags are immutable and are never removed by the vault (orphans are fine).
type Tag struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Name           string    `gorm:"size:50;not null"`
	NameNormalized string    `gorm:"size:50;uniqueIndex;not null" json:"-"`
	CreatedAt      time.Time

	// Relations
	Snippets []Snippet `gorm:"many2many:snippet_tags;" json:"-"`
}

// SnippetTag is the snippet/tag join row. It has no lifecycle of its own;
// rows appear and disappear only through tag reconciliation on a snippet.
type SnippetTag struct {
	SnippetID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// NormalizeName is the single normalization used at every tag and language
// comparison site. Keeping one function here prevents drift between
// reconciliation, add/remove paths, and search.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.NameNormalized == "" {
		t.NameNormalized = NormalizeName(t.Name)
	}
	return nil
}
