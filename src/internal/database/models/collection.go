package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection groups snippets. Nesting is capped at one level: a collection
// with a non-nil ParentID must never have children of its own.
//
// IsDeleted is an explicit tombstone rather than gorm.DeletedAt. Trash views
// query tombstoned rows directly and restore flips them back in a cascade;
// gorm's implicit soft-delete scoping would get in the way of both.
type Collection struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name      string     `gorm:"size:100;not null"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	IsDeleted bool       `gorm:"default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Parent         *Collection  `gorm:"foreignKey:ParentID" json:"-"`
	SubCollections []Collection `gorm:"foreignKey:ParentID"`
	Snippets       []Snippet    `gorm:"foreignKey:CollectionID"`
}

// IsRoot reports whether the collection sits at the top level.
func (c *Collection) IsRoot() bool {
	return c.ParentID == nil
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
