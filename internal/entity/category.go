package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a car brand. Image holds the public path under /uploads,
// never an absolute URL; absolutization happens at the response boundary.
type Category struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Brand string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Image string    `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
