package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Car struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Category   Category  `gorm:"constraint:OnDelete:CASCADE"`

	Model     string  `gorm:"type:varchar(100);not null"`
	Price     float64 `gorm:"not null"`
	Image     string  `gorm:"type:text;not null"`
	Available bool    `gorm:"default:true;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
