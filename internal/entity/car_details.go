package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TintingNone = "Yoq"
	TintingHas  = "Bor"

	GearboxManual    = "Mexanika"
	GearboxAutomatic = "Avtomat karobka"
)

// CarDetails carries the full listing record for one car. Marka and Price
// are denormalized from the car's category and the car itself when the
// record is created.
type CarDetails struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CarID uuid.UUID `gorm:"type:uuid;not null;index"`
	Car   Car       `gorm:"constraint:OnDelete:CASCADE"`

	Marka    string  `gorm:"type:varchar(100);not null"`
	Price    float64 `gorm:"not null"`
	Tinting  string  `gorm:"type:varchar(20);default:'Yoq';not null"`
	Motor    string  `gorm:"type:varchar(50);not null"`
	Year     int     `gorm:"not null"`
	Color    string  `gorm:"type:varchar(50);not null"`
	Distance int     `gorm:"not null"`
	Gearbox  string  `gorm:"type:varchar(30);not null"`

	ExteriorImages datatypes.JSONSlice[string] `gorm:"not null"`
	InteriorImages datatypes.JSONSlice[string] `gorm:"not null"`
	Description    string                      `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *CarDetails) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
