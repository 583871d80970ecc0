package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	ActionRegister AuditAction = "REGISTER"
	ActionLogin    AuditAction = "LOGIN"
	ActionVerify   AuditAction = "VERIFY"
	ActionLogout   AuditAction = "LOGOUT"
	ActionRefresh  AuditAction = "REFRESH"
)

const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// AuditLog persists one row per auth action outcome. UserID is nullable:
// failed logins for unknown emails have no user to point at.
type AuditLog struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID *uuid.UUID `gorm:"type:uuid;index"`

	Username string      `gorm:"type:varchar(30)"`
	Email    string      `gorm:"type:varchar(255)"`
	Action   AuditAction `gorm:"type:varchar(30);not null"`
	Status   string      `gorm:"type:varchar(10);not null"`
	Metadata datatypes.JSON

	CreatedAt time.Time
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
