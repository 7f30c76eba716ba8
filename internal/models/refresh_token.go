package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken records every refresh token ever issued, keyed by its jti.
// A row is live while RevokedAt is nil and ExpiresAt is in the future.
type RefreshToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `gorm:"type:uuid" json:"replaced_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
