package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPChallenge is a pending second-factor step for an elevated-role login.
// A challenge is single use: verification stamps ConsumedAt.
type OTPChallenge struct {
	ID         string     `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID     string     `gorm:"column:user_id;size:64;index" json:"user_id"`
	Code       string     `gorm:"column:code;size:6" json:"-"`
	ExpiresAt  time.Time  `gorm:"column:expires_at" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"column:consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (c *OTPChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (OTPChallenge) TableName() string {
	return "otp_challenges"
}

// Expired reports whether the challenge is past its deadline at t.
func (c OTPChallenge) Expired(t time.Time) bool {
	return t.After(c.ExpiresAt)
}

// Consumed reports whether the challenge has already been used.
func (c OTPChallenge) Consumed() bool {
	return c.ConsumedAt != nil
}
