package models

import "time"

// AccessCode is a short-lived single-use code (device pairing, password reset).
// Stored in the database rather than a process-local map so codes survive
// restarts and work across multiple instances.
type AccessCode struct {
	ID         uint      `gorm:"primaryKey"`
	CompanyID  uint      `gorm:"not null;index"`
	Code       string    `gorm:"size:64;not null;uniqueIndex"`
	Purpose    string    `gorm:"size:40;not null;index"` // ex: "device_pairing", "password_reset"
	ExpiresAt  time.Time `gorm:"not null;index"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
