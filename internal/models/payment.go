package models

import "time"

// Payment tied to sales. Rows are append-only: once written they are never
// edited or removed (except when the whole sale is voided).
type Payment struct {
	ID         uint      `gorm:"primaryKey"`
	SaleID     uint      `gorm:"not null;index"` // FK vers Sale
	Date       time.Time `gorm:"not null"`
	Amount     float64   `gorm:"not null"`
	Note       string    // optionnel
	RecordedBy uint      `gorm:"not null"` // UserID
	CreatedAt  time.Time
}
