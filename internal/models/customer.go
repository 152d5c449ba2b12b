package models

import "time"

// Customer entity
type Customer struct {
	ID        uint            `gorm:"primaryKey"`
	CompanyID uint            `gorm:"not null;index"` // FK vers CompanySettings
	Company   CompanySettings `gorm:"foreignKey:CompanyID"`
	Name      string          `gorm:"not null;index"`
	Contact   string          // nom du contact principal
	Telephone string
	Email     string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
