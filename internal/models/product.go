package models

import (
	"time"

	"gorm.io/gorm"
)

// Product domain models
type Product struct {
	ID        uint            `gorm:"primaryKey"`
	CompanyID uint            `gorm:"not null;index"` // FK vers CompanySettings
	Company   CompanySettings `gorm:"foreignKey:CompanyID"`
	// Code produit unique par société. Permet un identifiant lisible.
	Code  string  `gorm:"size:40;not null;index:idx_company_code,unique,priority:2"`
	Name  string  `gorm:"not null"`
	Price float64 `gorm:"not null"` // prix unitaire courant; les ventes figent leur propre prix
	Stock int     `gorm:"not null;default:0"`
	// Version is bumped by every conditional stock update so concurrent
	// decrements on the same row serialize at the database.
	Version   int            `gorm:"not null;default:0"`
	CreatedBy uint           `gorm:"index"`
	DeletedAt gorm.DeletedAt `gorm:"index;index:idx_company_code,priority:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductField is the tenant-scoped registry of extra product attributes.
// Redefining a key bumps Version instead of mutating values in place.
type ProductField struct {
	ID        uint   `gorm:"primaryKey"`
	CompanyID uint   `gorm:"not null;index:idx_company_key,unique,priority:1"`
	Key       string `gorm:"size:60;not null;index:idx_company_key,unique,priority:2"`
	Label     string `gorm:"not null"`
	Kind      string `gorm:"not null;default:'text'"` // text, number, bool
	Version   int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductAttributeValue struct {
	ID        uint         `gorm:"primaryKey"`
	ProductID uint         `gorm:"not null;index:idx_product_field,unique,priority:1"`
	FieldID   uint         `gorm:"not null;index:idx_product_field,unique,priority:2"`
	Field     ProductField `gorm:"foreignKey:FieldID"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
