package models

import "time"

// Company & related. CompanySettings is the tenant: every scoped entity
// carries a CompanyID and queries must always filter on it.
type CompanySettings struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"not null;index"` // FK vers User (créateur)
	Name      string `gorm:"not null;index"`
	TradeName string `gorm:"index"`
	SIREN     string `gorm:"size:9;index"`
	SIRET     string `gorm:"size:14;index"`
	Telephone string
	Email     string
	// Seuil d'alerte stock bas; 0 = utiliser le seuil global de la config.
	LowStockThreshold int `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type UserCompany struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index:idx_user_company,unique,priority:1"`
	CompanyID uint `gorm:"not null;index:idx_user_company,unique,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
