package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Password  string `gorm:"not null"` // hashé (bcrypt)
	Name      string `gorm:"index"`
	RoleID    uint   // clé étrangère vers Role
	Role      Role   `gorm:"foreignKey:RoleID"`
	CompanyID uint   `gorm:"index"` // société active
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;not null"` // admin, manager, cashier
	Description string // optionnel
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	CompanyID uint   `gorm:"not null;index"`
	Type      string // ex: "low_stock", "sale_completed"
	Title     string
	Message   string
	Read      bool
	SentAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
