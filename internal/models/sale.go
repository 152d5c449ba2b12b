package models

import "time"

// Sale models. A sale is priced once at creation; its items and totals are
// never recomputed afterwards, only PaidAmount moves (via payments).
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

type Sale struct {
	ID         uint            `gorm:"primaryKey"`
	CompanyID  uint            `gorm:"not null;index"`
	Company    CompanySettings `gorm:"foreignKey:CompanyID"`
	CustomerID uint            `gorm:"not null;index"`
	Customer   Customer        `gorm:"foreignKey:CustomerID"`
	HandledBy  uint            `gorm:"not null"` // UserID du vendeur
	Items      []SaleItem      `gorm:"foreignKey:SaleID"`
	// TotalAmount = somme des sous-totaux, figé à la création.
	TotalAmount   float64 `gorm:"not null"`
	PaidAmount    float64 `gorm:"not null;default:0"`
	PaymentStatus string  `gorm:"not null;default:'unpaid'"` // unpaid, partial, paid
	SaleDate      time.Time
	// Version guards concurrent payment application (optimistic check-and-retry).
	Version   int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RemainingAmount is always derived, never stored.
func (s *Sale) RemainingAmount() float64 {
	return s.TotalAmount - s.PaidAmount
}

type SaleItem struct {
	ID        uint `gorm:"primaryKey"`
	SaleID    uint `gorm:"not null;index"`
	ProductID uint `gorm:"not null"` // référence seulement; le produit peut changer de prix ensuite
	Quantity  int  `gorm:"not null"`
	// UnitPrice est le prix au moment de la vente, immuable.
	UnitPrice float64 `gorm:"not null"`
	Subtotal  float64 `gorm:"not null"`
	CreatedAt time.Time
}
