package services

import (
	"errors"
	"fmt"

	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/gorm"
)

// StockService owns every mutation of Product.Stock. Decrements and restores
// are single conditional UPDATEs so two concurrent checkouts for the last unit
// of a product can never both succeed.
type StockService struct {
	DB       *gorm.DB
	Notifier Notifier
	// Threshold is the default low-stock alert level; a company may override
	// it via CompanySettings.LowStockThreshold.
	Threshold int
}

func NewStockService(db *gorm.DB, notifier Notifier, threshold int) *StockService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &StockService{DB: db, Notifier: notifier, Threshold: threshold}
}

// StockChange reports the outcome of one successful decrement or restore.
type StockChange struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	OldStock  int    `json:"old_stock"`
	NewStock  int    `json:"new_stock"`
}

// Decrement atomically removes qty units from a product's stock.
// Emits a low-stock notification when the new level reaches the threshold.
func (s *StockService) Decrement(companyID, productID uint, qty int) (*StockChange, error) {
	change, err := s.DecrementIn(s.DB, companyID, productID, qty)
	if err != nil {
		return nil, err
	}
	s.NotifyIfLow(companyID, change)
	return change, nil
}

// DecrementIn runs the decrement on the given handle (caller-owned
// transaction). It never publishes notifications: inside a transaction the
// caller must publish only after commit.
func (s *StockService) DecrementIn(tx *gorm.DB, companyID, productID uint, qty int) (*StockChange, error) {
	if productID == 0 || qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must_be_positive"}
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND company_id = ? AND stock >= ?", productID, companyID, qty).
		Updates(map[string]any{
			"stock":   gorm.Expr("stock - ?", qty),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the product is gone or the stock was too low; re-read to tell.
		var p models.Product
		err := tx.Where("company_id = ?", companyID).First(&p, productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: productID}
		}
		if err != nil {
			return nil, err
		}
		return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: qty, Available: p.Stock}
	}
	// Outside a caller-owned transaction this re-read can observe other
	// writers, so OldStock/NewStock describe the level around this change,
	// not an exact before/after snapshot. The decrement itself is exact.
	var p models.Product
	if err := tx.Where("company_id = ?", companyID).First(&p, productID).Error; err != nil {
		return nil, err
	}
	return &StockChange{ProductID: p.ID, Name: p.Name, OldStock: p.Stock + qty, NewStock: p.Stock}, nil
}

// Restore adds qty units back to a product's stock. Used only by sale
// reversal; there is no upper bound on stock.
func (s *StockService) Restore(companyID, productID uint, qty int) (*StockChange, error) {
	return s.RestoreIn(s.DB, companyID, productID, qty)
}

func (s *StockService) RestoreIn(tx *gorm.DB, companyID, productID uint, qty int) (*StockChange, error) {
	if productID == 0 || qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must_be_positive"}
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND company_id = ?", productID, companyID).
		Updates(map[string]any{
			"stock":   gorm.Expr("stock + ?", qty),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "product", ID: productID}
	}
	var p models.Product
	if err := tx.Where("company_id = ?", companyID).First(&p, productID).Error; err != nil {
		return nil, err
	}
	return &StockChange{ProductID: p.ID, Name: p.Name, OldStock: p.Stock - qty, NewStock: p.Stock}, nil
}

// NotifyIfLow publishes a low-stock event when the change landed at or below
// the effective threshold. Advisory only.
func (s *StockService) NotifyIfLow(companyID uint, change *StockChange) {
	threshold := s.Threshold
	var company models.CompanySettings
	if err := s.DB.Select("low_stock_threshold").First(&company, companyID).Error; err == nil && company.LowStockThreshold > 0 {
		threshold = company.LowStockThreshold
	}
	if change.NewStock > threshold {
		return
	}
	s.Notifier.Publish(Event{
		CompanyID: companyID,
		Type:      "low_stock",
		Title:     "Stock bas: " + change.Name,
		Message:   fmt.Sprintf("%s: %d unité(s) restante(s)", change.Name, change.NewStock),
	})
}
