package services

import (
	"errors"
	"time"

	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/gorm"
)

// PaymentService applies incremental payments against a sale. Concurrent
// payments on the same sale are serialized by an optimistic version check:
// the update only lands if the sale still has the version we read, otherwise
// we re-read and retry, so two callers can never both pass the balance check
// against a stale remaining amount.
type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService { return &PaymentService{DB: db} }

const paymentRetries = 3

// ApplyPayment adds amount to the sale's paid total and appends a payment
// history row. amount must be positive and no greater than the remaining
// balance; on any failure the sale is left untouched.
func (p *PaymentService) ApplyPayment(companyID, saleID uint, amount float64, note string, actorID uint) (*models.Sale, error) {
	if cents(amount) <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must_be_positive"}
	}

	for attempt := 0; attempt < paymentRetries; attempt++ {
		var sale models.Sale
		err := p.DB.Where("company_id = ?", companyID).First(&sale, saleID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "sale", ID: saleID}
		}
		if err != nil {
			return nil, err
		}

		remaining := round2(sale.TotalAmount - sale.PaidAmount)
		if cents(amount) > cents(remaining) {
			return nil, &ExceedsBalanceError{SaleID: sale.ID, Requested: amount, Remaining: remaining}
		}

		newPaid := round2(sale.PaidAmount + amount)
		if newPaid > sale.TotalAmount {
			// Safety clamp; unreachable while the balance check above holds.
			newPaid = sale.TotalAmount
		}
		status := derivePaymentStatus(newPaid, sale.TotalAmount)

		conflict := false
		err = p.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Sale{}).
				Where("id = ? AND version = ?", sale.ID, sale.Version).
				Updates(map[string]any{
					"paid_amount":    newPaid,
					"payment_status": status,
					"version":        sale.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				conflict = true
				return ErrConflict // rolls back, loop re-reads
			}
			payment := models.Payment{
				SaleID:     sale.ID,
				Date:       time.Now(),
				Amount:     round2(amount),
				Note:       note,
				RecordedBy: actorID,
			}
			return tx.Create(&payment).Error
		})
		if conflict {
			continue
		}
		if err != nil {
			return nil, err
		}

		sale.PaidAmount = newPaid
		sale.PaymentStatus = status
		sale.Version++
		if err := p.DB.Preload("Items").First(&sale, sale.ID).Error; err != nil {
			return nil, err
		}
		return &sale, nil
	}
	return nil, ErrConflict
}

// History returns the append-only list of payments for a sale, oldest first.
func (p *PaymentService) History(companyID, saleID uint) ([]models.Payment, error) {
	var sale models.Sale
	err := p.DB.Select("id").Where("company_id = ?", companyID).First(&sale, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "sale", ID: saleID}
	}
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := p.DB.Where("sale_id = ?", sale.ID).Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
