package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/gorm"
)

// SaleService builds and reverses sales. Checkout runs as one database
// transaction: the first failing line item rolls back every decrement already
// applied in the same call, so no partial sale is ever persisted.
type SaleService struct {
	DB       *gorm.DB
	Stock    *StockService
	Notifier Notifier
	// VoidWindow is how long after the sale date any role may void; past it
	// only admins can.
	VoidWindow time.Duration
}

func NewSaleService(db *gorm.DB, stock *StockService, notifier Notifier, voidWindow time.Duration) *SaleService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if voidWindow <= 0 {
		voidWindow = 24 * time.Hour
	}
	return &SaleService{DB: db, Stock: stock, Notifier: notifier, VoidWindow: voidWindow}
}

type CartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateSaleInput struct {
	CompanyID  uint
	CustomerID uint
	Items      []CartItem // cart order is preserved in the sale
	PaidAmount float64
	ActorID    uint // handledBy / recordedBy
}

// CreateSale validates the cart, prices it against current catalog prices,
// decrements stock and persists the sale with its initial payment, all
// atomically. Returns the created sale with items loaded.
func (s *SaleService) CreateSale(in CreateSaleInput) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "required"}
	}
	if in.PaidAmount < 0 {
		return nil, &ValidationError{Field: "paid_amount", Reason: "must_not_be_negative"}
	}

	var sale models.Sale
	var changes []*StockChange
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		err := tx.Where("company_id = ?", in.CompanyID).First(&customer, in.CustomerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "customer", ID: in.CustomerID}
		}
		if err != nil {
			return err
		}

		var total float64
		items := make([]models.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			if it.ProductID == 0 || it.Quantity <= 0 {
				return &ValidationError{Field: "items", Reason: "invalid_product_or_quantity"}
			}
			var p models.Product
			err := tx.Where("company_id = ?", in.CompanyID).First(&p, it.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "product", ID: it.ProductID}
			}
			if err != nil {
				return err
			}
			if it.Quantity > p.Stock {
				return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: it.Quantity, Available: p.Stock}
			}
			// The pre-read only shapes the error; the decrement below is the
			// authoritative, race-safe check.
			change, err := s.Stock.DecrementIn(tx, in.CompanyID, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			changes = append(changes, change)
			subtotal := round2(float64(it.Quantity) * p.Price)
			total = round2(total + subtotal)
			items = append(items, models.SaleItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				UnitPrice: p.Price,
				Subtotal:  subtotal,
			})
		}

		if cents(in.PaidAmount) > cents(total) {
			return &ValidationError{Field: "paid_amount", Reason: "exceeds_total"}
		}

		sale = models.Sale{
			CompanyID:     in.CompanyID,
			CustomerID:    customer.ID,
			HandledBy:     in.ActorID,
			TotalAmount:   total,
			PaidAmount:    round2(in.PaidAmount),
			PaymentStatus: derivePaymentStatus(in.PaidAmount, total),
			SaleDate:      time.Now(),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		sale.Items = items

		if cents(in.PaidAmount) > 0 {
			payment := models.Payment{
				SaleID:     sale.ID,
				Date:       sale.SaleDate,
				Amount:     round2(in.PaidAmount),
				Note:       "initial payment",
				RecordedBy: in.ActorID,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Only after commit: advisory notifications must not be able to roll
	// anything back, and must not fire for rolled-back decrements.
	for _, c := range changes {
		s.Stock.NotifyIfLow(in.CompanyID, c)
	}
	return &sale, nil
}

// VoidSale reverses a sale: stock is restored for every line item and the
// sale record (items, payments) is deleted. Within VoidWindow of the sale
// date any role may void; afterwards only admins.
func (s *SaleService) VoidSale(companyID, saleID, actorID uint, role string) error {
	var sale models.Sale
	err := s.DB.Preload("Items").Where("company_id = ?", companyID).First(&sale, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "sale", ID: saleID}
	}
	if err != nil {
		return err
	}
	if time.Since(sale.SaleDate) > s.VoidWindow && role != models.RoleAdmin {
		return &ForbiddenError{Reason: "void window elapsed, admin role required"}
	}

	restored := 0
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Claim the sale row before touching stock: the scoped delete is the
		// serialization point, so a concurrent void of the same sale loses
		// here instead of restoring the quantities a second time.
		res := tx.Where("company_id = ?", companyID).Delete(&models.Sale{}, sale.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Entity: "sale", ID: saleID}
		}
		for _, it := range sale.Items {
			_, err := s.Stock.RestoreIn(tx, companyID, it.ProductID, it.Quantity)
			var nf *NotFoundError
			if errors.As(err, &nf) {
				// Product deleted since the sale: skip its restoration
				// rather than failing the whole void.
				continue
			}
			if err != nil {
				return err
			}
			restored += it.Quantity
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error
	})
	if err != nil {
		return err
	}

	// Best-effort audit trail; the void itself is already committed.
	audit := models.AuditLog{
		UserID:     actorID,
		EntityType: "Sale",
		EntityID:   sale.ID,
		Action:     "void",
		OldValue:   fmt.Sprintf("total=%.2f paid=%.2f items=%d restored_qty=%d", sale.TotalAmount, sale.PaidAmount, len(sale.Items), restored),
	}
	if err := s.DB.Create(&audit).Error; err != nil {
		log.Printf("audit: failed to record void of sale %d: %v", sale.ID, err)
	}
	return nil
}

// GetSale loads a sale with items and payment history, tenant-scoped.
func (s *SaleService) GetSale(companyID, saleID uint) (*models.Sale, []models.Payment, error) {
	var sale models.Sale
	err := s.DB.Preload("Items").Where("company_id = ?", companyID).First(&sale, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, &NotFoundError{Entity: "sale", ID: saleID}
	}
	if err != nil {
		return nil, nil, err
	}
	var payments []models.Payment
	if err := s.DB.Where("sale_id = ?", sale.ID).Order("id asc").Find(&payments).Error; err != nil {
		return nil, nil, err
	}
	return &sale, payments, nil
}
