package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Reconciler applies stock decrements for a whole cart, one item at a time.
// Unlike checkout it is deliberately partial-tolerant: a failing item never
// aborts the batch, it becomes an entry in the Failed list and the caller
// decides whether to compensate.
type Reconciler struct {
	DB       *gorm.DB
	Stock    *StockService
	Notifier Notifier
}

func NewReconciler(db *gorm.DB, stock *StockService, notifier Notifier) *Reconciler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Reconciler{DB: db, Stock: stock, Notifier: notifier}
}

// BatchOutcome distinguishes "nothing happened" from "some things happened".
type BatchOutcome string

const (
	BatchAllSucceeded BatchOutcome = "all_succeeded"
	BatchPartial      BatchOutcome = "partial"
	BatchAllFailed    BatchOutcome = "all_failed"
)

const (
	FailMissingParameters = "missing_parameters"
	FailProductNotFound   = "product_not_found"
	FailInsufficientStock = "insufficient_stock"
)

type ItemFailure struct {
	ProductID uint   `json:"product_id"`
	Reason    string `json:"reason"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

type BatchResult struct {
	Outcome   BatchOutcome  `json:"outcome"`
	Succeeded []StockChange `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
}

// ReconcileStockBatch decrements stock for each item independently and
// classifies every outcome. Only a storage failure aborts the batch; business
// failures (unknown product, short stock) are per-item results.
func (r *Reconciler) ReconcileStockBatch(companyID uint, items []CartItem) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "required"}
	}
	result := &BatchResult{}
	for _, it := range items {
		if it.ProductID == 0 || it.Quantity <= 0 {
			result.Failed = append(result.Failed, ItemFailure{ProductID: it.ProductID, Reason: FailMissingParameters, Requested: it.Quantity})
			continue
		}
		change, err := r.Stock.Decrement(companyID, it.ProductID, it.Quantity)
		if err == nil {
			result.Succeeded = append(result.Succeeded, *change)
			continue
		}
		var nf *NotFoundError
		var is *InsufficientStockError
		switch {
		case errors.As(err, &nf):
			result.Failed = append(result.Failed, ItemFailure{ProductID: it.ProductID, Reason: FailProductNotFound, Requested: it.Quantity})
		case errors.As(err, &is):
			result.Failed = append(result.Failed, ItemFailure{ProductID: it.ProductID, Reason: FailInsufficientStock, Requested: is.Requested, Available: is.Available})
		default:
			return nil, err
		}
	}

	switch {
	case len(result.Failed) == 0:
		result.Outcome = BatchAllSucceeded
	case len(result.Succeeded) == 0:
		result.Outcome = BatchAllFailed
	default:
		result.Outcome = BatchPartial
	}

	if len(result.Succeeded) > 0 {
		names := make([]string, 0, len(result.Succeeded))
		for _, c := range result.Succeeded {
			names = append(names, c.Name)
		}
		r.Notifier.Publish(Event{
			CompanyID: companyID,
			Type:      "sale_completed",
			Title:     "Vente enregistrée",
			Message:   "Stock mis à jour: " + strings.Join(names, ", "),
		})
	}
	return result, nil
}
