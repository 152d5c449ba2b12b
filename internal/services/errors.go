package services

import (
	"errors"
	"fmt"
)

// Business errors are typed so handlers can map them to precise HTTP responses
// and callers can render actionable messages. Anything not in this taxonomy
// (I/O, driver errors) passes through untouched and must be treated as fatal,
// never as a business outcome.

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Entity string // "customer", "product", "sale", "code"
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

type ExceedsBalanceError struct {
	SaleID    uint
	Requested float64
	Remaining float64
}

func (e *ExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment %.2f exceeds remaining balance %.2f on sale %d", e.Requested, e.Remaining, e.SaleID)
}

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Reason }

// ErrConflict is returned when an optimistic update keeps losing the version
// race after retries. Callers may simply retry the whole operation.
var ErrConflict = errors.New("concurrent modification, retry")
