package services

import (
	"errors"
	"testing"
)

func TestDecrementHappyPath(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "SKU1", 5, 10)
	svc := NewStockService(db, &captureNotifier{}, 5)

	change, err := svc.Decrement(company.ID, p.ID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if change.OldStock != 10 || change.NewStock != 7 {
		t.Fatalf("unexpected change: %+v", change)
	}
	if got := currentStock(t, db, p.ID); got != 7 {
		t.Fatalf("stock = %d, want 7", got)
	}
}

func TestDecrementInsufficientLeavesStockUnchanged(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "SKU1", 5, 3)
	svc := NewStockService(db, &captureNotifier{}, 5)

	_, err := svc.Decrement(company.ID, p.ID, 4)
	var is *InsufficientStockError
	if !errors.As(err, &is) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if is.Requested != 4 || is.Available != 3 {
		t.Fatalf("unexpected error payload: %+v", is)
	}
	if got := currentStock(t, db, p.ID); got != 3 {
		t.Fatalf("stock mutated on failure: %d", got)
	}
}

// Two buyers competing for the last unit: the guarded UPDATE lets exactly one
// through, the other gets insufficient stock, never a negative level.
func TestDecrementLastUnitSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "SKU1", 5, 1)
	svc := NewStockService(db, &captureNotifier{}, 0)

	change, err := svc.Decrement(company.ID, p.ID, 1)
	if err != nil {
		t.Fatalf("first buyer: %v", err)
	}
	if change.NewStock != 0 {
		t.Fatalf("new stock = %d", change.NewStock)
	}

	_, err = svc.Decrement(company.ID, p.ID, 1)
	var is *InsufficientStockError
	if !errors.As(err, &is) {
		t.Fatalf("second buyer: %v", err)
	}
	if is.Available != 0 {
		t.Fatalf("available = %d", is.Available)
	}
	if got := currentStock(t, db, p.ID); got != 0 {
		t.Fatalf("stock = %d, must never go negative", got)
	}

	// The serialization is the WHERE clause itself: once the stock no longer
	// covers the quantity, the same conditional write lands on zero rows.
	res := db.Exec("UPDATE products SET stock = stock - 1 WHERE id = ? AND stock >= 1", p.ID)
	if res.Error != nil {
		t.Fatalf("conditional write: %v", res.Error)
	}
	if res.RowsAffected != 0 {
		t.Fatal("conditional write applied without cover")
	}
}

func TestDecrementUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	svc := NewStockService(db, &captureNotifier{}, 5)

	_, err := svc.Decrement(company.ID, 999, 1)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDecrementScopedByCompany(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "SKU1", 5, 10)
	svc := NewStockService(db, &captureNotifier{}, 5)

	// another tenant must not see the product
	_, err := svc.Decrement(company.ID+1, p.ID, 1)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for foreign tenant, got %v", err)
	}
	if got := currentStock(t, db, p.ID); got != 10 {
		t.Fatalf("stock mutated across tenants: %d", got)
	}
}

func TestDecrementEmitsLowStockEvent(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "SKU1", 5, 7)
	sink := &captureNotifier{}
	svc := NewStockService(db, sink, 5)

	if _, err := svc.Decrement(company.ID, p.ID, 1); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(sink.ofType("low_stock")) != 0 {
		t.Fatalf("no event expected at stock 6")
	}
	if _, err := svc.Decrement(company.ID, p.ID, 1); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(sink.ofType("low_stock")) != 1 {
		t.Fatalf("expected low stock event at stock 5, got %d", len(sink.ofType("low_stock")))
	}
}

func TestCompanyThresholdOverride(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	company.LowStockThreshold = 8
	if err := db.Save(&company).Error; err != nil {
		t.Fatalf("save company: %v", err)
	}
	p := seedProduct(t, db, company.ID, "SKU1", 5, 9)
	sink := &captureNotifier{}
	svc := NewStockService(db, sink, 5)

	if _, err := svc.Decrement(company.ID, p.ID, 1); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(sink.ofType("low_stock")) != 1 {
		t.Fatalf("expected event at company threshold 8")
	}
}

func TestRestore(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "SKU1", 5, 2)
	svc := NewStockService(db, &captureNotifier{}, 5)

	change, err := svc.Restore(company.ID, p.ID, 4)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if change.NewStock != 6 {
		t.Fatalf("restore result: %+v", change)
	}

	_, err = svc.Restore(company.ID, 999, 1)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
