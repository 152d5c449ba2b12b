package services

import (
	"errors"
	"testing"
)

func TestReconcilePartialBatch(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "P", 2.00, 10)
	q := seedProduct(t, db, company.ID, "Q", 3.00, 3)

	notifier := &captureNotifier{}
	stock := NewStockService(db, notifier, 0)
	rec := NewReconciler(db, stock, notifier)

	res, err := rec.ReconcileStockBatch(company.ID, []CartItem{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: q.ID, Quantity: 1000},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Outcome != BatchPartial {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(res.Succeeded) != 1 || res.Succeeded[0].ProductID != p.ID || res.Succeeded[0].NewStock != 8 {
		t.Fatalf("succeeded = %+v", res.Succeeded)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("failed = %+v", res.Failed)
	}
	f := res.Failed[0]
	if f.ProductID != q.ID || f.Reason != FailInsufficientStock || f.Requested != 1000 || f.Available != 3 {
		t.Fatalf("failure = %+v", f)
	}
	if got := currentStock(t, db, p.ID); got != 8 {
		t.Fatalf("stock P = %d", got)
	}
	if got := currentStock(t, db, q.ID); got != 3 {
		t.Fatalf("stock Q = %d, failing item must leave stock untouched", got)
	}
}

func TestReconcileAllFailed(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	q := seedProduct(t, db, company.ID, "Q", 3.00, 1)

	notifier := &captureNotifier{}
	stock := NewStockService(db, notifier, 0)
	rec := NewReconciler(db, stock, notifier)

	res, err := rec.ReconcileStockBatch(company.ID, []CartItem{
		{ProductID: q.ID, Quantity: 5},
		{ProductID: 99999, Quantity: 1},
		{ProductID: 0, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Outcome != BatchAllFailed {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(res.Failed) != 3 {
		t.Fatalf("failed = %+v", res.Failed)
	}
	reasons := map[uint]string{}
	for _, f := range res.Failed {
		reasons[f.ProductID] = f.Reason
	}
	if reasons[q.ID] != FailInsufficientStock {
		t.Fatalf("q reason = %s", reasons[q.ID])
	}
	if reasons[99999] != FailProductNotFound {
		t.Fatalf("unknown reason = %s", reasons[99999])
	}
	if reasons[0] != FailMissingParameters {
		t.Fatalf("zero-id reason = %s", reasons[0])
	}
	// A fully failed batch must not publish any sale notification.
	if got := notifier.ofType("sale_completed"); len(got) != 0 {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestReconcileAllSucceededNotifies(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	p := seedProduct(t, db, company.ID, "P", 2.00, 10)
	q := seedProduct(t, db, company.ID, "Q", 3.00, 10)

	notifier := &captureNotifier{}
	stock := NewStockService(db, notifier, 0)
	rec := NewReconciler(db, stock, notifier)

	res, err := rec.ReconcileStockBatch(company.ID, []CartItem{
		{ProductID: p.ID, Quantity: 1},
		{ProductID: q.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Outcome != BatchAllSucceeded {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if got := notifier.ofType("sale_completed"); len(got) != 1 {
		t.Fatalf("expected one sale_completed event, got %+v", notifier.events)
	}
}

func TestReconcileRejectsEmptyBatch(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	stock := NewStockService(db, nil, 0)
	rec := NewReconciler(db, stock, nil)

	if _, err := rec.ReconcileStockBatch(company.ID, nil); err == nil {
		t.Fatal("expected validation error")
	} else {
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "items" {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
