package services

import (
	"errors"
	"testing"
)

func TestDefineFieldAndRedefine(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	svc := NewAttributeService(db)

	field, err := svc.DefineField(company.ID, " Couleur ", "Couleur", "text")
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if field.Key != "couleur" || field.Version != 1 {
		t.Fatalf("field = %+v", field)
	}

	again, err := svc.DefineField(company.ID, "couleur", "Coloris", "text")
	if err != nil {
		t.Fatalf("redefine: %v", err)
	}
	if again.ID != field.ID || again.Version != 2 || again.Label != "Coloris" {
		t.Fatalf("redefined = %+v", again)
	}
}

func TestDefineFieldValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAttributeService(db)

	var ve *ValidationError
	if _, err := svc.DefineField(1, "", "X", "text"); !errors.As(err, &ve) || ve.Field != "key" {
		t.Fatalf("empty key: %v", err)
	}
	if _, err := svc.DefineField(1, "taille", "Taille", "json"); !errors.As(err, &ve) || ve.Field != "kind" {
		t.Fatalf("bad kind: %v", err)
	}
}

func TestSetAndReadValues(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	product := seedProduct(t, db, company.ID, "TEE", 10.00, 5)
	svc := NewAttributeService(db)

	if _, err := svc.DefineField(company.ID, "couleur", "Couleur", "text"); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := svc.DefineField(company.ID, "taille", "Taille", "text"); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := svc.SetValue(company.ID, product.ID, "couleur", "rouge"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := svc.SetValue(company.ID, product.ID, "taille", "M"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Upsert overwrites.
	if err := svc.SetValue(company.ID, product.ID, "couleur", "bleu"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	values, err := svc.Values(company.ID, product.ID)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if len(values) != 2 || values["couleur"] != "bleu" || values["taille"] != "M" {
		t.Fatalf("values = %+v", values)
	}
}

func TestSetValueUnknownFieldOrProduct(t *testing.T) {
	db := setupTestDB(t)
	company, _, _ := seedFixtures(t, db)
	product := seedProduct(t, db, company.ID, "TEE", 10.00, 5)
	svc := NewAttributeService(db)

	var nf *NotFoundError
	if err := svc.SetValue(company.ID, product.ID, "inconnu", "x"); !errors.As(err, &nf) || nf.Entity != "field" {
		t.Fatalf("unknown field: %v", err)
	}
	if _, err := svc.DefineField(company.ID, "couleur", "Couleur", "text"); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := svc.SetValue(company.ID, 99999, "couleur", "x"); !errors.As(err, &nf) || nf.Entity != "product" {
		t.Fatalf("unknown product: %v", err)
	}
	// Another tenant's product is invisible.
	if err := svc.SetValue(company.ID+1, product.ID, "couleur", "x"); !errors.As(err, &nf) {
		t.Fatalf("cross-tenant: %v", err)
	}
}
