package services

import (
	"errors"
	"strings"

	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/gorm"
)

// AttributeService implements tenant-defined product attributes: a fixed core
// Product schema plus a side table of values keyed by a per-company field
// registry, instead of a schema-less document.
type AttributeService struct {
	DB *gorm.DB
}

func NewAttributeService(db *gorm.DB) *AttributeService { return &AttributeService{DB: db} }

var fieldKinds = map[string]bool{"text": true, "number": true, "bool": true}

// DefineField registers (or redefines) a field for the company. Redefinition
// keeps the key stable and bumps the version.
func (a *AttributeService) DefineField(companyID uint, key, label, kind string) (*models.ProductField, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, &ValidationError{Field: "key", Reason: "required"}
	}
	if kind == "" {
		kind = "text"
	}
	if !fieldKinds[kind] {
		return nil, &ValidationError{Field: "kind", Reason: "unknown_kind"}
	}
	var field models.ProductField
	err := a.DB.Where("company_id = ? AND key = ?", companyID, key).First(&field).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		field = models.ProductField{CompanyID: companyID, Key: key, Label: label, Kind: kind, Version: 1}
		if err := a.DB.Create(&field).Error; err != nil {
			return nil, err
		}
		return &field, nil
	}
	if err != nil {
		return nil, err
	}
	field.Label = label
	field.Kind = kind
	field.Version++
	if err := a.DB.Save(&field).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

// SetValue stores one attribute value for a product, validated against the
// field registry. Upserts on (product, field).
func (a *AttributeService) SetValue(companyID, productID uint, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	var field models.ProductField
	err := a.DB.Where("company_id = ? AND key = ?", companyID, key).First(&field).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "field"}
	}
	if err != nil {
		return err
	}
	var product models.Product
	err = a.DB.Select("id").Where("company_id = ?", companyID).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "product", ID: productID}
	}
	if err != nil {
		return err
	}

	var existing models.ProductAttributeValue
	err = a.DB.Where("product_id = ? AND field_id = ?", product.ID, field.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a.DB.Create(&models.ProductAttributeValue{ProductID: product.ID, FieldID: field.ID, Value: value}).Error
	}
	if err != nil {
		return err
	}
	existing.Value = value
	return a.DB.Save(&existing).Error
}

// Values returns a product's attributes as key → value.
func (a *AttributeService) Values(companyID, productID uint) (map[string]string, error) {
	var product models.Product
	err := a.DB.Select("id").Where("company_id = ?", companyID).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "product", ID: productID}
	}
	if err != nil {
		return nil, err
	}
	var rows []models.ProductAttributeValue
	if err := a.DB.Preload("Field").Where("product_id = ?", product.ID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Field.Key] = r.Value
	}
	return out, nil
}
