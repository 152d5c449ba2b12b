package services

import (
	"errors"
	"strings"
	"time"

	"github.com/retailcore/backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodeService manages short-lived single-use access codes. They used to live
// in a process-local map; keeping them in the database makes them survive
// restarts and work across instances.
type CodeService struct {
	DB *gorm.DB
}

func NewCodeService(db *gorm.DB) *CodeService { return &CodeService{DB: db} }

// Issue creates a code for the given purpose, valid for ttl.
func (c *CodeService) Issue(companyID uint, purpose string, ttl time.Duration) (*models.AccessCode, error) {
	if strings.TrimSpace(purpose) == "" {
		return nil, &ValidationError{Field: "purpose", Reason: "required"}
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	code := models.AccessCode{
		CompanyID: companyID,
		Code:      uuid.NewString(),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := c.DB.Create(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// Consume marks a code used. Expired, already-consumed and unknown codes are
// indistinguishable to the caller (all NotFound). The consumed_at guard makes
// concurrent consumption single-winner.
func (c *CodeService) Consume(companyID uint, code, purpose string) error {
	var row models.AccessCode
	err := c.DB.Where("company_id = ? AND code = ? AND purpose = ?", companyID, code, purpose).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "code"}
	}
	if err != nil {
		return err
	}
	if row.ConsumedAt != nil || time.Now().After(row.ExpiresAt) {
		return &NotFoundError{Entity: "code"}
	}
	now := time.Now()
	res := c.DB.Model(&models.AccessCode{}).
		Where("id = ? AND consumed_at IS NULL", row.ID).
		Update("consumed_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "code"}
	}
	return nil
}

// PurgeExpired deletes codes past their expiry. Meant to be called
// opportunistically (startup, cron); correctness never depends on it.
func (c *CodeService) PurgeExpired() (int64, error) {
	res := c.DB.Where("expires_at < ?", time.Now()).Delete(&models.AccessCode{})
	return res.RowsAffected, res.Error
}
