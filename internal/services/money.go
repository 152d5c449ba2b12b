package services

import (
	"math"

	"github.com/retailcore/backoffice/internal/models"
)

// Amounts are float64 like everywhere else in the app; all derivations round
// to cents so that status checks compare exact integer cent values.

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func cents(v float64) int64 { return int64(math.Round(v * 100)) }

// derivePaymentStatus recomputes the status purely from the two amounts.
// No stored status may ever disagree with this derivation.
func derivePaymentStatus(paid, total float64) string {
	pc, tc := cents(paid), cents(total)
	switch {
	case pc >= tc:
		return models.PaymentStatusPaid
	case pc == 0:
		return models.PaymentStatusUnpaid
	default:
		return models.PaymentStatusPartial
	}
}
