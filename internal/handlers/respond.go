package handlers

import (
	"errors"
	"net/http"

	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/services"
)

// writeServiceError maps the business-error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a storage/internal failure: 500, no detail
// leaked, and never dressed up as a business outcome.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	var nf *services.NotFoundError
	var is *services.InsufficientStockError
	var eb *services.ExceedsBalanceError
	var fb *services.ForbiddenError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{ve.Field: ve.Reason})
	case errors.As(err, &nf):
		httpx.JSONError(w, http.StatusNotFound, "not_found", map[string]any{"entity": nf.Entity, "id": nf.ID})
	case errors.As(err, &is):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{
			"product_id": is.ProductID, "name": is.Name, "requested": is.Requested, "available": is.Available,
		})
	case errors.As(err, &eb):
		httpx.JSONError(w, http.StatusConflict, "exceeds_balance", map[string]any{
			"sale_id": eb.SaleID, "requested": eb.Requested, "remaining": eb.Remaining,
		})
	case errors.As(err, &fb):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", fb.Reason)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, "conflict_retry", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
