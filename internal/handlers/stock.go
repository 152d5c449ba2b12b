package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/services"
)

type StockHandler struct {
	Reconciler *services.Reconciler
}

func NewStockHandler(reconciler *services.Reconciler) *StockHandler {
	return &StockHandler{Reconciler: reconciler}
}

// Reconcile: POST /stock/reconcile – partial-tolerant batch decrement.
// 200 all succeeded, 207 partial, 422 all failed; body shape is identical so
// callers can always inspect succeeded/failed.
func (h *StockHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var req struct {
		Items []services.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	result, err := h.Reconciler.ReconcileStockBatch(actor.CompanyID, req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	switch result.Outcome {
	case services.BatchPartial:
		status = http.StatusMultiStatus
	case services.BatchAllFailed:
		status = http.StatusUnprocessableEntity
	}
	httpx.JSON(w, status, result)
}
