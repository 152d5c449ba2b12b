package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/models"
	"github.com/retailcore/backoffice/internal/services"
)

// CodeHandler exposes one-time access codes: admins issue them (e.g. to let a
// new register join the company), anyone with the code redeems it once.
type CodeHandler struct {
	Codes *services.CodeService
}

func NewCodeHandler(codes *services.CodeService) *CodeHandler {
	return &CodeHandler{Codes: codes}
}

// Issue: POST /codes
func (h *CodeHandler) Issue(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	if actor.Role != models.RoleAdmin {
		httpx.JSONError(w, http.StatusForbidden, "admin_only", nil)
		return
	}
	var input struct {
		Purpose    string `json:"purpose"`
		TTLMinutes int    `json:"ttl_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	code, err := h.Codes.Issue(actor.CompanyID, input.Purpose, time.Duration(input.TTLMinutes)*time.Minute)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"code":       code.Code,
		"purpose":    code.Purpose,
		"expires_at": code.ExpiresAt,
	})
}

// Consume: POST /codes/consume
func (h *CodeHandler) Consume(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var input struct {
		Code    string `json:"code"`
		Purpose string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Codes.Consume(actor.CompanyID, input.Code, input.Purpose); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "consumed"})
}
