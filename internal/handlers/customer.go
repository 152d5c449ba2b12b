package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/models"
	"github.com/retailcore/backoffice/internal/validation"

	"gorm.io/gorm"
)

type CustomerHandler struct{ DB *gorm.DB }

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Where("company_id = ?", actor.CompanyID)
	if q != "" {
		safe := searchSanitizer.ReplaceAllString(q, "")
		dbq = dbq.Where("lower(name) LIKE ?", "%"+strings.ToLower(safe)+"%")
	}
	var total int64
	dbq.Model(&models.Customer{}).Count(&total)
	var customers []models.Customer
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": total, "limit": limit, "offset": offset})
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var input struct {
		Name      string `json:"name"`
		Contact   string `json:"contact"`
		Telephone string `json:"telephone"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Customer{
		CompanyID: actor.CompanyID,
		Name:      strings.TrimSpace(input.Name),
		Contact:   input.Contact,
		Telephone: input.Telephone,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
	}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "customer_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}
