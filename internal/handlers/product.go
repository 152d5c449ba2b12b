package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/models"
	"github.com/retailcore/backoffice/internal/services"
	"github.com/retailcore/backoffice/internal/validation"

	"gorm.io/gorm"
)

type ProductHandler struct {
	DB    *gorm.DB
	Attrs *services.AttributeService
}

func NewProductHandler(db *gorm.DB, attrs *services.AttributeService) *ProductHandler {
	return &ProductHandler{DB: db, Attrs: attrs}
}

var searchSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	// Pagination params
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Where("company_id = ?", actor.CompanyID)
	if query != "" {
		safe := searchSanitizer.ReplaceAllString(query, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(code) LIKE ?", like, like)
	}
	var total int64
	dbq.Model(&models.Product{}).Count(&total)
	var products []models.Product
	if err := dbq.Order("id desc").Limit(pageSize).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": pageSize, "offset": offset})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var input struct {
		Code  string  `json:"code"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Stock int     `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("code", input.Code, v)
	validation.Required("name", input.Name, v)
	validation.NonNegativeFloat("price", input.Price, v)
	if input.Stock < 0 {
		v["stock"] = "must_not_be_negative"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{
		CompanyID: actor.CompanyID,
		CreatedBy: actor.UserID,
		Code:      strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:      input.Name,
		Price:     input.Price,
		Stock:     input.Stock,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "duplicate") || strings.Contains(strings.ToLower(err.Error()), "unique") {
			httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "product_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update allows editing name and price; code immutable, stock only via the
// stock ledger (decrement/restore), never set directly here.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Product
	if err := h.DB.Where("company_id = ?", actor.CompanyID).First(&p, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var body struct {
		Name  *string  `json:"name"`
		Price *float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if body.Name != nil {
		p.Name = *body.Name
	}
	if body.Price != nil {
		if *body.Price < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"price": "must_not_be_negative"})
			return
		}
		p.Price = *body.Price
	}
	if err := h.DB.Save(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete soft-deletes a product; past sales keep referencing it and voids
// silently skip restoring its stock.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND company_id = ?", id, actor.CompanyID).Delete(&models.Product{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Attributes handles GET (read values) and POST (set one value) on
// /products/attributes?id=N.
func (h *ProductHandler) Attributes(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		values, err := h.Attrs.Values(actor.CompanyID, uint(id))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, values)
	case http.MethodPost:
		var input struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if err := h.Attrs.SetValue(actor.CompanyID, uint(id), input.Key, input.Value); err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// Fields handles the per-company attribute registry: GET lists, POST defines.
func (h *ProductHandler) Fields(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		var fields []models.ProductField
		if err := h.DB.Where("company_id = ?", actor.CompanyID).Order("key asc").Find(&fields).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_fields", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, fields)
	case http.MethodPost:
		var input struct {
			Key   string `json:"key"`
			Label string `json:"label"`
			Kind  string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		field, err := h.Attrs.DefineField(actor.CompanyID, input.Key, input.Label, input.Kind)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, field)
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
