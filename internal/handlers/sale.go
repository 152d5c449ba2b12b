package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/models"
	"github.com/retailcore/backoffice/internal/services"

	"gorm.io/gorm"
)

// SaleHandler exposes checkout, payment and void on top of the sale services.
type SaleHandler struct {
	DB       *gorm.DB
	Sales    *services.SaleService
	Payments *services.PaymentService
}

func NewSaleHandler(db *gorm.DB, sales *services.SaleService, payments *services.PaymentService) *SaleHandler {
	return &SaleHandler{DB: db, Sales: sales, Payments: payments}
}

type saleResponse struct {
	ID              uint              `json:"id"`
	CustomerID      uint              `json:"customer_id"`
	HandledBy       uint              `json:"handled_by"`
	Items           []models.SaleItem `json:"items"`
	TotalAmount     float64           `json:"total_amount"`
	PaidAmount      float64           `json:"paid_amount"`
	RemainingAmount float64           `json:"remaining_amount"`
	PaymentStatus   string            `json:"payment_status"`
	SaleDate        string            `json:"sale_date"`
}

func toSaleResponse(s *models.Sale) saleResponse {
	return saleResponse{
		ID:              s.ID,
		CustomerID:      s.CustomerID,
		HandledBy:       s.HandledBy,
		Items:           s.Items,
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
		RemainingAmount: s.RemainingAmount(),
		PaymentStatus:   s.PaymentStatus,
		SaleDate:        s.SaleDate.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create: POST /sales
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var req struct {
		CustomerID uint                `json:"customer_id"`
		Items      []services.CartItem `json:"items"`
		PaidAmount float64             `json:"paid_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	sale, err := h.Sales.CreateSale(services.CreateSaleInput{
		CompanyID:  actor.CompanyID,
		CustomerID: req.CustomerID,
		Items:      req.Items,
		PaidAmount: req.PaidAmount,
		ActorID:    actor.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSaleResponse(sale))
}

// List: GET /sales – paginated, optional status filter
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
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
	dbq := h.DB.Where("company_id = ?", actor.CompanyID)
	if status := r.URL.Query().Get("status"); status != "" {
		switch status {
		case models.PaymentStatusUnpaid, models.PaymentStatusPartial, models.PaymentStatusPaid:
			dbq = dbq.Where("payment_status = ?", status)
		default:
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
	}
	var total int64
	dbq.Model(&models.Sale{}).Count(&total)
	var sales []models.Sale
	if err := dbq.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&sales).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_sales", nil)
		return
	}
	items := make([]saleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, toSaleResponse(&sales[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /sales/detail?id=N – sale with payment history
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, payments, err := h.Sales.GetSale(actor.CompanyID, uint(id))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": toSaleResponse(sale), "payments": payments})
}

// Pay: POST /sales/pay?id=N
func (h *SaleHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
		Note   string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	sale, err := h.Payments.ApplyPayment(actor.CompanyID, uint(id), req.Amount, req.Note, actor.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSaleResponse(sale))
}

// Void: POST /sales/void?id=N
func (h *SaleHandler) Void(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Sales.VoidSale(actor.CompanyID, uint(id), actor.UserID, actor.Role); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "voided"})
}
