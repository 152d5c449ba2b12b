package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/config"
	"github.com/retailcore/backoffice/internal/handlers"
	"github.com/retailcore/backoffice/internal/httpx"
	"github.com/retailcore/backoffice/internal/models"
	"github.com/retailcore/backoffice/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// Configure an actor verifier so RequireAuth can ensure the user still exists.
	auth.SetActorVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	notifier := services.NewDBNotifier(db)
	stockSvc := services.NewStockService(db, notifier, cfg.LowStockThreshold)
	saleSvc := services.NewSaleService(db, stockSvc, notifier, time.Duration(cfg.VoidWindowHours)*time.Hour)
	paymentSvc := services.NewPaymentService(db)
	reconciler := services.NewReconciler(db, stockSvc, notifier)
	attrSvc := services.NewAttributeService(db)

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	// Product endpoints. List/Create via /products. Update/Delete via query id.
	ph := handlers.NewProductHandler(db, attrSvc)
	mux.Handle("/products", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/products/update", protected(ph.Update))
	mux.Handle("/products/delete", protected(ph.Delete))
	mux.Handle("/products/attributes", protected(ph.Attributes))
	mux.Handle("/products/fields", protected(ph.Fields))

	// Customer endpoints
	ch := handlers.NewCustomerHandler(db)
	mux.Handle("/customers", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))

	// Sale endpoints
	sh := handlers.NewSaleHandler(db, saleSvc, paymentSvc)
	mux.Handle("/sales", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sh.List(w, r)
		case http.MethodPost:
			sh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/sales/detail", protected(sh.Get))
	mux.Handle("/sales/pay", protected(sh.Pay))
	mux.Handle("/sales/void", protected(sh.Void))

	// One-time access codes
	codeHandler := handlers.NewCodeHandler(services.NewCodeService(db))
	mux.Handle("/codes", protected(codeHandler.Issue))
	mux.Handle("/codes/consume", protected(codeHandler.Consume))

	// Stock reconciliation (POS checkout path)
	sth := handlers.NewStockHandler(reconciler)
	mux.Handle("/stock/reconcile", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		sth.Reconcile(w, r)
	}))

	return withRecover(withLogging(mux))
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
