package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/retailcore/backoffice/internal/auth"
	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.CompanySettings{}, &models.UserCompany{},
		&models.Product{}, &models.ProductField{}, &models.ProductAttributeValue{},
		&models.Customer{}, &models.Sale{}, &models.SaleItem{}, &models.Payment{},
		&models.Notification{}, &models.AuditLog{}, &models.AccessCode{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seed minimal company/user/customer/product for sale flows
func seedHandlerFixtures(t *testing.T, db *gorm.DB) (actor auth.Actor, customer models.Customer, product models.Product) {
	t.Helper()
	role := models.Role{Name: models.RoleCashier}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user := models.User{Email: "caisse@test", Password: "x", Name: "Caisse", RoleID: role.ID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	company := models.CompanySettings{OwnerID: user.ID, Name: "Épicerie Test"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	user.CompanyID = company.ID
	if err := db.Save(&user).Error; err != nil {
		t.Fatalf("user company: %v", err)
	}
	customer = models.Customer{CompanyID: company.ID, Name: "ClientCo"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	product = models.Product{CompanyID: company.ID, Code: "SKU1", Name: "Produit", Price: 10.00, Stock: 20}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	actor = auth.Actor{UserID: user.ID, CompanyID: company.ID, Role: models.RoleCashier}
	return
}

// authedRequest builds a JSON request with the actor attached, the way the
// middleware would.
func authedRequest(method, target string, body string, actor auth.Actor) (*httptest.ResponseRecorder, *http.Request) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	return httptest.NewRecorder(), req
}
