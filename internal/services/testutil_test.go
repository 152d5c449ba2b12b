package services

import (
	"fmt"
	"testing"

	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

// seed minimal company/user/customer for sale flows
func seedFixtures(t *testing.T, db *gorm.DB) (company models.CompanySettings, user models.User, customer models.Customer) {
	t.Helper()
	role := models.Role{Name: models.RoleCashier}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user = models.User{Email: "caisse@test", Password: "x", Name: "Caisse", RoleID: role.ID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	company = models.CompanySettings{OwnerID: user.ID, Name: "Épicerie Test"}
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
	return
}

func seedProduct(t *testing.T, db *gorm.DB, companyID uint, code string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{CompanyID: companyID, Code: code, Name: "Produit " + code, Price: price, Stock: stock}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("product %s: %v", code, err)
	}
	return p
}

func currentStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p models.Product
	if err := db.First(&p, productID).Error; err != nil {
		t.Fatalf("reload product %d: %v", productID, err)
	}
	return p.Stock
}

// captureNotifier records published events for assertions.
type captureNotifier struct {
	events []Event
}

func (c *captureNotifier) Publish(e Event) { c.events = append(c.events, e) }

func (c *captureNotifier) ofType(typ string) []Event {
	var out []Event
	for _, e := range c.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
