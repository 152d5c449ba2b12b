package services

import (
	"log"
	"time"

	"github.com/retailcore/backoffice/internal/models"

	"gorm.io/gorm"
)

// Event is what the core emits towards the notification sink. Delivery is
// fire-and-forget: a failing sink must never roll back a committed stock or
// payment change, so Publish has no error return and sinks log their own
// failures.
type Event struct {
	CompanyID uint
	Type      string // "low_stock", "sale_completed"
	Title     string
	Message   string
}

type Notifier interface {
	Publish(e Event)
}

// DBNotifier persists events as Notification rows (dashboard feed).
type DBNotifier struct {
	DB *gorm.DB
}

func NewDBNotifier(db *gorm.DB) *DBNotifier { return &DBNotifier{DB: db} }

func (n *DBNotifier) Publish(e Event) {
	row := models.Notification{
		CompanyID: e.CompanyID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		SentAt:    time.Now(),
	}
	if err := n.DB.Create(&row).Error; err != nil {
		log.Printf("notify: failed to store %s notification: %v", e.Type, err)
	}
}

// LogNotifier is the fallback sink used when nothing better is wired (tests, CLI).
type LogNotifier struct{}

func (LogNotifier) Publish(e Event) {
	log.Printf("notify: [%s] %s - %s", e.Type, e.Title, e.Message)
}
