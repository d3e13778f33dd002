package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/enums"
)

// NewsletterSubscription is a mailing list entry; unsubscribing deactivates it.
type NewsletterSubscription struct {
	Identity
	Email        string    `gorm:"column:email;size:254;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;size:100"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (n *NewsletterSubscription) BeforeSave(_ *gorm.DB) error {
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	return nil
}

// ContactMessage is a contact form submission awaiting staff attention.
type ContactMessage struct {
	Identity
	Name      string               `gorm:"column:name;size:100;not null"`
	Email     string               `gorm:"column:email;size:254;not null"`
	Phone     string               `gorm:"column:phone;size:20"`
	Subject   enums.ContactSubject `gorm:"column:subject;size:50;not null"`
	Message   string               `gorm:"column:message;type:text;not null"`
	IsRead    bool                 `gorm:"column:is_read;not null;index"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime;index"`
}

// All lists every persisted model in dependency order, for AutoMigrate in
// tests and local SQLite setups.
func All() []any {
	return []any{
		&Category{}, &SubCategory{}, &Brand{}, &Tag{},
		&Product{}, &ProductImage{}, &ProductAttribute{},
		&Customer{}, &Cart{}, &CartItem{},
		&Order{}, &OrderItem{}, &ProductReview{},
		&NewsletterSubscription{}, &ContactMessage{},
	}
}
