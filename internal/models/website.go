package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a standalone testimonial row, no relations.
type Feedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
	Role      string    `json:"role"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate ensures a UUID is generated for new feedback rows.
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// NewsletterSubscriber is an append-only subscription row.
type NewsletterSubscriber struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	SubscribedAt time.Time `gorm:"autoCreateTime" json:"subscribed_at"`
}

// BeforeCreate ensures a UUID is generated for new subscriber rows.
func (n *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
