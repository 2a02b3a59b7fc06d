package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth providers accepted at signin.
const (
	AuthProviderCredentials = "BY-CREDENTIALS"
	AuthProviderGoogle      = "GOOGLE"
)

// User represents a marketplace account: a driver booking spots, an owner
// listing them, or a farmer selling produce.
type User struct {
	BaseModel
	Username         string     `gorm:"uniqueIndex" json:"username"`
	Email            string     `gorm:"uniqueIndex" json:"email"`
	PhoneNo          string     `gorm:"uniqueIndex" json:"phone_no"`
	FirstName        string     `json:"first_name"`
	MiddleName       string     `json:"middle_name"`
	LastName         string     `json:"last_name"`
	Bio              string     `json:"bio"`
	Photo            string     `json:"photo"`
	PasswordHash     string     `json:"-"`
	AuthProvider     string     `gorm:"default:BY-CREDENTIALS" json:"auth_provider"`
	IsEmailVerified  bool       `json:"is_email_verified"`
	IsPhoneVerified  bool       `json:"is_phone_verified"`
	HasAcceptedTerms bool       `json:"has_accepted_terms"`
	LastLogin        *time.Time `json:"last_login"`
	Roles            []UserRole `gorm:"many2many:user_user_roles;" json:"roles,omitempty"`
}

// FullName joins the non-empty name parts with single spaces.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// HasRole reports whether the user carries the given role codename.
func (u *User) HasRole(codename string) bool {
	for _, r := range u.Roles {
		if r.Codename == codename {
			return true
		}
	}
	return false
}

// UserRole is a named group users belong to (DRIVER, OWNER, FARMER).
type UserRole struct {
	BaseModel
	Name     string `json:"name"`
	Codename string `gorm:"uniqueIndex" json:"codename"`
}

// UserAccountVerification is a single-use email verification token.
// At most one unarchived row exists per user; consuming or expiring
// the token archives it.
type UserAccountVerification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User     `json:"user,omitempty"`
	Token      string    `gorm:"uniqueIndex" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	IsArchived bool      `gorm:"default:false" json:"is_archived"`
}

// BeforeCreate ensures a UUID is generated for new verification rows.
func (v *UserAccountVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// PasswordResetToken mirrors UserAccountVerification for the reset flow.
type PasswordResetToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User     `json:"user,omitempty"`
	Token      string    `gorm:"uniqueIndex" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	IsArchived bool      `gorm:"default:false" json:"is_archived"`
}

// BeforeCreate ensures a UUID is generated for new reset rows.
func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
