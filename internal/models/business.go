package models

import "github.com/google/uuid"

// BusinessCategory groups businesses.
type BusinessCategory struct {
	BaseModel
	Name string `json:"name"`
}

// BusinessInfo is a farmer's business profile, one per farmer.
type BusinessInfo struct {
	BaseModel
	FarmerID     uuid.UUID         `gorm:"type:uuid;uniqueIndex" json:"farmer_id"`
	Farmer       *User             `gorm:"constraint:OnDelete:RESTRICT" json:"farmer,omitempty"`
	CategoryID   uuid.UUID         `gorm:"type:uuid" json:"category_id"`
	Category     *BusinessCategory `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Logo         string            `json:"logo"`
	BusinessName string            `json:"business_name"`
	Description  string            `json:"description"`
	Story        string            `json:"story"`
	ContactEmail string            `json:"contact_email"`
	ContactNo    string            `json:"contact_no"`

	Documents *BusinessDocuments `gorm:"foreignKey:BusinessID" json:"documents,omitempty"`
}

// BusinessDocuments is the KYC submission, one per business.
type BusinessDocuments struct {
	BaseModel
	BusinessID              uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"business_id"`
	RegistrationCertificate string    `json:"registration_certificate"`
	TaxCertificate          string    `json:"tax_certificate"`
	OwnerID                 string    `json:"owner_id"`
	AddressProof            string    `json:"address_proof"`
	IsVerified              bool      `json:"is_verified"`
}
