package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Units a product can be sold in.
var ProductUnits = []string{"kg", "piece", "litre", "dozen", "pack"}

// ProductCategory groups products.
type ProductCategory struct {
	BaseModel
	Name        string `gorm:"uniqueIndex" json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Description string `json:"description"`
}

// Product is a produce listing owned by a farmer. Average rating and review
// count are derived from reviews, never stored.
type Product struct {
	BaseModel
	FarmerID      uuid.UUID        `gorm:"type:uuid;index" json:"farmer_id"`
	Farmer        *User            `json:"farmer,omitempty"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Category      *ProductCategory `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         float64          `json:"price"`
	OfferPrice    float64          `json:"offer_price"`
	StockQuantity int              `json:"stock_quantity"`
	FeaturedImage string           `json:"featured_image"`
	Unit          string           `gorm:"default:piece" json:"unit"`

	Reviews []ProductReview `json:"reviews,omitempty"`
	Images  []ProductImage  `json:"images,omitempty"`
}

// AverageRating computes the mean of loaded reviews, 0 when there are none.
func (p *Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	var total int
	for _, r := range p.Reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(p.Reviews))
}

// ProductReview is a buyer's rating, constrained to 1..5 at the boundary.
type ProductReview struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	CreatedByID   uuid.UUID `gorm:"type:uuid" json:"created_by_id"`
	Rating        int       `gorm:"default:5" json:"rating"`
	ReviewMessage string    `json:"review_message"`
}

// ProductImage is an additional gallery image.
type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Image     string    `json:"image"`
}

// ProductSearch logs every public search query; recommender input.
type ProductSearch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Query     string    `json:"query"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// BeforeCreate ensures a UUID is generated for new search rows.
func (s *ProductSearch) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ProductClick logs a product detail view; recommender input.
type ProductClick struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Timestamp time.Time  `gorm:"autoCreateTime" json:"timestamp"`
}

// BeforeCreate ensures a UUID is generated for new click rows.
func (c *ProductClick) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
