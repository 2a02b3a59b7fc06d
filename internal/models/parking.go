package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle types a spot can hold and a booking can declare.
var VehicleTypes = []string{"SMALL", "MEDIUM", "SUV", "BIKE", "TRUCK", "MINIBUS", "VAN"}

// Feature tags a spot can advertise.
var FeatureChoices = []string{"CCTV", "EV_CHARGING", "SECURITY_LIGHTING", "HANDICAP_ACCESSIBLE", "COVERED", "GUARDS"}

// DaysOfWeek for availability windows.
var DaysOfWeek = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// Booking payment statuses.
const (
	BookingStatusUnpaid = "unpaid"
	BookingStatusPaid   = "paid"
)

// ParkingSpot is a rentable spot listed by an owner.
type ParkingSpot struct {
	BaseModel
	OwnerID     uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Owner       *User     `gorm:"constraint:OnDelete:RESTRICT" json:"owner,omitempty"`
	Name        string    `json:"name"`
	CoverImage  string    `json:"cover_image"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Postcode    string    `json:"postcode"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RatePerHour float64   `json:"rate_per_hour"`
	RatePerDay  float64   `json:"rate_per_day"`

	Availabilities    []ParkingSpotAvailability    `json:"availabilities,omitempty"`
	Features          []ParkingSpotFeature         `json:"features,omitempty"`
	VehiclesCapacity  []ParkingSpotVehicleCapacity `json:"vehicles_capacity,omitempty"`
	Reviews           []ParkingSpotReview          `json:"reviews,omitempty"`
}

// ParkingSpotAvailability is a weekly opening window, unique per day and spot.
type ParkingSpotAvailability struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParkingSpotID uuid.UUID `gorm:"type:uuid;index:idx_availability_day_spot,unique" json:"parking_spot_id"`
	Day           string    `gorm:"index:idx_availability_day_spot,unique" json:"day"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
}

// BeforeCreate ensures a UUID is generated for new availability rows.
func (a *ParkingSpotAvailability) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ParkingSpotFeature tags a spot with one feature choice.
type ParkingSpotFeature struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParkingSpotID uuid.UUID `gorm:"type:uuid;index" json:"parking_spot_id"`
	Feature       string    `json:"feature"`
}

// BeforeCreate ensures a UUID is generated for new feature rows.
func (f *ParkingSpotFeature) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ParkingSpotVehicleCapacity records how many vehicles of a type fit.
type ParkingSpotVehicleCapacity struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParkingSpotID uuid.UUID `gorm:"type:uuid;index" json:"parking_spot_id"`
	VehicleType   string    `json:"vehicle_type"`
	Capacity      int       `json:"capacity"`
}

// BeforeCreate ensures a UUID is generated for new capacity rows.
func (v *ParkingSpotVehicleCapacity) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// ParkingSpotReview is a driver's rating of a spot.
type ParkingSpotReview struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParkingSpotID uuid.UUID `gorm:"type:uuid;index" json:"parking_spot_id"`
	ReviewerID    uuid.UUID `gorm:"type:uuid;index" json:"reviewer_id"`
	Reviewer      *User     `json:"reviewer,omitempty"`
	Rating        int       `json:"rating"`
	Comments      string    `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
}

// BeforeCreate ensures a UUID is generated for new review rows.
func (r *ParkingSpotReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Booking reserves a spot for a half-open [start, end) window.
type Booking struct {
	BaseModel
	ParkingSpotID uuid.UUID    `gorm:"type:uuid;index" json:"parking_spot_id"`
	ParkingSpot   *ParkingSpot `json:"parking_spot,omitempty"`
	UserID        uuid.UUID    `gorm:"type:uuid;index" json:"user_id"`
	User          *User        `gorm:"constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	BookingNo     string       `gorm:"uniqueIndex" json:"booking_no"`
	StartTime     time.Time    `json:"start_time"`
	EndTime       time.Time    `json:"end_time"`
	VehicleNo     string       `json:"vehicle_no"`
	Vehicle       string       `json:"vehicle"`
	Amount        float64      `json:"amount"`
	PaymentStatus string       `gorm:"default:unpaid" json:"payment_status"`
}
