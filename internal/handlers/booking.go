package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

// BookingHandler creates driver bookings with server-side price validation.
type BookingHandler struct {
	db *gorm.DB
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(db *gorm.DB) *BookingHandler {
	return &BookingHandler{db: db}
}

type bookingRequest struct {
	ParkingSpot string    `json:"parking_spot" validate:"required,uuid"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	VehicleNo   string    `json:"vehicle_no" validate:"required"`
	Vehicle     string    `json:"vehicle" validate:"required,oneof=SMALL MEDIUM SUV BIKE TRUCK MINIBUS VAN"`
}

// Create validates a booking request and persists it. Rules run in order:
// the spot must be active, the start must be in the future, the end must be
// after the start, and the claimed amount must match the computed price to
// the cent. Overlapping bookings are not rejected.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req bookingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	spotID, err := uuid.Parse(req.ParkingSpot)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid parking spot id")
	}

	var spot models.ParkingSpot
	err = h.db.First(&spot, "id = ? AND is_active = ? AND is_archived = ?", spotID, true, false).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusBadRequest, "parking spot is not available for booking")
	}
	if err != nil {
		return err
	}

	now := time.Now()
	if !req.StartTime.After(now) {
		return fiber.NewError(fiber.StatusBadRequest, "start time must be in the future")
	}

	if !req.EndTime.After(req.StartTime) {
		return fiber.NewError(fiber.StatusBadRequest, "end time must be after start time")
	}

	expected := utils.ComputeBookingAmount(spot.RatePerHour, spot.RatePerDay, req.StartTime, req.EndTime)
	if req.Amount != expected {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("amount mismatch: the correct amount for this booking is %.2f", expected))
	}

	booking := models.Booking{
		ParkingSpotID: spot.ID,
		UserID:        userID,
		BookingNo:     utils.GenerateBookingNo(spot.ID.String(), now),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		VehicleNo:     req.VehicleNo,
		Vehicle:       req.Vehicle,
		Amount:        expected,
		PaymentStatus: models.BookingStatusUnpaid,
	}
	if err := h.db.Create(&booking).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "booking created successfully",
		"booking_no":     booking.BookingNo,
		"status":         "created",
		"start_time":     booking.StartTime,
		"end_time":       booking.EndTime,
		"payment_status": booking.PaymentStatus,
	})
}

// ListMine returns the authenticated driver's bookings.
func (h *BookingHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Booking{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var bookings []models.Booking
	if err := query.
		Preload("ParkingSpot").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&bookings).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": bookings,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
