package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

// ParkingAdminHandler manages an owner's parking spots and bookings.
type ParkingAdminHandler struct {
	db *gorm.DB
}

// NewParkingAdminHandler constructs ParkingAdminHandler.
func NewParkingAdminHandler(db *gorm.DB) *ParkingAdminHandler {
	return &ParkingAdminHandler{db: db}
}

type availabilityInput struct {
	Day       string `json:"day" validate:"required,oneof=MON TUE WED THU FRI SAT SUN"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type featureInput struct {
	Feature string `json:"feature" validate:"required,oneof=CCTV EV_CHARGING SECURITY_LIGHTING HANDICAP_ACCESSIBLE COVERED GUARDS"`
}

type vehicleCapacityInput struct {
	VehicleType string `json:"vehicle_type" validate:"required,oneof=SMALL MEDIUM SUV BIKE TRUCK MINIBUS VAN"`
	Capacity    int    `json:"capacity" validate:"required,gte=1"`
}

type parkingSpotRequest struct {
	Name             string                 `json:"name" validate:"required"`
	CoverImage       string                 `json:"cover_image"`
	Description      string                 `json:"description"`
	Address          string                 `json:"address" validate:"required"`
	Postcode         string                 `json:"postcode" validate:"required"`
	Latitude         float64                `json:"latitude"`
	Longitude        float64                `json:"longitude"`
	RatePerHour      float64                `json:"rate_per_hour" validate:"required,gte=0"`
	RatePerDay       float64                `json:"rate_per_day" validate:"required,gte=0"`
	Availabilities   []availabilityInput    `json:"availabilities" validate:"dive"`
	Features         []featureInput         `json:"features" validate:"dive"`
	VehiclesCapacity []vehicleCapacityInput `json:"vehicles_capacity" validate:"dive"`
}

// ListSpots returns the authenticated owner's spots with optional filters.
func (h *ParkingAdminHandler) ListSpots(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.ParkingSpot{}).
		Where("owner_id = ? AND is_archived = ?", ownerID, false)

	if name := c.Query("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if postcode := c.Query("postcode"); postcode != "" {
		query = query.Where("postcode = ?", postcode)
	}
	if v := c.Query("max_rate_per_hour"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("rate_per_hour <= ?", rate)
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ? OR description ILIKE ?", q, q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var spots []models.ParkingSpot
	if err := query.
		Preload("Availabilities").
		Preload("Features").
		Preload("VehiclesCapacity").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&spots).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": spots,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetSpot loads one of the owner's spots with all children.
func (h *ParkingAdminHandler) GetSpot(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	spot, err := h.ownedSpot(c.Params("id"), ownerID, true)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": spot})
}

// CreateSpot persists a spot with its availability, feature and capacity
// children in one transaction.
func (h *ParkingAdminHandler) CreateSpot(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req parkingSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	if fields := validateSpotChildren(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	spot := models.ParkingSpot{
		OwnerID:     ownerID,
		Name:        req.Name,
		CoverImage:  req.CoverImage,
		Description: req.Description,
		Address:     req.Address,
		Postcode:    req.Postcode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RatePerHour: req.RatePerHour,
		RatePerDay:  req.RatePerDay,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&spot).Error; err != nil {
			return err
		}
		return createSpotChildren(tx, spot.ID, req)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "parking spot created",
		"id":      spot.ID,
	})
}

// UpdateSpot replaces the spot's fields and children in one transaction.
func (h *ParkingAdminHandler) UpdateSpot(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	spot, err := h.ownedSpot(c.Params("id"), ownerID, false)
	if err != nil {
		return err
	}

	var req parkingSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	if fields := validateSpotChildren(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":          req.Name,
			"cover_image":   req.CoverImage,
			"description":   req.Description,
			"address":       req.Address,
			"postcode":      req.Postcode,
			"latitude":      req.Latitude,
			"longitude":     req.Longitude,
			"rate_per_hour": req.RatePerHour,
			"rate_per_day":  req.RatePerDay,
		}
		if err := tx.Model(&models.ParkingSpot{}).Where("id = ?", spot.ID).Updates(updates).Error; err != nil {
			return err
		}

		for _, child := range []interface{}{
			&models.ParkingSpotAvailability{},
			&models.ParkingSpotFeature{},
			&models.ParkingSpotVehicleCapacity{},
		} {
			if err := tx.Where("parking_spot_id = ?", spot.ID).Delete(child).Error; err != nil {
				return err
			}
		}

		return createSpotChildren(tx, spot.ID, req)
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "parking spot updated"})
}

// DeleteSpot soft-archives a spot. Bookings keep their FK.
func (h *ParkingAdminHandler) DeleteSpot(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	spot, err := h.ownedSpot(c.Params("id"), ownerID, false)
	if err != nil {
		return err
	}

	if err := h.db.Model(&models.ParkingSpot{}).
		Where("id = ?", spot.ID).
		Updates(map[string]interface{}{"is_archived": true, "is_active": false}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "parking spot deleted"})
}

// DeleteAvailability removes one availability row after an ownership check
// through the parent spot.
func (h *ParkingAdminHandler) DeleteAvailability(c *fiber.Ctx) error {
	return h.deleteChild(c, &models.ParkingSpotAvailability{})
}

// DeleteFeature removes one feature row.
func (h *ParkingAdminHandler) DeleteFeature(c *fiber.Ctx) error {
	return h.deleteChild(c, &models.ParkingSpotFeature{})
}

// DeleteVehicleCapacity removes one capacity row.
func (h *ParkingAdminHandler) DeleteVehicleCapacity(c *fiber.Ctx) error {
	return h.deleteChild(c, &models.ParkingSpotVehicleCapacity{})
}

// ListBookings returns bookings across all of the owner's spots.
func (h *ParkingAdminHandler) ListBookings(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Booking{}).
		Joins("JOIN parking_spots ON parking_spots.id = bookings.parking_spot_id").
		Where("parking_spots.owner_id = ?", ownerID)

	if status := c.Query("payment_status"); status != "" {
		query = query.Where("bookings.payment_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var bookings []models.Booking
	if err := query.
		Preload("ParkingSpot").
		Preload("User").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("bookings.created_at desc").
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

type bookingStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid unpaid"`
}

// UpdateBookingStatus flips a booking between paid and unpaid.
func (h *ParkingAdminHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req bookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	var booking models.Booking
	err = h.db.Preload("ParkingSpot").First(&booking, "id = ?", bookingID).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "booking not found")
	}
	if err != nil {
		return err
	}

	if booking.ParkingSpot == nil || booking.ParkingSpot.OwnerID != ownerID {
		return fiber.NewError(fiber.StatusForbidden, "you do not own this booking's parking spot")
	}

	if err := h.db.Model(&booking).Update("payment_status", req.PaymentStatus).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "booking status updated", "payment_status": req.PaymentStatus})
}

func (h *ParkingAdminHandler) ownedSpot(param string, ownerID uuid.UUID, withChildren bool) (*models.ParkingSpot, error) {
	spotID, err := uuid.Parse(param)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query := h.db.Where("is_archived = ?", false)
	if withChildren {
		query = query.
			Preload("Availabilities").
			Preload("Features").
			Preload("VehiclesCapacity").
			Preload("Reviews")
	}

	var spot models.ParkingSpot
	err = query.First(&spot, "id = ?", spotID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fiber.NewError(fiber.StatusNotFound, "parking spot not found")
	}
	if err != nil {
		return nil, err
	}

	if spot.OwnerID != ownerID {
		return nil, fiber.NewError(fiber.StatusForbidden, "you do not own this parking spot")
	}

	return &spot, nil
}

// deleteChild removes one child row of a spot after checking that the spot
// belongs to the caller.
func (h *ParkingAdminHandler) deleteChild(c *fiber.Ctx, model interface{}) error {
	ownerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	childID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var spotID uuid.UUID
	err = h.db.Model(model).
		Select("parking_spot_id").
		Where("id = ?", childID).
		Scan(&spotID).Error
	if err != nil {
		return err
	}
	if spotID == uuid.Nil {
		return fiber.NewError(fiber.StatusNotFound, "record not found")
	}

	if _, err := h.ownedSpot(spotID.String(), ownerID, false); err != nil {
		return err
	}

	if err := h.db.Where("id = ?", childID).Delete(model).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "deleted"})
}

func validateSpotChildren(req parkingSpotRequest) map[string]string {
	days := map[string]bool{}
	for _, a := range req.Availabilities {
		if days[a.Day] {
			return map[string]string{"availabilities": "duplicate day " + a.Day}
		}
		days[a.Day] = true
	}
	return nil
}

func createSpotChildren(tx *gorm.DB, spotID uuid.UUID, req parkingSpotRequest) error {
	for _, a := range req.Availabilities {
		row := models.ParkingSpotAvailability{
			ParkingSpotID: spotID,
			Day:           a.Day,
			StartTime:     a.StartTime,
			EndTime:       a.EndTime,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for _, f := range req.Features {
		row := models.ParkingSpotFeature{ParkingSpotID: spotID, Feature: f.Feature}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for _, v := range req.VehiclesCapacity {
		row := models.ParkingSpotVehicleCapacity{
			ParkingSpotID: spotID,
			VehicleType:   v.VehicleType,
			Capacity:      v.Capacity,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}
