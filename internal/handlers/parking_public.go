package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

// ParkingPublicHandler serves the driver-facing spot listing and reviews.
type ParkingPublicHandler struct {
	db *gorm.DB
}

// NewParkingPublicHandler constructs ParkingPublicHandler.
func NewParkingPublicHandler(db *gorm.DB) *ParkingPublicHandler {
	return &ParkingPublicHandler{db: db}
}

// ListSpots returns active spots through the public filter pipeline:
// free-text match on name/address/postcode, then vehicle-type and feature
// filters where a spot must satisfy ALL requested values.
func (h *ParkingPublicHandler) ListSpots(c *fiber.Ctx) error {
	query := h.db.Model(&models.ParkingSpot{}).
		Where("is_active = ? AND is_archived = ?", true, false)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ? OR postcode ILIKE ?", q, q, q)
	}

	switch c.Query("order_by") {
	case "rate":
		query = query.Order("rate_per_hour asc")
	case "distance":
		// Distance ordering needs a reference point; falls back to name
		// until geo search ships.
		query = query.Order("name asc")
	default:
		query = query.Order("name asc")
	}

	var spots []models.ParkingSpot
	if err := query.
		Preload("Availabilities").
		Preload("Features").
		Preload("VehiclesCapacity").
		Preload("Reviews").
		Find(&spots).Error; err != nil {
		return err
	}

	if v := strings.TrimSpace(c.Query("vehicle_types")); v != "" {
		for _, vehicleType := range splitCSVUpper(v) {
			spots = filterByVehicleType(spots, vehicleType)
		}
	}

	if v := strings.TrimSpace(c.Query("features")); v != "" {
		for _, feature := range splitCSVUpper(v) {
			spots = filterByFeature(spots, feature)
		}
	}

	payload := make([]fiber.Map, 0, len(spots))
	for i := range spots {
		payload = append(payload, spotPayload(&spots[i]))
	}

	return c.JSON(fiber.Map{"data": payload, "total": len(payload)})
}

// GetSpot returns one active spot with children and reviews.
func (h *ParkingPublicHandler) GetSpot(c *fiber.Ctx) error {
	spotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var spot models.ParkingSpot
	err = h.db.
		Preload("Availabilities").
		Preload("Features").
		Preload("VehiclesCapacity").
		Preload("Reviews").
		Preload("Reviews.Reviewer").
		First(&spot, "id = ? AND is_active = ? AND is_archived = ?", spotID, true, false).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "parking spot not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": spotPayload(&spot)})
}

type spotReviewRequest struct {
	ParkingSpot string `json:"parking_spot" validate:"required,uuid"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comments    string `json:"comments"`
}

// CreateReview records an authenticated driver's review of a spot.
func (h *ParkingPublicHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req spotReviewRequest
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
		return fiber.NewError(fiber.StatusNotFound, "parking spot not found")
	}
	if err != nil {
		return err
	}

	review := models.ParkingSpotReview{
		ParkingSpotID: spotID,
		ReviewerID:    userID,
		Rating:        req.Rating,
		Comments:      req.Comments,
	}
	if err := h.db.Create(&review).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "review created", "id": review.ID})
}

// filterByVehicleType keeps spots with a positive capacity for the type.
func filterByVehicleType(spots []models.ParkingSpot, vehicleType string) []models.ParkingSpot {
	kept := spots[:0]
	for _, spot := range spots {
		for _, capacity := range spot.VehiclesCapacity {
			if capacity.VehicleType == vehicleType && capacity.Capacity > 0 {
				kept = append(kept, spot)
				break
			}
		}
	}
	return kept
}

// filterByFeature keeps spots advertising the feature.
func filterByFeature(spots []models.ParkingSpot, feature string) []models.ParkingSpot {
	kept := spots[:0]
	for _, spot := range spots {
		for _, f := range spot.Features {
			if f.Feature == feature {
				kept = append(kept, spot)
				break
			}
		}
	}
	return kept
}

func splitCSVUpper(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.ToUpper(strings.TrimSpace(p)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func spotPayload(spot *models.ParkingSpot) fiber.Map {
	var totalRating int
	for _, r := range spot.Reviews {
		totalRating += r.Rating
	}
	averageRating := 0.0
	if len(spot.Reviews) > 0 {
		averageRating = float64(totalRating) / float64(len(spot.Reviews))
	}

	return fiber.Map{
		"id":                spot.ID,
		"name":              spot.Name,
		"cover_image":       spot.CoverImage,
		"description":       spot.Description,
		"address":           spot.Address,
		"postcode":          spot.Postcode,
		"latitude":          spot.Latitude,
		"longitude":         spot.Longitude,
		"rate_per_hour":     spot.RatePerHour,
		"rate_per_day":      spot.RatePerDay,
		"availabilities":    spot.Availabilities,
		"features":          spot.Features,
		"vehicles_capacity": spot.VehiclesCapacity,
		"reviews":           spot.Reviews,
		"total_reviews":     len(spot.Reviews),
		"average_rating":    averageRating,
	}
}
