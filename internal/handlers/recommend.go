package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/services"
)

// RecommendHandler exposes the demand ranking and per-user suggestions.
type RecommendHandler struct {
	db          *gorm.DB
	recommender *services.Recommender
}

// NewRecommendHandler constructs RecommendHandler.
func NewRecommendHandler(db *gorm.DB, recommender *services.Recommender) *RecommendHandler {
	return &RecommendHandler{db: db, recommender: recommender}
}

// TopDemand returns products ranked by blended click/search demand.
func (h *RecommendHandler) TopDemand(c *fiber.Ctx) error {
	scores, err := h.recommender.DemandScores()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scores})
}

// ForUser returns products clicked by the caller's nearest neighbours.
func (h *RecommendHandler) ForUser(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	productIDs, err := h.recommender.RecommendForUser(userID)
	if err != nil {
		return err
	}

	if len(productIDs) == 0 {
		return c.JSON(fiber.Map{"data": []fiber.Map{}})
	}

	var products []models.Product
	if err := h.db.
		Preload("Category").
		Preload("Reviews").
		Where("id IN ? AND is_active = ? AND is_archived = ?", productIDs, true, false).
		Find(&products).Error; err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(products))
	for i := range products {
		payload = append(payload, productPayload(&products[i]))
	}

	return c.JSON(fiber.Map{"data": payload})
}
