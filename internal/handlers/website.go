package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

// WebsiteHandler serves the public feedback and newsletter endpoints.
type WebsiteHandler struct {
	db *gorm.DB
}

// NewWebsiteHandler constructs WebsiteHandler.
func NewWebsiteHandler(db *gorm.DB) *WebsiteHandler {
	return &WebsiteHandler{db: db}
}

type feedbackRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Image    string `json:"image"`
	Role     string `json:"role"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Message  string `json:"message" validate:"required"`
}

// CreateFeedback records a testimonial. Ratings outside 1..5 are rejected.
func (h *WebsiteHandler) CreateFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	feedback := models.Feedback{
		FullName: req.FullName,
		Email:    req.Email,
		Image:    req.Image,
		Role:     req.Role,
		Rating:   req.Rating,
		Message:  req.Message,
		IsActive: true,
	}
	if err := h.db.Create(&feedback).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "feedback submitted", "id": feedback.ID})
}

// ListFeedback returns active testimonials.
func (h *WebsiteHandler) ListFeedback(c *fiber.Ctx) error {
	var rows []models.Feedback
	if err := h.db.Where("is_active = ?", true).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe adds an email to the newsletter list. Duplicates are rejected.
func (h *WebsiteHandler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	var count int64
	h.db.Model(&models.NewsletterSubscriber{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "this email is already subscribed")
	}

	subscriber := models.NewsletterSubscriber{Email: req.Email}
	if err := h.db.Create(&subscriber).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "subscribed successfully"})
}
