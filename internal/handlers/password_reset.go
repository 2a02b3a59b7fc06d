package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/config"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/services"
	"github.com/example/parkbay/internal/utils"
)

// PasswordResetHandler manages the forget-password flow.
type PasswordResetHandler struct {
	db           *gorm.DB
	cfg          *config.Config
	verification *services.VerificationService
}

// NewPasswordResetHandler constructs PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, verification *services.VerificationService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, verification: verification}
}

type resetRequestPayload struct {
	Email       string `json:"email" validate:"required,email"`
	RedirectURL string `json:"redirect_url" validate:"required"`
}

// RequestReset emails a password-reset link. The response does not reveal
// whether the address exists.
func (h *PasswordResetHandler) RequestReset(c *fiber.Ctx) error {
	var req resetRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	var user models.User
	err := h.db.Where("email = ? AND is_active = ? AND is_archived = ?", req.Email, true, false).
		First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return c.JSON(fiber.Map{"message": "if the account exists, a reset link has been sent"})
	}
	if err != nil {
		return err
	}

	if err := h.verification.IssueResetToken(&user, h.cfg.FrontendOrigin, req.RedirectURL); err != nil {
		if errors.Is(err, services.ErrEmailSend) {
			return fiber.NewError(fiber.StatusInternalServerError, "could not send reset email, please try again")
		}
		return err
	}

	return c.JSON(fiber.Map{"message": "if the account exists, a reset link has been sent"})
}

type resetPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=16"`
}

// Reset consumes a reset token and stores the new password.
func (h *PasswordResetHandler) Reset(c *fiber.Ctx) error {
	var req resetPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	if err := h.verification.ConsumeResetToken(req.Token, hash); err != nil {
		switch {
		case errors.Is(err, services.ErrLinkExpired):
			return fiber.NewError(fiber.StatusBadRequest, "reset link has expired, please request a new one")
		case errors.Is(err, services.ErrInvalidToken):
			return fiber.NewError(fiber.StatusBadRequest, "invalid reset link")
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{"message": "password updated successfully"})
}
