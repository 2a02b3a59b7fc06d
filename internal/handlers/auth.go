package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/config"
	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/services"
	"github.com/example/parkbay/internal/utils"
)

// AuthHandler manages signup, signin, verification and profile endpoints.
type AuthHandler struct {
	db           *gorm.DB
	cfg          *config.Config
	verification *services.VerificationService
	google       services.GoogleVerifier
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, verification *services.VerificationService, google services.GoogleVerifier) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, verification: verification, google: google}
}

type signupRequest struct {
	Email            string `json:"email" validate:"required,email"`
	PhoneNo          string `json:"phone_no" validate:"required"`
	Password         string `json:"password" validate:"required,min=8,max=16"`
	FirstName        string `json:"first_name" validate:"required"`
	MiddleName       string `json:"middle_name"`
	LastName         string `json:"last_name" validate:"required"`
	AccountType      string `json:"account_type" validate:"required,oneof=DRIVER OWNER FARMER"`
	HasAcceptedTerms bool   `json:"has_accepted_terms"`
	RedirectURL      string `json:"redirect_url" validate:"required"`
}

// Signup registers a credentials account and emails a verification link.
// The user row and the token row are committed together; a failed email
// send rolls both back.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	if !req.HasAcceptedTerms {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fiber.Map{"has_accepted_terms": "terms and conditions must be accepted"},
		})
	}

	var count int64
	h.db.Model(&models.User{}).
		Where("email = ? OR phone_no = ?", req.Email, req.PhoneNo).
		Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "an account with this email or phone number already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	var role models.UserRole
	if err := h.db.Where("codename = ?", req.AccountType).First(&role).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unknown account type")
	}

	user := models.User{
		Username:         utils.GenerateUsername(req.AccountType),
		Email:            req.Email,
		PhoneNo:          req.PhoneNo,
		FirstName:        req.FirstName,
		MiddleName:       req.MiddleName,
		LastName:         req.LastName,
		PasswordHash:     hash,
		AuthProvider:     models.AuthProviderCredentials,
		HasAcceptedTerms: true,
		Roles:            []models.UserRole{role},
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return h.verification.WithTx(tx).
			IssueAccountToken(&user, h.cfg.FrontendOrigin, req.RedirectURL)
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailSend) {
			return fiber.NewError(fiber.StatusInternalServerError, "could not send verification email, please try again")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "account created, please verify your email",
	})
}

type signinRequest struct {
	Persona     string `json:"persona" validate:"required"`
	Password    string `json:"password" validate:"required"`
	RedirectURL string `json:"redirect_url"`
}

// Signin authenticates by email or username. Unverified accounts get a
// fresh verification email instead of tokens.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req signinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	query := h.db.Preload("Roles")
	if strings.Contains(req.Persona, "@") {
		query = query.Where("email = ?", req.Persona)
	} else {
		query = query.Where("username = ?", req.Persona)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	if !user.IsActive || user.IsArchived {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	if !user.IsEmailVerified {
		redirect := req.RedirectURL
		if redirect == "" {
			redirect = "verify-account"
		}
		if err := h.verification.IssueAccountToken(&user, h.cfg.FrontendOrigin, redirect); err != nil {
			if errors.Is(err, services.ErrEmailSend) {
				return fiber.NewError(fiber.StatusInternalServerError, "could not send verification email, please try again")
			}
			return err
		}
		return c.JSON(fiber.Map{
			"status":  "verify_email",
			"message": "your email is not verified yet, a new verification link has been sent",
		})
	}

	pair, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	now := time.Now()
	h.db.Model(&user).Update("last_login", now)

	return c.JSON(fiber.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    profilePayload(&user),
	})
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// Verify consumes an account-verification token.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	if err := h.verification.ConsumeAccountToken(req.Token); err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyVerified):
			return fiber.NewError(fiber.StatusBadRequest, "account is already verified")
		case errors.Is(err, services.ErrLinkExpired):
			return fiber.NewError(fiber.StatusBadRequest, "verification link has expired, please request a new one")
		case errors.Is(err, services.ErrInvalidToken):
			return fiber.NewError(fiber.StatusBadRequest, "invalid verification link")
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{"message": "account verified successfully"})
}

type socialAuthRequest struct {
	Provider string `json:"provider" validate:"required,oneof=GOOGLE"`
	IDToken  string `json:"id_token" validate:"required"`
}

// SocialAuth exchanges a Google ID token for an app session, creating the
// account on first login. Social accounts skip email verification.
func (h *AuthHandler) SocialAuth(c *fiber.Ctx) error {
	var req socialAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	profile, err := h.google.VerifyIDToken(c.Context(), req.IDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not verify the provider token")
	}

	var user models.User
	err = h.db.Preload("Roles").Where("email = ?", profile.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		var role models.UserRole
		if err := h.db.Where("codename = ?", "DRIVER").First(&role).Error; err != nil {
			return err
		}
		user = models.User{
			Username:        utils.GenerateUsername("google"),
			Email:           profile.Email,
			PhoneNo:         utils.GenerateUsername("pending-phone"),
			FirstName:       profile.GivenName,
			LastName:        profile.FamilyName,
			Photo:           profile.Picture,
			AuthProvider:    models.AuthProviderGoogle,
			IsEmailVerified: true,
			Roles:           []models.UserRole{role},
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if !user.IsActive || user.IsArchived {
		return fiber.NewError(fiber.StatusBadRequest, "account is disabled")
	}

	pair, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	now := time.Now()
	h.db.Model(&user).Update("last_login", now)

	return c.JSON(fiber.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    profilePayload(&user),
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Logout validates the refresh token and ends the session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	if _, err := utils.ParseToken(h.cfg.JWTSecret, req.Refresh, utils.TokenKindRefresh); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refresh token")
	}

	return c.JSON(fiber.Map{"message": "logged out"})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	userID, err := utils.ParseToken(h.cfg.JWTSecret, req.Refresh, utils.TokenKindRefresh)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refresh token")
	}

	var user models.User
	if err := h.db.First(&user, "id = ? AND is_active = ? AND is_archived = ?", userID, true, false).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refresh token")
	}

	pair, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"access": pair.Access, "refresh": pair.Refresh})
}

// Profile returns the authenticated user's profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var user models.User
	if err := h.db.Preload("Roles").First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{"user": profilePayload(&user)})
}

type profileUpdateRequest struct {
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
	Bio        *string `json:"bio"`
	Photo      *string `json:"photo"`
	PhoneNo    *string `json:"phone_no"`
}

// UpdateProfile applies a partial update to the authenticated user.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.MiddleName != nil {
		updates["middle_name"] = *req.MiddleName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Photo != nil {
		updates["photo"] = *req.Photo
	}
	if req.PhoneNo != nil {
		updates["phone_no"] = *req.PhoneNo
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	var user models.User
	if err := h.db.Preload("Roles").First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "profile updated", "user": profilePayload(&user)})
}

func profilePayload(user *models.User) fiber.Map {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Codename)
	}

	return fiber.Map{
		"id":                user.ID,
		"username":          user.Username,
		"email":             user.Email,
		"phone_no":          user.PhoneNo,
		"full_name":         user.FullName(),
		"first_name":        user.FirstName,
		"middle_name":       user.MiddleName,
		"last_name":         user.LastName,
		"bio":               user.Bio,
		"photo":             user.Photo,
		"auth_provider":     user.AuthProvider,
		"is_email_verified": user.IsEmailVerified,
		"roles":             roles,
	}
}
