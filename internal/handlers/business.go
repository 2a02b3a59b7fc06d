package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

// BusinessHandler manages farmer business profiles and KYC submissions.
type BusinessHandler struct {
	db *gorm.DB
}

// NewBusinessHandler constructs BusinessHandler.
func NewBusinessHandler(db *gorm.DB) *BusinessHandler {
	return &BusinessHandler{db: db}
}

type businessInfoRequest struct {
	CategoryID   string  `json:"category_id" validate:"required,uuid"`
	BusinessName string  `json:"business_name" validate:"required"`
	Description  string  `json:"description"`
	Story        string  `json:"story"`
	Logo         string  `json:"logo"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ContactEmail string  `json:"contact_email" validate:"omitempty,email"`
	ContactNo    string  `json:"contact_no"`
}

// CreateInfo creates the caller's business profile. One per farmer.
func (h *BusinessHandler) CreateInfo(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req businessInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	var count int64
	h.db.Model(&models.BusinessInfo{}).Where("farmer_id = ?", farmerID).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "business info already exists for this account")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
	}

	var category models.BusinessCategory
	if err := h.db.First(&category, "id = ?", categoryID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unknown business category")
	}

	info := models.BusinessInfo{
		FarmerID:     farmerID,
		CategoryID:   categoryID,
		BusinessName: req.BusinessName,
		Description:  req.Description,
		Story:        req.Story,
		Logo:         req.Logo,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ContactEmail: req.ContactEmail,
		ContactNo:    req.ContactNo,
	}
	if err := h.db.Create(&info).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "business info created", "id": info.ID})
}

// UpdateInfo updates the caller's own business profile.
func (h *BusinessHandler) UpdateInfo(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req businessInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	var info models.BusinessInfo
	err := h.db.Where("farmer_id = ?", farmerID).First(&info).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "business info not found")
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"business_name": req.BusinessName,
		"description":   req.Description,
		"story":         req.Story,
		"logo":          req.Logo,
		"latitude":      req.Latitude,
		"longitude":     req.Longitude,
		"contact_email": req.ContactEmail,
		"contact_no":    req.ContactNo,
	}
	if categoryID, err := uuid.Parse(req.CategoryID); err == nil {
		updates["category_id"] = categoryID
	}

	if err := h.db.Model(&info).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "business info updated"})
}

// GetOwnInfo returns the caller's business profile with documents.
func (h *BusinessHandler) GetOwnInfo(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var info models.BusinessInfo
	err := h.db.Preload("Category").Preload("Documents").
		Where("farmer_id = ?", farmerID).First(&info).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "business info not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": info})
}

// GetInfoByFarmer returns a farmer's public business profile.
func (h *BusinessHandler) GetInfoByFarmer(c *fiber.Ctx) error {
	farmerID, err := uuid.Parse(c.Params("farmerID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var info models.BusinessInfo
	err = h.db.Preload("Category").
		Where("farmer_id = ? AND is_active = ? AND is_archived = ?", farmerID, true, false).
		First(&info).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "business info not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": info})
}

// ListCategories returns all business categories.
func (h *BusinessHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.BusinessCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

type kycRequest struct {
	RegistrationCertificate string `json:"registration_certificate" validate:"required"`
	TaxCertificate          string `json:"tax_certificate" validate:"required"`
	OwnerID                 string `json:"owner_id" validate:"required"`
	AddressProof            string `json:"address_proof" validate:"required"`
}

// SubmitKYC records the caller's business documents. A second submission
// for the same business is rejected.
func (h *BusinessHandler) SubmitKYC(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req kycRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	var info models.BusinessInfo
	err := h.db.Where("farmer_id = ?", farmerID).First(&info).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusBadRequest, "create business info before submitting KYC")
	}
	if err != nil {
		return err
	}

	var count int64
	h.db.Model(&models.BusinessDocuments{}).Where("business_id = ?", info.ID).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "KYC already submitted")
	}

	documents := models.BusinessDocuments{
		BusinessID:              info.ID,
		RegistrationCertificate: req.RegistrationCertificate,
		TaxCertificate:          req.TaxCertificate,
		OwnerID:                 req.OwnerID,
		AddressProof:            req.AddressProof,
	}
	if err := h.db.Create(&documents).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "KYC submitted", "id": documents.ID})
}
