package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/services"
	"github.com/example/parkbay/internal/utils"
)

// ProductAdminHandler manages a farmer's product listings.
type ProductAdminHandler struct {
	db          *gorm.DB
	description *services.DescriptionService
}

// NewProductAdminHandler constructs ProductAdminHandler.
func NewProductAdminHandler(db *gorm.DB, description *services.DescriptionService) *ProductAdminHandler {
	return &ProductAdminHandler{db: db, description: description}
}

type productRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	CategoryID    string   `json:"category_id" validate:"omitempty,uuid"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	OfferPrice    float64  `json:"offer_price" validate:"gte=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	Unit          string   `json:"unit" validate:"omitempty,oneof=kg piece litre dozen pack"`
	FeaturedImage string   `json:"featured_image"`
	Images        []string `json:"images"`
}

// ListProducts returns the farmer's own products with filters.
func (h *ProductAdminHandler) ListProducts(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).
		Where("farmer_id = ? AND is_archived = ?", farmerID, false)

	if v := c.Query("is_active"); v == "true" || v == "false" {
		query = query.Where("is_active = ?", v == "true")
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Preload("Images").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// CreateProduct persists a product with its gallery images in one
// transaction.
func (h *ProductAdminHandler) CreateProduct(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	product := models.Product{
		FarmerID:      farmerID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OfferPrice:    req.OfferPrice,
		StockQuantity: req.StockQuantity,
		FeaturedImage: req.FeaturedImage,
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if req.CategoryID != "" {
		id, _ := uuid.Parse(req.CategoryID)
		product.CategoryID = &id
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for _, image := range req.Images {
			row := models.ProductImage{ProductID: product.ID, Image: image}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "product created", "id": product.ID})
}

// UpdateProduct applies a full update to one of the farmer's products.
func (h *ProductAdminHandler) UpdateProduct(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	product, err := h.ownedProduct(c.Params("id"), farmerID)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	updates := map[string]interface{}{
		"name":           req.Name,
		"description":    req.Description,
		"price":          req.Price,
		"offer_price":    req.OfferPrice,
		"stock_quantity": req.StockQuantity,
		"featured_image": req.FeaturedImage,
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.CategoryID != "" {
		if id, err := uuid.Parse(req.CategoryID); err == nil {
			updates["category_id"] = id
		}
	}

	if err := h.db.Model(product).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "product updated"})
}

// DeleteProduct soft-archives one of the farmer's products.
func (h *ProductAdminHandler) DeleteProduct(c *fiber.Ctx) error {
	farmerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	product, err := h.ownedProduct(c.Params("id"), farmerID)
	if err != nil {
		return err
	}

	if err := h.db.Model(product).
		Updates(map[string]interface{}{"is_archived": true, "is_active": false}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "product deleted"})
}

// ListCategories returns all product categories.
func (h *ProductAdminHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.ProductCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

type descriptionRequest struct {
	Name     string   `json:"name" validate:"required"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// GenerateDescription drafts a product description with the Gemini client.
// A provider failure is surfaced as a single error object.
func (h *ProductAdminHandler) GenerateDescription(c *fiber.Ctx) error {
	if _, ok := middleware.GetCurrentUserID(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req descriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	description, err := h.description.Generate(c.Context(), req.Name, req.Category, req.Keywords)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not generate a description, please try again",
		})
	}

	return c.JSON(fiber.Map{"description": description})
}

func (h *ProductAdminHandler) ownedProduct(param string, farmerID uuid.UUID) (*models.Product, error) {
	productID, err := uuid.Parse(param)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	err = h.db.First(&product, "id = ? AND is_archived = ?", productID, false).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}

	if product.FarmerID != farmerID {
		return nil, fiber.NewError(fiber.StatusForbidden, "you do not own this product")
	}

	return &product, nil
}
