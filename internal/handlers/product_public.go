package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

const maxSearchSuggestions = 10

// ProductPublicHandler serves the buyer-facing catalogue. Listing queries
// and detail views feed the recommender via search and click logs.
type ProductPublicHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewProductPublicHandler constructs ProductPublicHandler.
func NewProductPublicHandler(db *gorm.DB, logger *logrus.Logger) *ProductPublicHandler {
	return &ProductPublicHandler{db: db, logger: logger}
}

// ListProducts returns active products. Every non-empty search query is
// logged to the search table.
func (h *ProductPublicHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).
		Where("is_active = ? AND is_archived = ?", true, false)

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}
	if v := c.Query("farmer_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("farmer_id = ?", id)
		}
	}
	if v := c.Query("min_price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price >= ?", price)
		}
	}
	if v := c.Query("max_price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price <= ?", price)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", q, q)
		// Best effort: a failed log line must not fail the listing.
		if err := h.db.Create(&models.ProductSearch{Query: search}).Error; err != nil {
			h.logger.WithError(err).Warn("failed to log product search")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Preload("Images").
		Preload("Reviews").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(products))
	for i := range products {
		payload = append(payload, productPayload(&products[i]))
	}

	return c.JSON(fiber.Map{
		"data": payload,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns one active product and logs a click against it. The
// click carries the user ID when the request is authenticated.
func (h *ProductPublicHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	err = h.db.
		Preload("Category").
		Preload("Images").
		Preload("Reviews").
		Preload("Farmer").
		First(&product, "id = ? AND is_active = ? AND is_archived = ?", productID, true, false).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}

	click := models.ProductClick{ProductID: product.ID}
	if userID, ok := middleware.GetCurrentUserID(c); ok {
		click.UserID = &userID
	}
	if err := h.db.Create(&click).Error; err != nil {
		h.logger.WithError(err).Warn("failed to log product click")
	}

	return c.JSON(fiber.Map{"data": productPayload(&product)})
}

type productReviewRequest struct {
	Product       string `json:"product" validate:"required,uuid"`
	Rating        int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewMessage string `json:"review_message"`
}

// CreateReview records an authenticated buyer's product review.
func (h *ProductPublicHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req productReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	productID, err := uuid.Parse(req.Product)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	err = h.db.First(&product, "id = ? AND is_active = ? AND is_archived = ?", productID, true, false).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}

	review := models.ProductReview{
		ProductID:     productID,
		CreatedByID:   userID,
		Rating:        req.Rating,
		ReviewMessage: req.ReviewMessage,
	}
	if err := h.db.Create(&review).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "review created", "id": review.ID})
}

// ListCategories returns all product categories.
func (h *ProductPublicHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.ProductCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

// SearchSuggestions returns up to 10 distinct lowercase product names
// matching the query.
func (h *ProductPublicHandler) SearchSuggestions(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	if search == "" {
		return c.JSON(fiber.Map{"suggestions": []string{}})
	}

	var names []string
	if err := h.db.Model(&models.Product{}).
		Where("is_active = ? AND is_archived = ? AND name ILIKE ?", true, false, "%"+search+"%").
		Order("name asc").
		Pluck("name", &names).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"suggestions": dedupeSuggestions(names)})
}

// dedupeSuggestions lowercases names, drops duplicates and caps the list
// at the suggestion limit, preserving the incoming order.
func dedupeSuggestions(names []string) []string {
	seen := map[string]bool{}
	suggestions := make([]string, 0, maxSearchSuggestions)
	for _, name := range names {
		lowered := strings.ToLower(name)
		if seen[lowered] {
			continue
		}
		seen[lowered] = true
		suggestions = append(suggestions, lowered)
		if len(suggestions) == maxSearchSuggestions {
			break
		}
	}
	return suggestions
}

func productPayload(product *models.Product) fiber.Map {
	return fiber.Map{
		"id":             product.ID,
		"farmer_id":      product.FarmerID,
		"category":       product.Category,
		"name":           product.Name,
		"description":    product.Description,
		"price":          product.Price,
		"offer_price":    product.OfferPrice,
		"stock_quantity": product.StockQuantity,
		"unit":           product.Unit,
		"featured_image": product.FeaturedImage,
		"images":         product.Images,
		"reviews":        product.Reviews,
		"total_reviews":  len(product.Reviews),
		"average_rating": product.AverageRating(),
	}
}
