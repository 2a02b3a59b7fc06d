package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// BlogHandler serves published posts and authenticated post creation.
type BlogHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(db *gorm.DB, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{db: db, logger: logger}
}

// ListPosts returns published posts with their authors.
func (h *BlogHandler) ListPosts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Post{}).
		Where("status = ? AND is_active = ? AND is_archived = ?", models.PostStatusPublished, true, false)

	if category := c.Query("category"); category != "" {
		query = query.
			Joins("JOIN post_post_categories ppc ON ppc.post_id = posts.id").
			Joins("JOIN post_categories pc ON pc.id = ppc.post_category_id").
			Where("pc.name = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var posts []models.Post
	if err := query.
		Preload("Author").
		Preload("Categories").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("published_at desc").
		Find(&posts).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": posts,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetPost returns one published post by slug.
func (h *BlogHandler) GetPost(c *fiber.Ctx) error {
	var post models.Post
	err := h.db.
		Preload("Author").
		Preload("Categories").
		Where("slug = ? AND status = ? AND is_active = ? AND is_archived = ?",
			c.Params("slug"), models.PostStatusPublished, true, false).
		First(&post).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "post not found")
	}
	if err != nil {
		return err
	}

	// Best effort: a failed counter bump must not fail the read.
	if err := h.db.Model(&post).Update("views", gorm.Expr("views + 1")).Error; err != nil {
		h.logger.WithError(err).Warn("failed to increment post views")
	}

	return c.JSON(fiber.Map{"data": post})
}

type postRequest struct {
	Title      string   `json:"title" validate:"required"`
	CoverImage string   `json:"cover_image"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content" validate:"required"`
	Format     string   `json:"format"`
	Status     string   `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories" validate:"dive,uuid"`
}

// CreatePost creates a post for the authenticated user, slugifying the
// title and enforcing the public tag and category limits.
func (h *BlogHandler) CreatePost(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
	}

	if len(req.Tags) > models.MaxPublicPostTags {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("a post can carry at most %d tags", models.MaxPublicPostTags))
	}
	if len(req.Categories) > models.MaxPublicPostCategories {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("a post can carry at most %d categories", models.MaxPublicPostCategories))
	}

	var categories []models.PostCategory
	for _, raw := range req.Categories {
		id, _ := uuid.Parse(raw)
		var category models.PostCategory
		if err := h.db.First(&category, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unknown post category")
		}
		categories = append(categories, category)
	}

	status := req.Status
	if status == "" {
		status = models.PostStatusDraft
	}

	post := models.Post{
		AuthorID:   userID,
		Title:      req.Title,
		Slug:       slugify(req.Title),
		CoverImage: req.CoverImage,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		Format:     req.Format,
		Status:     status,
		ReadTime:   estimateReadTime(req.Content),
		Tags:       pq.StringArray(req.Tags),
		Categories: categories,
	}
	if status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := h.db.Create(&post).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "post created",
		"id":      post.ID,
		"slug":    post.Slug,
	})
}

// slugify lowercases the title, replaces runs of non-alphanumerics with
// hyphens and appends a short random suffix to keep slugs unique.
func slugify(title string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	suffix := strings.ToLower(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

// estimateReadTime assumes 200 words per minute, minimum one minute.
func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}
