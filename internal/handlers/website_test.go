package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
)

func setupWebsiteApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&models.Feedback{}, &models.NewsletterSubscriber{}))

	handler := NewWebsiteHandler(db)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/feedback", handler.CreateFeedback)
	app.Get("/feedback", handler.ListFeedback)
	app.Post("/newsletter/subscribe", handler.Subscribe)

	return app, db
}

func TestCreateFeedback(t *testing.T) {
	t.Run("valid feedback is stored active", func(t *testing.T) {
		app, db := setupWebsiteApp(t)

		resp, _ := postJSON(t, app, "/feedback", "", fiber.Map{
			"full_name": "Jamie Reed",
			"email":     "jamie@example.com",
			"rating":    4,
			"message":   "Found a spot in minutes.",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var row models.Feedback
		require.NoError(t, db.First(&row).Error)
		assert.True(t, row.IsActive)
		assert.Equal(t, 4, row.Rating)
	})

	t.Run("rating above five is rejected", func(t *testing.T) {
		app, _ := setupWebsiteApp(t)

		resp, body := postJSON(t, app, "/feedback", "", fiber.Map{
			"full_name": "Jamie Reed",
			"email":     "jamie@example.com",
			"rating":    6,
			"message":   "!",
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errs, ok := body["errors"].(map[string]interface{})
		require.True(t, ok, "field errors expected")
		assert.Contains(t, errs, "rating")
	})

	t.Run("rating zero is rejected", func(t *testing.T) {
		app, _ := setupWebsiteApp(t)

		resp, _ := postJSON(t, app, "/feedback", "", fiber.Map{
			"full_name": "Jamie Reed",
			"email":     "jamie@example.com",
			"rating":    0,
			"message":   "!",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestNewsletterSubscribe(t *testing.T) {
	app, _ := setupWebsiteApp(t)

	resp, _ := postJSON(t, app, "/newsletter/subscribe", "", fiber.Map{"email": "news@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, app, "/newsletter/subscribe", "", fiber.Map{"email": "news@example.com"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "already subscribed")
}
