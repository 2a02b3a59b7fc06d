package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDedupeSuggestions(t *testing.T) {
	t.Run("lowercases and deduplicates case variants", func(t *testing.T) {
		names := []string{"Organic Carrots", "organic carrots", "ORGANIC CARROTS", "Apples"}

		suggestions := dedupeSuggestions(names)

		assert.Equal(t, []string{"organic carrots", "apples"}, suggestions)
	})

	t.Run("caps the list at ten entries", func(t *testing.T) {
		var names []string
		for i := 0; i < 15; i++ {
			names = append(names, fmt.Sprintf("Product %02d", i))
		}
		// Case-varying duplicates must not eat into the cap.
		names = append(names, "PRODUCT 00", "product 01")

		suggestions := dedupeSuggestions(names)

		require.Len(t, suggestions, maxSearchSuggestions)
		assert.Equal(t, "product 00", suggestions[0])
		assert.Equal(t, "product 09", suggestions[9])
	})

	t.Run("empty input yields an empty list", func(t *testing.T) {
		assert.Empty(t, dedupeSuggestions(nil))
	})
}

func TestListProductCategories(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&models.ProductCategory{}))

	for _, name := range []string{"Vegetables", "Fruit", "Dairy"} {
		require.NoError(t, db.Create(&models.ProductCategory{Name: name, Slug: name}).Error)
	}

	handler := NewProductPublicHandler(db, testLogger())
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/categories", handler.ListCategories)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Data []models.ProductCategory `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.Data, 3)
	assert.Equal(t, "Dairy", body.Data[0].Name, "categories come back name-ordered")
}
