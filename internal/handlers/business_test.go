package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
)

func setupBusinessApp(t *testing.T) (*fiber.App, *gorm.DB, *models.BusinessCategory) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.BusinessCategory{},
		&models.BusinessInfo{},
		&models.BusinessDocuments{},
	))

	category := models.BusinessCategory{Name: "Produce"}
	require.NoError(t, db.Create(&category).Error)

	handler := NewBusinessHandler(db)
	auth := middleware.AuthMiddleware(testConfig())

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/business-info", auth, handler.CreateInfo)
	app.Post("/kyc", auth, handler.SubmitKYC)

	return app, db, &category
}

func createFarmer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	farmer := models.User{Username: "farmer-1", Email: "farmer@example.com", PhoneNo: "07000000002"}
	require.NoError(t, db.Create(&farmer).Error)
	return &farmer
}

func businessInfoPayload(categoryID string) fiber.Map {
	return fiber.Map{
		"category_id":   categoryID,
		"business_name": "Hilltop Farm",
		"description":   "Seasonal produce",
	}
}

func kycPayload() fiber.Map {
	return fiber.Map{
		"registration_certificate": "https://files.example.com/reg.pdf",
		"tax_certificate":          "https://files.example.com/tax.pdf",
		"owner_id":                 "https://files.example.com/id.pdf",
		"address_proof":            "https://files.example.com/address.pdf",
	}
}

func TestCreateBusinessInfo(t *testing.T) {
	t.Run("one profile per farmer", func(t *testing.T) {
		app, db, category := setupBusinessApp(t)
		farmer := createFarmer(t, db)
		bearer := bearerFor(t, farmer.ID)

		resp, _ := postJSON(t, app, "/business-info", bearer, businessInfoPayload(category.ID.String()))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := postJSON(t, app, "/business-info", bearer, businessInfoPayload(category.ID.String()))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["message"], "already exists")
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		app, db, _ := setupBusinessApp(t)
		farmer := createFarmer(t, db)

		resp, _ := postJSON(t, app, "/business-info", bearerFor(t, farmer.ID),
			businessInfoPayload("00000000-0000-0000-0000-000000000000"))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSubmitKYC(t *testing.T) {
	t.Run("second submission is rejected", func(t *testing.T) {
		app, db, category := setupBusinessApp(t)
		farmer := createFarmer(t, db)
		bearer := bearerFor(t, farmer.ID)

		resp, _ := postJSON(t, app, "/business-info", bearer, businessInfoPayload(category.ID.String()))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = postJSON(t, app, "/kyc", bearer, kycPayload())
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := postJSON(t, app, "/kyc", bearer, kycPayload())
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "KYC already submitted", body["message"])

		var count int64
		db.Model(&models.BusinessDocuments{}).Count(&count)
		assert.Equal(t, int64(1), count, "only the first submission is stored")
	})

	t.Run("requires a business profile first", func(t *testing.T) {
		app, db, _ := setupBusinessApp(t)
		farmer := createFarmer(t, db)

		resp, body := postJSON(t, app, "/kyc", bearerFor(t, farmer.ID), kycPayload())
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["message"], "business info")
	})
}
