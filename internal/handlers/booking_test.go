package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/config"
	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

const testJWTSecret = "test-secret"

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.ParkingSpot{},
		&models.ParkingSpotAvailability{},
		&models.ParkingSpotFeature{},
		&models.ParkingSpotVehicleCapacity{},
		&models.ParkingSpotReview{},
		&models.Booking{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       testJWTSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func bearerFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	pair, err := utils.GenerateTokenPair(testJWTSecret, userID, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return "Bearer " + pair.Access
}

func newBookingApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	handler := NewBookingHandler(db)
	app.Post("/bookings", middleware.AuthMiddleware(testConfig()), handler.Create)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, bearer string, payload interface{}) (*http.Response, fiber.Map) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed fiber.Map
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func createBookingFixtures(t *testing.T, db *gorm.DB) (*models.User, *models.ParkingSpot) {
	t.Helper()

	user := models.User{Username: "driver-1", Email: "d1@example.com", PhoneNo: "07000000001"}
	require.NoError(t, db.Create(&user).Error)

	spot := models.ParkingSpot{
		OwnerID:     uuid.New(),
		Name:        "Central Car Park",
		Address:     "1 High Street",
		Postcode:    "AB1 2CD",
		RatePerHour: 10,
		RatePerDay:  100,
	}
	require.NoError(t, db.Create(&spot).Error)

	return &user, &spot
}

func TestCreateBooking(t *testing.T) {
	t.Run("creates an unpaid booking with the computed amount", func(t *testing.T) {
		db := setupHandlerDB(t)
		app := newBookingApp(db)
		user, spot := createBookingFixtures(t, db)

		start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		end := start.Add(30 * time.Hour)
		amount := utils.ComputeBookingAmount(spot.RatePerHour, spot.RatePerDay, start, end)

		resp, body := postJSON(t, app, "/bookings", bearerFor(t, user.ID), fiber.Map{
			"parking_spot": spot.ID.String(),
			"start_time":   start.Format(time.RFC3339),
			"end_time":     end.Format(time.RFC3339),
			"amount":       amount,
			"vehicle_no":   "AB12 CDE",
			"vehicle":      "SUV",
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "unpaid", body["payment_status"])
		assert.Regexp(t, fmt.Sprintf(`^BOOK-\d{8}-%s-[A-F0-9]{5}$`, spot.ID), body["booking_no"])

		var booking models.Booking
		require.NoError(t, db.First(&booking, "user_id = ?", user.ID).Error)
		assert.Equal(t, amount, booking.Amount)
		assert.Equal(t, models.BookingStatusUnpaid, booking.PaymentStatus)
	})

	t.Run("amount mismatch names the correct amount", func(t *testing.T) {
		db := setupHandlerDB(t)
		app := newBookingApp(db)
		user, spot := createBookingFixtures(t, db)

		start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		end := start.Add(30 * time.Hour)
		correct := utils.ComputeBookingAmount(spot.RatePerHour, spot.RatePerDay, start, end)

		resp, body := postJSON(t, app, "/bookings", bearerFor(t, user.ID), fiber.Map{
			"parking_spot": spot.ID.String(),
			"start_time":   start.Format(time.RFC3339),
			"end_time":     end.Format(time.RFC3339),
			"amount":       correct + 1,
			"vehicle_no":   "AB12 CDE",
			"vehicle":      "SUV",
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["message"], fmt.Sprintf("%.2f", correct))
	})

	t.Run("start time in the past is rejected", func(t *testing.T) {
		db := setupHandlerDB(t)
		app := newBookingApp(db)
		user, spot := createBookingFixtures(t, db)

		start := time.Now().Add(-time.Hour)
		resp, body := postJSON(t, app, "/bookings", bearerFor(t, user.ID), fiber.Map{
			"parking_spot": spot.ID.String(),
			"start_time":   start.Format(time.RFC3339),
			"end_time":     start.Add(2 * time.Hour).Format(time.RFC3339),
			"amount":       20,
			"vehicle_no":   "AB12 CDE",
			"vehicle":      "SUV",
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["message"], "future")
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		db := setupHandlerDB(t)
		app := newBookingApp(db)
		user, spot := createBookingFixtures(t, db)

		start := time.Now().Add(4 * time.Hour)
		resp, body := postJSON(t, app, "/bookings", bearerFor(t, user.ID), fiber.Map{
			"parking_spot": spot.ID.String(),
			"start_time":   start.Format(time.RFC3339),
			"end_time":     start.Add(-time.Hour).Format(time.RFC3339),
			"amount":       20,
			"vehicle_no":   "AB12 CDE",
			"vehicle":      "SUV",
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["message"], "after start")
	})

	t.Run("archived spot cannot be booked", func(t *testing.T) {
		db := setupHandlerDB(t)
		app := newBookingApp(db)
		user, spot := createBookingFixtures(t, db)

		require.NoError(t, db.Model(spot).Update("is_archived", true).Error)

		start := time.Now().Add(2 * time.Hour)
		resp, _ := postJSON(t, app, "/bookings", bearerFor(t, user.ID), fiber.Map{
			"parking_spot": spot.ID.String(),
			"start_time":   start.Format(time.RFC3339),
			"end_time":     start.Add(2 * time.Hour).Format(time.RFC3339),
			"amount":       20,
			"vehicle_no":   "AB12 CDE",
			"vehicle":      "SUV",
		})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing bearer token is unauthorized", func(t *testing.T) {
		db := setupHandlerDB(t)
		app := newBookingApp(db)

		resp, _ := postJSON(t, app, "/bookings", "", fiber.Map{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
