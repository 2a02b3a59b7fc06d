package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/example/parkbay/internal/models"
)

func spotWith(name string, features []string, capacities map[string]int) models.ParkingSpot {
	spot := models.ParkingSpot{Name: name}
	spot.ID = uuid.New()
	for _, f := range features {
		spot.Features = append(spot.Features, models.ParkingSpotFeature{Feature: f})
	}
	for vehicleType, capacity := range capacities {
		spot.VehiclesCapacity = append(spot.VehiclesCapacity, models.ParkingSpotVehicleCapacity{
			VehicleType: vehicleType,
			Capacity:    capacity,
		})
	}
	return spot
}

func names(spots []models.ParkingSpot) []string {
	out := make([]string, 0, len(spots))
	for _, s := range spots {
		out = append(out, s.Name)
	}
	return out
}

func TestFilterByFeature(t *testing.T) {
	spots := []models.ParkingSpot{
		spotWith("a", []string{"CCTV", "COVERED"}, nil),
		spotWith("b", []string{"CCTV"}, nil),
		spotWith("c", []string{"COVERED"}, nil),
	}

	t.Run("single feature", func(t *testing.T) {
		filtered := filterByFeature(append([]models.ParkingSpot{}, spots...), "CCTV")
		assert.ElementsMatch(t, []string{"a", "b"}, names(filtered))
	})

	t.Run("iterative filters require every feature", func(t *testing.T) {
		filtered := append([]models.ParkingSpot{}, spots...)
		for _, f := range []string{"CCTV", "COVERED"} {
			filtered = filterByFeature(filtered, f)
		}
		assert.Equal(t, []string{"a"}, names(filtered))
	})

	t.Run("unmatched feature empties the list", func(t *testing.T) {
		filtered := filterByFeature(append([]models.ParkingSpot{}, spots...), "GUARDS")
		assert.Empty(t, filtered)
	})
}

func TestFilterByVehicleType(t *testing.T) {
	spots := []models.ParkingSpot{
		spotWith("a", nil, map[string]int{"SUV": 2, "BIKE": 1}),
		spotWith("b", nil, map[string]int{"SUV": 0}),
		spotWith("c", nil, map[string]int{"BIKE": 3}),
	}

	t.Run("zero capacity does not count", func(t *testing.T) {
		filtered := filterByVehicleType(append([]models.ParkingSpot{}, spots...), "SUV")
		assert.Equal(t, []string{"a"}, names(filtered))
	})

	t.Run("every requested type must fit", func(t *testing.T) {
		filtered := append([]models.ParkingSpot{}, spots...)
		for _, v := range []string{"SUV", "BIKE"} {
			filtered = filterByVehicleType(filtered, v)
		}
		assert.Equal(t, []string{"a"}, names(filtered))
	})
}

func TestSplitCSVUpper(t *testing.T) {
	assert.Equal(t, []string{"CCTV", "COVERED"}, splitCSVUpper("cctv, covered"))
	assert.Equal(t, []string{"SUV"}, splitCSVUpper(" suv ,, "))
	assert.Empty(t, splitCSVUpper(""))
}

func TestSpotPayloadRatings(t *testing.T) {
	spot := spotWith("a", nil, nil)
	spot.Reviews = []models.ParkingSpotReview{
		{Rating: 5},
		{Rating: 2},
	}

	payload := spotPayload(&spot)

	assert.Equal(t, 2, payload["total_reviews"])
	assert.InDelta(t, 3.5, payload["average_rating"], 1e-9)
}
