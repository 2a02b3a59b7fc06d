package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ComputeBookingAmount prices a half-open [start, end) window. Stays up to
// 24 hours are billed hourly; longer stays pay the daily rate per full day
// plus the hourly rate on any remainder. Result is rounded to 2 decimals.
func ComputeBookingAmount(ratePerHour, ratePerDay float64, start, end time.Time) float64 {
	hours := end.Sub(start).Seconds() / 3600

	var amount float64
	if hours <= 24 {
		amount = ratePerHour * hours
	} else {
		days := math.Floor(hours / 24)
		remainder := hours - days*24
		amount = ratePerDay * days
		if remainder > 0 {
			amount += ratePerHour * remainder
		}
	}

	return math.Round(amount*100) / 100
}

// GenerateBookingNo builds a unique booking number.
// Format: BOOK-<YYYYMMDD>-<PARKING_SPOT_ID>-<RANDOM>
// Example: BOOK-20241225-42-8F2A6
func GenerateBookingNo(parkingSpotID string, at time.Time) string {
	datePart := at.Format("20060102")
	randomPart := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:5])
	return fmt.Sprintf("BOOK-%s-%s-%s", datePart, parkingSpotID, randomPart)
}
