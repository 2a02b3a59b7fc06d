package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateUsername builds a unique-enough login name for website signups.
// Example: website_user-20241225-8471
func GenerateUsername(userType string) string {
	datePart := time.Now().Format("20060102")
	return fmt.Sprintf("%s-%s-%04d", strings.ToLower(userType), datePart, rand.Intn(10000))
}
