package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Defaults for list endpoints; every paginated listing shares them.
const (
	defaultPage     = 1
	defaultPageSize = 20
)

// Pagination holds the parsed page window for a list request.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params, falling back to the
// defaults on missing or non-positive values.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := parseInt(c.Query("page"), defaultPage)
	limit := parseInt(c.Query("limit"), defaultPageSize)
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
