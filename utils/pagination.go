package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination holds parsed page/limit query parameters
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the current page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page/limit query parameters with the API-wide defaults
func ParsePagination(c *gin.Context) Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return Pagination{Page: page, Limit: limit}
}

// TotalPages computes the page count for a result set
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pages
}
