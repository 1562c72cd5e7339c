package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// GetPaginationParams extracts pagination parameters from the request.
// Missing, non-numeric or non-positive values fall back to the defaults and
// limit is capped at MaxPageSize. page is capped so the offset cannot overflow.
func GetPaginationParams(c *gin.Context) PaginationParams {
	return NewPaginationParams(c.Query("page"), c.Query("limit"))
}

// NewPaginationParams parses raw page and limit values.
func NewPaginationParams(rawPage, rawLimit string) PaginationParams {
	page := parsePositive(rawPage, constants.DefaultPage)
	limit := parsePositive(rawLimit, constants.DefaultPageSize)
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// parsePositive reads a leading integer ("12abc" is 12) and falls back when
// there is none or it is below MinPageSize.
func parsePositive(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && (raw[end] == '-' || raw[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n < constants.MinPageSize {
		return fallback
	}
	return n
}
