package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/constants"
)

// PaginationParams holds the page window of a list request
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams reads page and page_size from the query. limit is
// accepted as an older name for page_size. Oversized pages are cut down to
// MaxPageSize rather than rejected.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	size := queryInt(c, "page_size", 0)
	if size == 0 {
		size = queryInt(c, "limit", constants.DefaultPageSize)
	}
	switch {
	case size < constants.MinPageSize:
		size = constants.DefaultPageSize
	case size > constants.MaxPageSize:
		size = constants.MaxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: size,
		Offset:   (page - 1) * size,
	}
}

// GetListLimit reads the limit of an unpaged list such as the notification
// feed, falling back to defaultLimit and capping at MaxPageSize.
func GetListLimit(c *gin.Context, defaultLimit int) int {
	limit := queryInt(c, "limit", defaultLimit)
	if limit < constants.MinPageSize {
		return defaultLimit
	}
	if limit > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return limit
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
