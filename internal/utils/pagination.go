package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/dana-ai-api/internal/constants"
)

// PageParams selects one page of a conversation's messages.
type PageParams struct {
	Page   int
	Limit  int
	Offset int
}

// PageInfo is the pagination block returned next to a page of messages.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ParsePageParams reads page and limit from the query string. Missing or
// unparsable values fall back to the first page of DefaultPageSize items and
// a limit above MaxPageSize is clamped to it.
func ParsePageParams(c *gin.Context) PageParams {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	limit := queryInt(c, "limit", constants.DefaultPageSize)
	switch {
	case limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}

	return PageParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPageInfo describes params within a result set of total items.
func NewPageInfo(params PageParams, total int64) PageInfo {
	info := PageInfo{Page: params.Page, Limit: params.Limit, Total: total}
	if params.Limit > 0 {
		info.TotalPages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return info
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
