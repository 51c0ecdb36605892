package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// listingParams is the typed pagination/filter set shared by the admin
// listing endpoints. `status` keeps the raw value; "all" means no filter.
type listingParams struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// parseListingParams reads page/limit/search/status from the query string.
func parseListingParams(c *gin.Context) listingParams {
	params := listingParams{Page: 1, Limit: 10, Status: "all"}

	if page, errPage := strconv.Atoi(c.DefaultQuery("page", "1")); errPage == nil && page > 0 {
		params.Page = page
	}
	if limit, errLimit := strconv.Atoi(c.DefaultQuery("limit", "10")); errLimit == nil && limit > 0 && limit <= 100 {
		params.Limit = limit
	}
	params.Search = strings.TrimSpace(c.Query("search"))
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		params.Status = status
	}
	return params
}

// offset returns the row offset for the current page.
func (p listingParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// pagination builds the response pagination envelope.
func (p listingParams) pagination(total int64) gin.H {
	totalPages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return gin.H{
		"page":       p.Page,
		"limit":      p.Limit,
		"total":      total,
		"totalPages": totalPages,
	}
}
