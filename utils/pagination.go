package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination is the page window of a listing, read from ?page= and ?limit=
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// NewPagination reads the page window from the query string. Missing or
// invalid values fall back to the first page of DefaultPaginationLimit
// rows, and limit never exceeds MaxPaginationLimit.
func NewPagination(c *gin.Context) *Pagination {
	page := positiveQuery(c, "page", 1)
	limit := positiveQuery(c, "limit", DefaultPaginationLimit)
	if limit > MaxPaginationLimit {
		limit = MaxPaginationLimit
	}
	return &Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func positiveQuery(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// SetTotal records the row count and derives the last page
func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	if p.Limit > 0 {
		p.LastPage = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
}

// PaginatedResponse is the data of a listing response
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	Pagination  Pagination  `json:"pagination"`
	TotalItems  int64       `json:"total_items"`
	CurrentPage int         `json:"current_page"`
	LastPage    int         `json:"last_page"`
	PerPage     int         `json:"per_page"`
}

// SendPaginatedResponse writes one page of rows with its window
func SendPaginatedResponse(c *gin.Context, data interface{}, p *Pagination) {
	Success(c, "Success", PaginatedResponse{
		Data:        data,
		Pagination:  *p,
		TotalItems:  p.Total,
		CurrentPage: p.Page,
		LastPage:    p.LastPage,
		PerPage:     p.Limit,
	})
}
