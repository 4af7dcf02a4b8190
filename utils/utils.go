package utils

import "math"

// Pagination represents the pagination details.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
}

// MaxPageSize caps the page size a caller may request.
const MaxPageSize = 100

// CreatePagination creates a Pagination object.
func CreatePagination(totalItems, page, pageSize int) *Pagination {
	if pageSize <= 0 {
		pageSize = 10 // Default page size
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1 // Default page
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))

	return &Pagination{
		TotalItems:  totalItems,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
	}
}

// Bounds returns the [start, end) slice indices of the current page.
// Pages past the last one are empty.
func (p *Pagination) Bounds() (int, int) {
	if p.PageSize <= 0 || p.CurrentPage <= 0 || p.CurrentPage-1 > p.TotalItems/p.PageSize {
		return p.TotalItems, p.TotalItems
	}
	start := (p.CurrentPage - 1) * p.PageSize
	if start > p.TotalItems {
		start = p.TotalItems
	}
	end := p.TotalItems
	if p.PageSize < p.TotalItems-start {
		end = start + p.PageSize
	}
	return start, end
}
