// Package gallery implements the page cache controller: it decides when the
// cached folder snapshot is stale, invalidates derived pages, and serves or
// builds the requested page.
package gallery

// DefaultPageSize is the per-page default when no override is supplied.
const DefaultPageSize = 40

// MaxPageSize caps request-supplied per_page overrides.
const MaxPageSize = 100

// Pagination is the page arithmetic for one request, serialized into the
// response envelope.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
}

// NewPagination computes the pagination metadata for a listing of totalItems.
func NewPagination(page, perPage, totalItems int) Pagination {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}
	return Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
	}
}

// InRange reports whether the requested page exists. Page numbers are
// 1-based; 0, negatives, and anything past the last page are out of range.
func (p Pagination) InRange() bool {
	return p.CurrentPage >= 1 && p.CurrentPage <= p.TotalPages
}

// Bounds returns the half-open index range [start, end) of the page within
// the listing. Only valid when InRange.
func (p Pagination) Bounds() (start, end int) {
	start = (p.CurrentPage - 1) * p.PerPage
	end = start + p.PerPage
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}

// clampPerPage normalizes a request-supplied page size to [1, MaxPageSize],
// falling back to the configured default when unset.
func clampPerPage(requested, fallback int) int {
	if requested <= 0 {
		return fallback
	}
	if requested > MaxPageSize {
		return MaxPageSize
	}
	return requested
}
