package domain

import (
	"fmt"
	"math"
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. A zero Limit means no paging: the whole listing is returned.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return, or 0 for all.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// When both pointers are nil the listing is unpaged. Otherwise nil or invalid
// values fall back to page=1, limit=20, and the limit is capped at 100.
// A page whose offset does not fit in an int is rejected with ErrValidation.
func NewPaginationParams(page, limit *int) (PaginationParams, error) {
	if page == nil && limit == nil {
		return PaginationParams{}, nil
	}
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, 100)
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return PaginationParams{}, fmt.Errorf("%w: page %d is out of range", ErrValidation, p.Page)
	}
	return p, nil
}

// Paged reports whether a LIMIT/OFFSET should be applied.
func (p PaginationParams) Paged() bool {
	return p.Limit > 0
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
// It saturates at math.MaxInt instead of wrapping.
func (p PaginationParams) Offset() int {
	if !p.Paged() || p.Page < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Window returns the [lo, hi) bounds of the page within a slice of length n.
func (p PaginationParams) Window(n int) (lo, hi int) {
	if !p.Paged() {
		return 0, n
	}
	lo = min(p.Offset(), n)
	hi = lo + min(p.Limit, n-lo)
	return lo, hi
}
