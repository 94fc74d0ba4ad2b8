package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shareit/backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNewPaginationParams(t *testing.T) {
	p, err := domain.NewPaginationParams(nil, nil)
	require.NoError(t, err)
	assert.False(t, p.Paged(), "no params means no paging")

	p, err = domain.NewPaginationParams(intPtr(3), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 20}, p)
	assert.Equal(t, 40, p.Offset())

	p, err = domain.NewPaginationParams(intPtr(0), intPtr(500))
	require.NoError(t, err)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 100}, p)
}

func TestNewPaginationParams_PageOutOfRange(t *testing.T) {
	_, err := domain.NewPaginationParams(intPtr(math.MaxInt), intPtr(100))
	assert.ErrorIs(t, err, domain.ErrValidation)

	// The largest page whose offset still fits is accepted.
	last := math.MaxInt/100 + 1
	p, err := domain.NewPaginationParams(intPtr(last), intPtr(100))
	require.NoError(t, err)
	assert.Equal(t, (last-1)*100, p.Offset())
	assert.GreaterOrEqual(t, p.Offset(), 0)
}

func TestPaginationParams_OffsetSaturates(t *testing.T) {
	p := domain.PaginationParams{Page: math.MaxInt, Limit: 100}
	assert.Equal(t, math.MaxInt, p.Offset())

	lo, hi := p.Window(7)
	assert.Equal(t, [2]int{7, 7}, [2]int{lo, hi}, "an unreachable page is empty, not a panic")
}

func TestPaginationParams_Window(t *testing.T) {
	lo, hi := domain.PaginationParams{}.Window(7)
	assert.Equal(t, [2]int{0, 7}, [2]int{lo, hi})

	lo, hi = domain.PaginationParams{Page: 2, Limit: 3}.Window(7)
	assert.Equal(t, [2]int{3, 6}, [2]int{lo, hi})

	lo, hi = domain.PaginationParams{Page: 3, Limit: 3}.Window(7)
	assert.Equal(t, [2]int{6, 7}, [2]int{lo, hi})

	lo, hi = domain.PaginationParams{Page: 9, Limit: 3}.Window(7)
	assert.Equal(t, [2]int{7, 7}, [2]int{lo, hi})
}
