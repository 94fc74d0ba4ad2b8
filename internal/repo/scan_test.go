package repo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// rowStub feeds fixed column values into scanReservation without a database.
type rowStub struct {
	ids    [4]uuid.UUID
	times  [4]time.Time
	status string
	err    error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := 0; i < 4; i++ {
		*dest[i].(*pgtype.UUID) = pgtype.UUID{Bytes: r.ids[i], Valid: true}
	}
	*dest[4].(*time.Time) = r.times[0]
	*dest[5].(*time.Time) = r.times[1]
	*dest[6].(*string) = r.status
	*dest[7].(*time.Time) = r.times[2]
	*dest[8].(*time.Time) = r.times[3]
	return nil
}

func newRowStub(status string) rowStub {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return rowStub{
		ids:    [4]uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()},
		times:  [4]time.Time{t0, t0.Add(time.Hour), t0.Add(-time.Hour), t0.Add(-time.Hour)},
		status: status,
	}
}

func TestScanReservation(t *testing.T) {
	row := newRowStub("APPROVED")

	got, err := scanReservation(row)
	require.NoError(t, err)
	assert.Equal(t, row.ids[0], got.ID)
	assert.Equal(t, row.ids[3], got.OwnerID)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.True(t, got.End.Equal(row.times[1]))
}

func TestScanReservation_UnknownStatus(t *testing.T) {
	for _, status := range []string{"", "approved", "EXPIRED"} {
		_, err := scanReservation(newRowStub(status))
		assert.Error(t, err, "status %q", status)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestScanReservation_NoRows(t *testing.T) {
	_, err := scanReservation(rowStub{err: pgx.ErrNoRows})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
