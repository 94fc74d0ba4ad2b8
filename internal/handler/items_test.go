package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shareit/backend/internal/domain"
	"github.com/pkordes/shareit/backend/internal/handler"
)

func TestGetItemBookings(t *testing.T) {
	last := bookingFixture()
	svc := &mockBookings{
		itemSummary: func(_ context.Context, itemID, a uuid.UUID) (domain.ItemSummary, error) {
			assert.Equal(t, itemRef, itemID)
			assert.Equal(t, actor, a)
			return domain.ItemSummary{ItemID: itemID, Last: &last}, nil
		},
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/items/"+itemRef.String()+"/bookings", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ItemBookingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, itemRef, resp.ItemID)
	require.NotNil(t, resp.LastBooking)
	assert.Equal(t, last.ID, resp.LastBooking.ID)
	assert.Nil(t, resp.NextBooking)
	assert.Contains(t, rec.Body.String(), `"nextBooking":null`)
}

func TestGetItemBookings_404(t *testing.T) {
	svc := &mockBookings{
		itemSummary: func(context.Context, uuid.UUID, uuid.UUID) (domain.ItemSummary, error) {
			return domain.ItemSummary{}, domain.ErrItemNotFound
		},
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/items/"+uuid.NewString()+"/bookings", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFinishedBooking(t *testing.T) {
	svc := &mockBookings{
		hasFinished: func(_ context.Context, itemID, userID uuid.UUID) (bool, error) {
			assert.Equal(t, itemRef, itemID)
			assert.Equal(t, actor, userID)
			return true, nil
		},
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/items/"+itemRef.String()+"/bookings/finished", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.FinishedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Finished)
	assert.Equal(t, itemRef, resp.ItemID)
}
