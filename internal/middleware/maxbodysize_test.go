package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shareit/backend/internal/middleware"
)

// bodyReadingHandler reads the whole body the way a JSON decoder would and
// answers 413 when the read fails.
var bodyReadingHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if _, err := io.ReadAll(r.Body); err != nil {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func TestMaxBodySizeHandler(t *testing.T) {
	const limit = 100

	tests := []struct {
		name          string
		size          int
		contentLength int64
		want          int
		handlerRuns   bool
	}{
		{"small body passes", 50, 50, http.StatusOK, true},
		{"exactly at limit passes", limit, limit, http.StatusOK, true},
		{"declared length over limit rejected early", 200, 200, http.StatusRequestEntityTooLarge, false},
		{"streamed body over limit fails on read", 200, -1, http.StatusRequestEntityTooLarge, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ran := false
			h := middleware.NewMaxBodySizeHandler(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ran = true
				bodyReadingHandler.ServeHTTP(w, r)
			}))

			req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(strings.Repeat("x", tc.size)))
			req.ContentLength = tc.contentLength
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.handlerRuns, ran)
		})
	}
}
