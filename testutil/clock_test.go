package testutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/shareit/backend/testutil"
)

func TestClock(t *testing.T) {
	c := testutil.NewClock(time.Time{})
	assert.Equal(t, testutil.ReferenceTime(), c.Now())

	got := c.Advance(90 * time.Minute)
	assert.Equal(t, testutil.ReferenceTime().Add(90*time.Minute), got)
	assert.Equal(t, got, c.NowFunc()())

	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(later)
	assert.Equal(t, later, c.Now())

	var nilClock *testutil.Clock
	assert.WithinDuration(t, time.Now(), nilClock.NowFunc()(), time.Minute)
}
