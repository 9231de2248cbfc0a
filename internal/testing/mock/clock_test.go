package mock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	assert.True(t, clock.Now().Equal(start))

	clock.Advance(90 * time.Minute)
	assert.True(t, clock.Now().Equal(start.Add(90*time.Minute)))

	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(later)
	assert.True(t, clock.Now().Equal(later))
}

func TestMockClock_ZeroStartsNow(t *testing.T) {
	before := time.Now()
	clock := NewMockClock(time.Time{})
	assert.False(t, clock.Now().Before(before))
}
