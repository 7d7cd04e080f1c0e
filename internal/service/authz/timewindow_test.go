package authz

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTimeWindowBoundaries(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	createdAt := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		requester uuid.UUID
		now       time.Time
		want      bool
	}{
		{"owner just after creation", owner, createdAt.Add(5 * time.Minute), true},
		{"owner one minute before window ends", owner, createdAt.Add(24*time.Hour - time.Minute), true},
		{"owner exactly at window end", owner, createdAt.Add(24 * time.Hour), true},
		{"owner one second past window", owner, createdAt.Add(24*time.Hour + time.Second), false},
		{"non-owner inside window", other, createdAt.Add(5 * time.Minute), false},
		{"non-owner outside window", other, createdAt.Add(48 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewTimeWindow(24*time.Hour, func() time.Time { return tt.now })
			assert.Equal(t, tt.want, w.Allows(tt.requester, owner, createdAt))
		})
	}
}

func TestTimeWindowFailsClosed(t *testing.T) {
	w := NewTimeWindow(24*time.Hour, func() time.Time {
		return time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	})
	owner := uuid.New()

	assert.False(t, w.Allows(uuid.Nil, owner, time.Now()))
	assert.False(t, w.Allows(owner, uuid.Nil, time.Now()))
	assert.False(t, w.Allows(owner, owner, time.Time{}))
}

func TestTimeWindowComparesInUTC(t *testing.T) {
	owner := uuid.New()
	loc := time.FixedZone("UTC-5", -5*60*60)
	// Same instant expressed in a non-UTC zone must not shift the
	// window.
	createdAt := time.Date(2025, 3, 10, 5, 0, 0, 0, loc)
	now := time.Date(2025, 3, 11, 9, 59, 0, 0, time.UTC)

	w := NewTimeWindow(24*time.Hour, func() time.Time { return now })
	assert.True(t, w.Allows(owner, owner, createdAt))
}

func TestTimeWindowDefaults(t *testing.T) {
	w := NewTimeWindow(0, nil)
	assert.Equal(t, DefaultEditWindow, w.window)
	assert.NotNil(t, w.now)
}
