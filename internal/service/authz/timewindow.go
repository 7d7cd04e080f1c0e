package authz

import (
	"time"

	"github.com/google/uuid"
)

// DefaultEditWindow bounds how long a clinical entry stays editable or
// deletable by its creator.
const DefaultEditWindow = 24 * time.Hour

// TimeWindow is the reusable temporal guard: an action tied to an
// object is allowed only for the object's original creator and only
// within a fixed duration after a reference timestamp. All comparisons
// use the injected server clock in UTC; client-supplied time never
// participates.
type TimeWindow struct {
	window time.Duration
	now    func() time.Time
}

// NewTimeWindow creates a guard with the given duration. A nil clock
// selects time.Now; a non-positive window selects DefaultEditWindow.
func NewTimeWindow(window time.Duration, clock func() time.Time) *TimeWindow {
	if window <= 0 {
		window = DefaultEditWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &TimeWindow{window: window, now: clock}
}

// Allows reports whether requester may act on an object created by
// owner at t0. Nil identities and zero timestamps fail closed.
func (w *TimeWindow) Allows(requester, owner uuid.UUID, t0 time.Time) bool {
	if requester == uuid.Nil || owner == uuid.Nil || t0.IsZero() {
		return false
	}
	if requester != owner {
		return false
	}
	return w.now().UTC().Sub(t0.UTC()) <= w.window
}
