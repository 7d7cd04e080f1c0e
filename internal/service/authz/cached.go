package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/pkg/metrics"
	"github.com/carlosapgomes/eqmd-sub007/pkg/permcache"
)

// CachedChecker memoizes Checker decisions through a permission cache.
// It answers exactly what the underlying Checker would; the cache only
// changes how often the predicate runs. Nil inputs are rejected before
// a cache key is ever built, so fail-closed denials are never cached.
type CachedChecker struct {
	checker *Checker
	cache   *permcache.Cache
	metrics *metrics.Metrics
}

// NewCachedChecker wraps checker with cache. metrics may be nil.
func NewCachedChecker(checker *Checker, cache *permcache.Cache, m *metrics.Metrics) *CachedChecker {
	return &CachedChecker{
		checker: checker,
		cache:   cache,
		metrics: m,
	}
}

func (c *CachedChecker) CanAccessPatient(ctx context.Context, user *model.User, patient *model.Patient) bool {
	if user == nil || patient == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermAccessPatient,
		UserID:     user.ID,
		ObjectID:   patient.ID,
	}, func() bool { return c.checker.CanAccessPatient(user, patient) })
}

func (c *CachedChecker) CanSeePatientInSearch(ctx context.Context, user *model.User, patient *model.Patient) bool {
	if user == nil || patient == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermSeePatientInSearch,
		UserID:     user.ID,
		ObjectID:   patient.ID,
	}, func() bool { return c.checker.CanSeePatientInSearch(user, patient) })
}

func (c *CachedChecker) CanEditEvent(ctx context.Context, user *model.User, event *model.Event) bool {
	if user == nil || event == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermEditEvent,
		UserID:     user.ID,
		ObjectID:   event.ID,
	}, func() bool { return c.checker.CanEditEvent(user, event) })
}

func (c *CachedChecker) CanDeleteEvent(ctx context.Context, user *model.User, event *model.Event) bool {
	if user == nil || event == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermDeleteEvent,
		UserID:     user.ID,
		ObjectID:   event.ID,
	}, func() bool { return c.checker.CanDeleteEvent(user, event) })
}

func (c *CachedChecker) CanChangePatientStatus(ctx context.Context, user *model.User, patient *model.Patient, newStatus model.PatientStatus) bool {
	if user == nil || patient == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermChangePatientStatus,
		UserID:     user.ID,
		ObjectID:   patient.ID,
		Qualifier:  string(newStatus),
	}, func() bool { return c.checker.CanChangePatientStatus(user, patient, newStatus) })
}

func (c *CachedChecker) CanChangePatientPersonalData(ctx context.Context, user *model.User, patient *model.Patient) bool {
	if user == nil || patient == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermChangePatientPersonalData,
		UserID:     user.ID,
		ObjectID:   patient.ID,
	}, func() bool { return c.checker.CanChangePatientPersonalData(user, patient) })
}

func (c *CachedChecker) CanManagePatients(ctx context.Context, user *model.User) bool {
	if user == nil {
		return false
	}
	return c.do(ctx, permcache.Key{
		Permission: PermManagePatients,
		UserID:     user.ID,
	}, func() bool { return c.checker.CanManagePatients(user) })
}

// InvalidateUser forces re-evaluation of every decision involving the
// user. Call after any group membership, profession, or active-flag
// change.
func (c *CachedChecker) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	c.cache.InvalidateUser(ctx, userID)
}

// InvalidateObject forces re-evaluation of every decision involving the
// target object. Call after any mutation of the object.
func (c *CachedChecker) InvalidateObject(ctx context.Context, objectID uuid.UUID) {
	c.cache.InvalidateObject(ctx, objectID)
}

func (c *CachedChecker) do(ctx context.Context, key permcache.Key, compute func() bool) bool {
	allowed, outcome := c.cache.Do(ctx, key, compute)
	if c.metrics != nil {
		c.metrics.AuthzCacheLookups.WithLabelValues(key.Permission, outcome.String()).Inc()
		c.metrics.AuthzDecisions.WithLabelValues(key.Permission, decisionLabel(allowed)).Inc()
	}
	return allowed
}

func decisionLabel(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
