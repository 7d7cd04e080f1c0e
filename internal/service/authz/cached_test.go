package authz

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/pkg/permcache"
)

func newCachedTestChecker() *CachedChecker {
	logger := zerolog.Nop()
	cache := permcache.New(permcache.NewMemoryStore(0), time.Minute, &logger)
	return NewCachedChecker(newTestChecker(), cache, nil)
}

// Cache equivalence: for fixed inputs the cached checker answers
// exactly what the plain checker answers, on both the miss and the hit
// path.
func TestCachedCheckerEquivalence(t *testing.T) {
	ctx := context.Background()
	plain := newTestChecker()
	cached := newCachedTestChecker()

	doctor := staffUser(model.ProfessionDoctor)
	nurse := staffUser(model.ProfessionNurse)
	emergency := testPatient(model.PatientStatusEmergency)
	event := testEvent(doctor.ID, time.Hour)

	type check struct {
		name   string
		direct bool
		cachedFn func() bool
	}
	checks := []check{
		{"access", plain.CanAccessPatient(doctor, emergency), func() bool {
			return cached.CanAccessPatient(ctx, doctor, emergency)
		}},
		{"search", plain.CanSeePatientInSearch(nurse, emergency), func() bool {
			return cached.CanSeePatientInSearch(ctx, nurse, emergency)
		}},
		{"edit", plain.CanEditEvent(doctor, event), func() bool {
			return cached.CanEditEvent(ctx, doctor, event)
		}},
		{"delete", plain.CanDeleteEvent(nurse, event), func() bool {
			return cached.CanDeleteEvent(ctx, nurse, event)
		}},
		{"status nurse admit", plain.CanChangePatientStatus(nurse, emergency, model.PatientStatusInpatient), func() bool {
			return cached.CanChangePatientStatus(ctx, nurse, emergency, model.PatientStatusInpatient)
		}},
		{"status nurse discharge", plain.CanChangePatientStatus(nurse, emergency, model.PatientStatusDischarged), func() bool {
			return cached.CanChangePatientStatus(ctx, nurse, emergency, model.PatientStatusDischarged)
		}},
		{"personal data", plain.CanChangePatientPersonalData(doctor, emergency), func() bool {
			return cached.CanChangePatientPersonalData(ctx, doctor, emergency)
		}},
		{"manage", plain.CanManagePatients(doctor), func() bool {
			return cached.CanManagePatients(ctx, doctor)
		}},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.direct, c.cachedFn(), "miss path")
			assert.Equal(t, c.direct, c.cachedFn(), "hit path")
		})
	}
}

func TestCachedCheckerNilInputsNeverCached(t *testing.T) {
	ctx := context.Background()
	cached := newCachedTestChecker()

	assert.False(t, cached.CanAccessPatient(ctx, nil, testPatient(model.PatientStatusInpatient)))
	assert.False(t, cached.CanAccessPatient(ctx, staffUser(model.ProfessionDoctor), nil))
	assert.False(t, cached.CanManagePatients(ctx, nil))
}

func TestCachedCheckerInvalidationLiveness(t *testing.T) {
	ctx := context.Background()
	cached := newCachedTestChecker()

	manager := staffUser(model.ProfessionDoctor, model.GroupPatientManagers)
	assert.True(t, cached.CanManagePatients(ctx, manager))

	// Membership is revoked at the source; the cached decision is now
	// stale until invalidation.
	manager.Groups = nil
	assert.True(t, cached.CanManagePatients(ctx, manager), "stale entry still served before invalidation")

	cached.InvalidateUser(ctx, manager.ID)
	assert.False(t, cached.CanManagePatients(ctx, manager), "next call after invalidation must re-evaluate")
}

func TestCachedCheckerObjectInvalidation(t *testing.T) {
	ctx := context.Background()
	cached := newCachedTestChecker()

	nurse := staffUser(model.ProfessionNurse)
	patient := testPatient(model.PatientStatusEmergency)

	assert.True(t, cached.CanChangePatientStatus(ctx, nurse, patient, model.PatientStatusInpatient))

	// The admission happened; the emergency transition no longer
	// applies.
	patient.Status = model.PatientStatusInpatient
	cached.InvalidateObject(ctx, patient.ID)

	assert.False(t, cached.CanChangePatientStatus(ctx, nurse, patient, model.PatientStatusInpatient))
}
