// Package authz implements the permission decision engine: pure,
// deterministic predicates over (user, target object), a reusable
// creator-plus-time-window rule, and a cached front end with per-entity
// invalidation. Every predicate fails closed: missing, malformed, or
// ambiguous input resolves to deny.
package authz

import (
	"time"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
)

// Permission names. These name decisions, not routes; they key the
// cache and the audit trail.
const (
	PermAccessPatient             = "patient.access"
	PermSeePatientInSearch        = "patient.search"
	PermChangePatientStatus       = "patient.change_status"
	PermChangePatientPersonalData = "patient.change_personal_data"
	PermManagePatients            = "patient.manage"
	PermEditEvent                 = "event.edit"
	PermDeleteEvent               = "event.delete"
)

// Config holds the tunable parts of the decision engine. Edit and
// delete windows default to 24h and are configured separately so they
// can diverge.
type Config struct {
	EditWindow   time.Duration
	DeleteWindow time.Duration
	// Clock is the single time source for window checks. Defaults to
	// time.Now.
	Clock func() time.Time
}

// Checker evaluates permission predicates. It holds no mutable state
// and is safe for concurrent use.
type Checker struct {
	editWindow   *TimeWindow
	deleteWindow *TimeWindow
}

// NewChecker creates a decision engine from cfg.
func NewChecker(cfg Config) *Checker {
	return &Checker{
		editWindow:   NewTimeWindow(cfg.EditWindow, cfg.Clock),
		deleteWindow: NewTimeWindow(cfg.DeleteWindow, cfg.Clock),
	}
}

// actor reports whether user can be the subject of any permission at
// all. Every predicate starts here.
func actor(user *model.User) bool {
	return user != nil && user.IsAuthenticated() && user.IsActive
}

// CanAccessPatient reports whether user may view the patient record.
// Under the single-site model every active authenticated user has
// access; the patient must still exist.
func (c *Checker) CanAccessPatient(user *model.User, patient *model.Patient) bool {
	return actor(user) && patient != nil
}

// CanSeePatientInSearch reports whether the patient may appear in
// user's search results. Students only see patients that are not
// currently admitted.
func (c *Checker) CanSeePatientInSearch(user *model.User, patient *model.Patient) bool {
	if !c.CanAccessPatient(user, patient) {
		return false
	}
	if user.Profession == model.ProfessionStudent && patient.Status.Admitted() {
		return false
	}
	return true
}

// CanEditEvent reports whether user may edit the clinical entry. Only
// the original creator may, and only within the edit window. No role
// overrides this, elevated or not.
func (c *Checker) CanEditEvent(user *model.User, event *model.Event) bool {
	if !actor(user) || event == nil {
		return false
	}
	return c.editWindow.Allows(user.ID, event.CreatedBy, event.CreatedAt)
}

// CanDeleteEvent applies the same creator-within-window rule as
// CanEditEvent against the delete window.
func (c *Checker) CanDeleteEvent(user *model.User, event *model.Event) bool {
	if !actor(user) || event == nil {
		return false
	}
	return c.deleteWindow.Allows(user.ID, event.CreatedBy, event.CreatedAt)
}

// CanChangePatientStatus reports whether user may move the patient to
// newStatus. Doctors and residents may record any valid transition,
// discharge only from a dischargeable state. Nurses may admit an
// emergency patient and nothing else. Physiotherapists and students may
// not change status at all. Unknown statuses and unknown professions
// deny.
func (c *Checker) CanChangePatientStatus(user *model.User, patient *model.Patient, newStatus model.PatientStatus) bool {
	if !actor(user) || patient == nil || !newStatus.Valid() {
		return false
	}

	switch user.Profession {
	case model.ProfessionDoctor, model.ProfessionResident:
		if newStatus == model.PatientStatusDischarged {
			return patient.Status.Dischargeable()
		}
		return true
	case model.ProfessionNurse:
		return newStatus == model.PatientStatusInpatient &&
			patient.Status == model.PatientStatusEmergency
	case model.ProfessionPhysiotherapist, model.ProfessionStudent:
		return false
	default:
		return false
	}
}

// CanChangePatientPersonalData reports whether user may edit the
// patient's personal data block. Doctors and residents only, regardless
// of the patient's state.
func (c *Checker) CanChangePatientPersonalData(user *model.User, patient *model.Patient) bool {
	if !actor(user) || patient == nil {
		return false
	}

	switch user.Profession {
	case model.ProfessionDoctor, model.ProfessionResident:
		return true
	case model.ProfessionNurse, model.ProfessionPhysiotherapist, model.ProfessionStudent:
		return false
	default:
		return false
	}
}

// CanManagePatients is the coarse user-level check for the patient
// management surface. It looks at group membership, not profession.
func (c *Checker) CanManagePatients(user *model.User) bool {
	return actor(user) && user.InGroup(model.GroupPatientManagers)
}
