package authz

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
)

var testClock = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func newTestChecker() *Checker {
	return NewChecker(Config{
		Clock: func() time.Time { return testClock },
	})
}

func staffUser(p model.Profession, groups ...string) *model.User {
	u := &model.User{
		Profession:    p,
		IsActive:      true,
		Authenticated: true,
		Groups:        groups,
	}
	u.ID = uuid.New()
	return u
}

func testPatient(status model.PatientStatus) *model.Patient {
	p := &model.Patient{Status: status, CreatedBy: uuid.New()}
	p.ID = uuid.New()
	p.CreatedAt = testClock.Add(-48 * time.Hour)
	return p
}

func testEvent(creator uuid.UUID, age time.Duration) *model.Event {
	e := &model.Event{CreatedBy: creator, Type: model.EventTypeDailyNote}
	e.ID = uuid.New()
	e.PatientID = uuid.New()
	e.CreatedAt = testClock.Add(-age)
	return e
}

func TestPredicatesFailClosed(t *testing.T) {
	c := newTestChecker()
	doctor := staffUser(model.ProfessionDoctor)
	patient := testPatient(model.PatientStatusInpatient)
	event := testEvent(doctor.ID, time.Hour)

	inactive := staffUser(model.ProfessionDoctor)
	inactive.IsActive = false

	anonymous := staffUser(model.ProfessionDoctor)
	anonymous.Authenticated = false

	t.Run("nil user", func(t *testing.T) {
		assert.False(t, c.CanAccessPatient(nil, patient))
		assert.False(t, c.CanSeePatientInSearch(nil, patient))
		assert.False(t, c.CanEditEvent(nil, event))
		assert.False(t, c.CanDeleteEvent(nil, event))
		assert.False(t, c.CanChangePatientStatus(nil, patient, model.PatientStatusDischarged))
		assert.False(t, c.CanChangePatientPersonalData(nil, patient))
		assert.False(t, c.CanManagePatients(nil))
	})

	t.Run("nil target", func(t *testing.T) {
		assert.False(t, c.CanAccessPatient(doctor, nil))
		assert.False(t, c.CanSeePatientInSearch(doctor, nil))
		assert.False(t, c.CanEditEvent(doctor, nil))
		assert.False(t, c.CanDeleteEvent(doctor, nil))
		assert.False(t, c.CanChangePatientStatus(doctor, nil, model.PatientStatusInpatient))
		assert.False(t, c.CanChangePatientPersonalData(doctor, nil))
	})

	t.Run("inactive user", func(t *testing.T) {
		assert.False(t, c.CanAccessPatient(inactive, patient))
		assert.False(t, c.CanChangePatientStatus(inactive, patient, model.PatientStatusDischarged))
	})

	t.Run("unauthenticated user", func(t *testing.T) {
		assert.False(t, c.CanAccessPatient(anonymous, patient))
		assert.False(t, c.CanManagePatients(anonymous))
	})

	t.Run("unknown profession", func(t *testing.T) {
		unknown := staffUser(model.ProfessionUnknown)
		assert.False(t, c.CanChangePatientStatus(unknown, patient, model.PatientStatusInpatient))
		assert.False(t, c.CanChangePatientPersonalData(unknown, patient))
	})

	t.Run("unknown target status", func(t *testing.T) {
		assert.False(t, c.CanChangePatientStatus(doctor, patient, model.PatientStatus("teleported")))
	})
}

func TestCanAccessPatientUniversalOnceAuthenticated(t *testing.T) {
	c := newTestChecker()
	patient := testPatient(model.PatientStatusInpatient)

	for _, p := range []model.Profession{
		model.ProfessionDoctor,
		model.ProfessionResident,
		model.ProfessionNurse,
		model.ProfessionPhysiotherapist,
		model.ProfessionStudent,
	} {
		assert.True(t, c.CanAccessPatient(staffUser(p), patient), p.String())
	}
}

func TestCanSeePatientInSearchStudentFilter(t *testing.T) {
	c := newTestChecker()
	student := staffUser(model.ProfessionStudent)
	nurse := staffUser(model.ProfessionNurse)

	assert.True(t, c.CanSeePatientInSearch(student, testPatient(model.PatientStatusOutpatient)))
	assert.True(t, c.CanSeePatientInSearch(student, testPatient(model.PatientStatusDischarged)))
	assert.False(t, c.CanSeePatientInSearch(student, testPatient(model.PatientStatusInpatient)))
	assert.False(t, c.CanSeePatientInSearch(student, testPatient(model.PatientStatusEmergency)))

	assert.True(t, c.CanSeePatientInSearch(nurse, testPatient(model.PatientStatusInpatient)))
}

func TestCanChangePatientStatusRoleGates(t *testing.T) {
	c := newTestChecker()
	doctor := staffUser(model.ProfessionDoctor)
	resident := staffUser(model.ProfessionResident)
	nurse := staffUser(model.ProfessionNurse)
	physio := staffUser(model.ProfessionPhysiotherapist)
	student := staffUser(model.ProfessionStudent)

	emergency := testPatient(model.PatientStatusEmergency)
	inpatient := testPatient(model.PatientStatusInpatient)
	discharged := testPatient(model.PatientStatusDischarged)

	t.Run("doctor and resident may discharge from dischargeable states", func(t *testing.T) {
		assert.True(t, c.CanChangePatientStatus(doctor, inpatient, model.PatientStatusDischarged))
		assert.True(t, c.CanChangePatientStatus(resident, emergency, model.PatientStatusDischarged))
	})

	t.Run("discharge from non-dischargeable state denied", func(t *testing.T) {
		assert.False(t, c.CanChangePatientStatus(doctor, discharged, model.PatientStatusDischarged))
		assert.False(t, c.CanChangePatientStatus(doctor, testPatient(model.PatientStatusOutpatient), model.PatientStatusDischarged))
	})

	t.Run("nurse may admit emergency to inpatient only", func(t *testing.T) {
		assert.True(t, c.CanChangePatientStatus(nurse, emergency, model.PatientStatusInpatient))
		assert.False(t, c.CanChangePatientStatus(nurse, emergency, model.PatientStatusDischarged))
		assert.False(t, c.CanChangePatientStatus(nurse, inpatient, model.PatientStatusDischarged))
		assert.False(t, c.CanChangePatientStatus(nurse, testPatient(model.PatientStatusOutpatient), model.PatientStatusInpatient))
	})

	t.Run("physiotherapist and student denied all transitions", func(t *testing.T) {
		for _, status := range []model.PatientStatus{
			model.PatientStatusInpatient,
			model.PatientStatusOutpatient,
			model.PatientStatusDischarged,
		} {
			assert.False(t, c.CanChangePatientStatus(physio, emergency, status))
			assert.False(t, c.CanChangePatientStatus(student, emergency, status))
		}
	})
}

func TestCanChangePatientPersonalData(t *testing.T) {
	c := newTestChecker()
	patient := testPatient(model.PatientStatusInpatient)

	assert.True(t, c.CanChangePatientPersonalData(staffUser(model.ProfessionDoctor), patient))
	assert.True(t, c.CanChangePatientPersonalData(staffUser(model.ProfessionResident), patient))
	assert.False(t, c.CanChangePatientPersonalData(staffUser(model.ProfessionNurse), patient))
	assert.False(t, c.CanChangePatientPersonalData(staffUser(model.ProfessionPhysiotherapist), patient))
	assert.False(t, c.CanChangePatientPersonalData(staffUser(model.ProfessionStudent), patient))
}

func TestCanManagePatients(t *testing.T) {
	c := newTestChecker()

	manager := staffUser(model.ProfessionDoctor, model.GroupDoctors, model.GroupPatientManagers)
	plain := staffUser(model.ProfessionDoctor, model.GroupDoctors)

	assert.True(t, c.CanManagePatients(manager))
	assert.False(t, c.CanManagePatients(plain))
}

// Scenario from the clinical workflow: a doctor writes a note at 10:00,
// edits it minutes later, a nurse never may, and past 24h the author
// may not either.
func TestEventEditScenario(t *testing.T) {
	now := testClock
	c := NewChecker(Config{Clock: func() time.Time { return now }})

	doctor := staffUser(model.ProfessionDoctor)
	nurse := staffUser(model.ProfessionNurse)

	event := testEvent(doctor.ID, 5*time.Minute)

	assert.True(t, c.CanEditEvent(doctor, event))
	assert.False(t, c.CanEditEvent(nurse, event))

	old := testEvent(doctor.ID, 24*time.Hour+time.Minute)
	assert.False(t, c.CanEditEvent(doctor, old))
	assert.False(t, c.CanDeleteEvent(doctor, old))
}

func TestEditAndDeleteWindowsDiverge(t *testing.T) {
	c := NewChecker(Config{
		EditWindow:   time.Hour,
		DeleteWindow: 24 * time.Hour,
		Clock:        func() time.Time { return testClock },
	})
	doctor := staffUser(model.ProfessionDoctor)
	event := testEvent(doctor.ID, 2*time.Hour)

	assert.False(t, c.CanEditEvent(doctor, event))
	assert.True(t, c.CanDeleteEvent(doctor, event))
}
