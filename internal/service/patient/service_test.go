package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/audit"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/authz"
	"github.com/carlosapgomes/eqmd-sub007/pkg/errors"
)

type recordingPatientRepo struct {
	repository.PatientRepository
	patients      map[uuid.UUID]*model.Patient
	listed        []*model.Patient
	statusChanges map[uuid.UUID]model.PatientStatus
	dataUpdates   []*model.Patient
}

func newRecordingPatientRepo(patients ...*model.Patient) *recordingPatientRepo {
	byID := make(map[uuid.UUID]*model.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}
	return &recordingPatientRepo{
		patients:      byID,
		listed:        patients,
		statusChanges: make(map[uuid.UUID]model.PatientStatus),
	}
}

func (r *recordingPatientRepo) Create(_ context.Context, patient *model.Patient) error {
	patient.ID = uuid.New()
	r.patients[patient.ID] = patient
	return nil
}

func (r *recordingPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if p, ok := r.patients[id]; ok {
		return p, nil
	}
	return nil, errors.NotFound("patient", nil)
}

func (r *recordingPatientRepo) List(_ context.Context, _ string) ([]*model.Patient, error) {
	return r.listed, nil
}

func (r *recordingPatientRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.PatientStatus) error {
	r.statusChanges[id] = status
	return nil
}

func (r *recordingPatientRepo) UpdatePersonalData(_ context.Context, patient *model.Patient) error {
	r.dataUpdates = append(r.dataUpdates, patient)
	return nil
}

type trackingAuthorizer struct {
	checker     *authz.Checker
	invalidated []uuid.UUID
}

func (a *trackingAuthorizer) CanAccessPatient(_ context.Context, user *model.User, patient *model.Patient) bool {
	return a.checker.CanAccessPatient(user, patient)
}

func (a *trackingAuthorizer) CanSeePatientInSearch(_ context.Context, user *model.User, patient *model.Patient) bool {
	return a.checker.CanSeePatientInSearch(user, patient)
}

func (a *trackingAuthorizer) CanChangePatientStatus(_ context.Context, user *model.User, patient *model.Patient, newStatus model.PatientStatus) bool {
	return a.checker.CanChangePatientStatus(user, patient, newStatus)
}

func (a *trackingAuthorizer) CanChangePatientPersonalData(_ context.Context, user *model.User, patient *model.Patient) bool {
	return a.checker.CanChangePatientPersonalData(user, patient)
}

func (a *trackingAuthorizer) InvalidateObject(_ context.Context, objectID uuid.UUID) {
	a.invalidated = append(a.invalidated, objectID)
}

func newTestService(repo *recordingPatientRepo) (*Service, *trackingAuthorizer) {
	authorizer := &trackingAuthorizer{checker: authz.NewChecker(authz.Config{})}
	return NewService(repo, authorizer, audit.NewService(zerolog.Nop())), authorizer
}

func staffUser(profession model.Profession) *model.User {
	u := &model.User{Profession: profession, IsActive: true, Authenticated: true}
	u.ID = uuid.New()
	return u
}

func inpatient() *model.Patient {
	p := &model.Patient{Name: "Ana Souza", Status: model.PatientStatusInpatient}
	p.ID = uuid.New()
	return p
}

func TestChangeStatusByDoctorPersistsAndInvalidates(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, authorizer := newTestService(repo)

	err := svc.ChangeStatus(context.Background(), staffUser(model.ProfessionDoctor), patient.ID, model.PatientStatusDischarged)
	require.NoError(t, err)

	assert.Equal(t, model.PatientStatusDischarged, repo.statusChanges[patient.ID])
	assert.Equal(t, []uuid.UUID{patient.ID}, authorizer.invalidated)
}

func TestChangeStatusByStudentForbiddenWithoutPersist(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, authorizer := newTestService(repo)

	err := svc.ChangeStatus(context.Background(), staffUser(model.ProfessionStudent), patient.ID, model.PatientStatusDischarged)
	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))

	assert.Empty(t, repo.statusChanges, "a refused transition must not reach the store")
	assert.Empty(t, authorizer.invalidated)
}

func TestChangeStatusNurseAdmitsFromEmergency(t *testing.T) {
	patient := inpatient()
	patient.Status = model.PatientStatusEmergency
	repo := newRecordingPatientRepo(patient)
	svc, _ := newTestService(repo)

	err := svc.ChangeStatus(context.Background(), staffUser(model.ProfessionNurse), patient.ID, model.PatientStatusInpatient)
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusInpatient, repo.statusChanges[patient.ID])
}

func TestChangeStatusNurseCannotDischarge(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, _ := newTestService(repo)

	err := svc.ChangeStatus(context.Background(), staffUser(model.ProfessionNurse), patient.ID, model.PatientStatusDischarged)
	assert.True(t, errors.IsForbidden(err))
	assert.Empty(t, repo.statusChanges)
}

func TestChangeStatusUnknownPatientNotFound(t *testing.T) {
	repo := newRecordingPatientRepo()
	svc, _ := newTestService(repo)

	err := svc.ChangeStatus(context.Background(), staffUser(model.ProfessionDoctor), uuid.New(), model.PatientStatusDischarged)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetDeniedForInactiveUser(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, _ := newTestService(repo)

	inactive := staffUser(model.ProfessionDoctor)
	inactive.IsActive = false

	_, err := svc.Get(context.Background(), inactive, patient.ID)
	assert.True(t, errors.IsForbidden(err))
}

func TestGetReturnsPatientForActiveStaff(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, _ := newTestService(repo)

	got, err := svc.Get(context.Background(), staffUser(model.ProfessionPhysiotherapist), patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient, got)
}

func TestSearchHidesAdmittedFromStudentsOnly(t *testing.T) {
	admitted := inpatient()
	outpatient := &model.Patient{Name: "Bruno Lima", Status: model.PatientStatusOutpatient}
	outpatient.ID = uuid.New()

	repo := newRecordingPatientRepo(admitted, outpatient)
	svc, _ := newTestService(repo)

	studentView, err := svc.Search(context.Background(), staffUser(model.ProfessionStudent), "")
	require.NoError(t, err)
	require.Len(t, studentView, 1)
	assert.Equal(t, outpatient.ID, studentView[0].ID)

	doctorView, err := svc.Search(context.Background(), staffUser(model.ProfessionDoctor), "")
	require.NoError(t, err)
	assert.Len(t, doctorView, 2)
}

func TestUpdatePersonalDataResidentAllowed(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, authorizer := newTestService(repo)

	phone := "555-0101"
	err := svc.UpdatePersonalData(context.Background(), staffUser(model.ProfessionResident), patient.ID,
		&model.UpdatePersonalDataRequest{Phone: &phone})
	require.NoError(t, err)

	require.Len(t, repo.dataUpdates, 1)
	assert.Equal(t, &phone, repo.dataUpdates[0].Phone)
	assert.Equal(t, []uuid.UUID{patient.ID}, authorizer.invalidated)
}

func TestUpdatePersonalDataNurseForbidden(t *testing.T) {
	patient := inpatient()
	repo := newRecordingPatientRepo(patient)
	svc, _ := newTestService(repo)

	phone := "555-0101"
	err := svc.UpdatePersonalData(context.Background(), staffUser(model.ProfessionNurse), patient.ID,
		&model.UpdatePersonalDataRequest{Phone: &phone})
	assert.True(t, errors.IsForbidden(err))
	assert.Empty(t, repo.dataUpdates)
}

func TestRegisterStampsCreator(t *testing.T) {
	repo := newRecordingPatientRepo()
	svc, _ := newTestService(repo)

	actor := staffUser(model.ProfessionDoctor)
	patient := &model.Patient{Name: "Carla Dias"}
	require.NoError(t, svc.Register(context.Background(), actor, patient))

	assert.Equal(t, actor.ID, patient.CreatedBy)
	assert.Equal(t, model.PatientStatusOutpatient, patient.Status, "missing status defaults to outpatient")
}
