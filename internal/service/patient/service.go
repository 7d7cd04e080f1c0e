package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/audit"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/authz"
	"github.com/carlosapgomes/eqmd-sub007/pkg/errors"
)

// Authorizer is the slice of the decision engine this service uses.
type Authorizer interface {
	CanAccessPatient(ctx context.Context, user *model.User, patient *model.Patient) bool
	CanSeePatientInSearch(ctx context.Context, user *model.User, patient *model.Patient) bool
	CanChangePatientStatus(ctx context.Context, user *model.User, patient *model.Patient, newStatus model.PatientStatus) bool
	CanChangePatientPersonalData(ctx context.Context, user *model.User, patient *model.Patient) bool
	InvalidateObject(ctx context.Context, objectID uuid.UUID)
}

type Service struct {
	repo    repository.PatientRepository
	authz   Authorizer
	auditor *audit.Service
}

func NewService(repo repository.PatientRepository, authorizer Authorizer, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		authz:   authorizer,
		auditor: auditor,
	}
}

// Register creates a patient record owned by the acting user.
func (s *Service) Register(ctx context.Context, actor *model.User, patient *model.Patient) error {
	if actor == nil {
		return errors.Forbidden(fmt.Errorf("no acting user"))
	}
	if !patient.Status.Valid() {
		patient.Status = model.PatientStatusOutpatient
	}
	patient.CreatedBy = actor.ID

	if err := s.repo.Create(ctx, patient); err != nil {
		return err
	}
	s.auditor.LogChange(ctx, actor.ID, "patient.register", patient.ID)
	return nil
}

// Get returns a patient record the actor may access.
func (s *Service) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("patient", err)
	}

	if !s.authz.CanAccessPatient(ctx, actor, patient) {
		s.logDenial(ctx, actor, authz.PermAccessPatient, id, "access denied")
		return nil, errors.Forbidden(nil)
	}
	return patient, nil
}

// Search lists patients matching the term, filtered down to what the
// actor is allowed to see. Filtering never reorders the repository
// result.
func (s *Service) Search(ctx context.Context, actor *model.User, term string) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, term)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Patient, 0, len(patients))
	for _, patient := range patients {
		if s.authz.CanSeePatientInSearch(ctx, actor, patient) {
			visible = append(visible, patient)
		}
	}
	return visible, nil
}

// ChangeStatus applies a permission-gated admission-state transition
// and invalidates cached decisions about the patient.
func (s *Service) ChangeStatus(ctx context.Context, actor *model.User, id uuid.UUID, newStatus model.PatientStatus) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("patient", err)
	}

	if !s.authz.CanChangePatientStatus(ctx, actor, patient, newStatus) {
		s.logDenial(ctx, actor, authz.PermChangePatientStatus, id,
			fmt.Sprintf("transition %s -> %s refused", patient.Status, newStatus))
		return errors.Forbidden(nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return err
	}

	s.authz.InvalidateObject(ctx, id)
	if actor != nil {
		s.auditor.LogChange(ctx, actor.ID, "patient.change_status", id)
	}
	return nil
}

// UpdatePersonalData applies a gated edit of the personal data block.
func (s *Service) UpdatePersonalData(ctx context.Context, actor *model.User, id uuid.UUID, req *model.UpdatePersonalDataRequest) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("patient", err)
	}

	if !s.authz.CanChangePatientPersonalData(ctx, actor, patient) {
		s.logDenial(ctx, actor, authz.PermChangePatientPersonalData, id, "personal data edit refused")
		return errors.Forbidden(nil)
	}

	patient.DateOfBirth = req.DateOfBirth
	patient.IDNumber = req.IDNumber
	patient.Address = req.Address
	patient.Phone = req.Phone

	if err := s.repo.UpdatePersonalData(ctx, patient); err != nil {
		return err
	}

	s.authz.InvalidateObject(ctx, id)
	if actor != nil {
		s.auditor.LogChange(ctx, actor.ID, "patient.update_personal_data", id)
	}
	return nil
}

func (s *Service) logDenial(ctx context.Context, actor *model.User, permission string, objectID uuid.UUID, reason string) {
	actorID := uuid.Nil
	if actor != nil {
		actorID = actor.ID
	}
	s.auditor.LogDenial(ctx, actorID, permission, objectID, reason)
}
