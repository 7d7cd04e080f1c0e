package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
)

// UserRepository persists staff accounts and their group memberships.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListByIDs resolves users (with groups) for a set of ids in a
	// single round trip. Unknown ids are simply absent from the result.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	SetProfession(ctx context.Context, id uuid.UUID, profession model.Profession) error
	AddToGroup(ctx context.Context, id uuid.UUID, group string) error
	RemoveFromGroup(ctx context.Context, id uuid.UUID, group string) error
}

// PatientRepository persists patient records.
type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, searchTerm string) ([]*model.Patient, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PatientStatus) error
	UpdatePersonalData(ctx context.Context, patient *model.Patient) error
}

// EventRepository persists clinical event entries.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Get(ctx context.Context, id uuid.UUID) (*model.Event, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}
