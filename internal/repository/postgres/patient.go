package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, name, record_number, status, created_by,
			date_of_birth, id_number, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now().UTC()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.RecordNumber,
		patient.Status,
		patient.CreatedBy,
		patient.DateOfBirth,
		patient.IDNumber,
		patient.Address,
		patient.Phone,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, name, record_number, status, created_by,
			date_of_birth, id_number, address, phone, created_at, updated_at
		FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient not found")
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, searchTerm string) ([]*model.Patient, error) {
	query := `
		SELECT id, name, record_number, status, created_by,
			date_of_birth, id_number, address, phone, created_at, updated_at
		FROM patients
		WHERE deleted_at IS NULL
			AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR record_number = $1)
		ORDER BY name
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, searchTerm); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PatientStatus) error {
	query := `
		UPDATE patients
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update patient status: %w", err)
	}
	return requireRow(result, "patient")
}

func (r *patientRepository) UpdatePersonalData(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET date_of_birth = $1, id_number = $2, address = $3, phone = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		patient.DateOfBirth,
		patient.IDNumber,
		patient.Address,
		patient.Phone,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient personal data: %w", err)
	}
	return requireRow(result, "patient")
}
