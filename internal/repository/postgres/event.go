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

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `
		INSERT INTO events (id, patient_id, created_by, type, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PatientID,
		event.CreatedBy,
		event.Type,
		event.Content,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *eventRepository) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `
		SELECT id, patient_id, created_by, type, content, created_at, updated_at
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`
	var event model.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Event, error) {
	query := `
		SELECT id, patient_id, created_by, type, content, created_at, updated_at
		FROM events
		WHERE patient_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var events []*model.Event
	if err := r.db.SelectContext(ctx, &events, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	query := `
		UPDATE events
		SET content = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	event.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query, event.Content, event.UpdatedAt, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireRow(result, "event")
}

// Delete soft-deletes the entry; clinical records are never hard
// deleted.
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE events
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireRow(result, "event")
}
