// Package prefetch resolves the related data permission checks need
// for whole collections up front, so iterating a list view evaluates
// predicates against already-loaded users instead of fetching per item.
package prefetch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/pkg/metrics"
)

// UserSource is the single batched lookup the loader depends on.
type UserSource interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
}

// EventWithCreator pairs an event with its resolved creator. Creator is
// nil when the account no longer resolves; predicates treat that as
// deny.
type EventWithCreator struct {
	Event   *model.Event
	Creator *model.User
}

// PatientWithCreator pairs a patient with its resolved creator.
type PatientWithCreator struct {
	Patient *model.Patient
	Creator *model.User
}

// Loader batch-resolves creators for collections of target objects.
type Loader struct {
	users   UserSource
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// NewLoader creates a batch loader. metrics may be nil.
func NewLoader(users UserSource, m *metrics.Metrics, logger *zerolog.Logger) *Loader {
	return &Loader{
		users:   users,
		metrics: m,
		logger:  logger,
	}
}

// EventsWithCreators returns the input events, in order, each paired
// with its creator. One batched lookup regardless of collection size;
// membership and order of the input are never altered.
func (l *Loader) EventsWithCreators(ctx context.Context, events []*model.Event) ([]EventWithCreator, error) {
	ids := make([]uuid.UUID, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.CreatedBy)
	}

	creators, err := l.resolve(ctx, "events", ids)
	if err != nil {
		return nil, err
	}

	result := make([]EventWithCreator, 0, len(events))
	for _, event := range events {
		result = append(result, EventWithCreator{
			Event:   event,
			Creator: creators[event.CreatedBy],
		})
	}
	return result, nil
}

// PatientsWithCreators is the patient-shaped counterpart of
// EventsWithCreators.
func (l *Loader) PatientsWithCreators(ctx context.Context, patients []*model.Patient) ([]PatientWithCreator, error) {
	ids := make([]uuid.UUID, 0, len(patients))
	for _, patient := range patients {
		ids = append(ids, patient.CreatedBy)
	}

	creators, err := l.resolve(ctx, "patients", ids)
	if err != nil {
		return nil, err
	}

	result := make([]PatientWithCreator, 0, len(patients))
	for _, patient := range patients {
		result = append(result, PatientWithCreator{
			Patient: patient,
			Creator: creators[patient.CreatedBy],
		})
	}
	return result, nil
}

func (l *Loader) resolve(ctx context.Context, collection string, ids []uuid.UUID) (map[uuid.UUID]*model.User, error) {
	distinct := dedupe(ids)
	if len(distinct) == 0 {
		return nil, nil
	}

	start := time.Now()
	users, err := l.users.ListByIDs(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-load creators: %w", err)
	}

	if l.metrics != nil {
		l.metrics.BatchLoads.WithLabelValues(collection).Inc()
		l.metrics.BatchLoadLatency.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	}

	byID := make(map[uuid.UUID]*model.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	if len(byID) < len(distinct) {
		l.logger.Warn().Int("requested", len(distinct)).Int("resolved", len(byID)).
			Str("collection", collection).Msg("some creators did not resolve")
	}
	return byID, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct
}
