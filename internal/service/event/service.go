package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/audit"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/authz"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/prefetch"
	"github.com/carlosapgomes/eqmd-sub007/pkg/errors"
)

// Authorizer is the slice of the decision engine this service uses.
type Authorizer interface {
	CanEditEvent(ctx context.Context, user *model.User, event *model.Event) bool
	CanDeleteEvent(ctx context.Context, user *model.User, event *model.Event) bool
	InvalidateObject(ctx context.Context, objectID uuid.UUID)
}

// EventView is a clinical entry decorated for a list view: resolved
// creator name plus the acting user's edit and delete decisions,
// computed against prefetched data.
type EventView struct {
	*model.Event
	CreatorName string `json:"creator_name"`
	CanEdit     bool   `json:"can_edit"`
	CanDelete   bool   `json:"can_delete"`
}

type Service struct {
	repo    repository.EventRepository
	authz   Authorizer
	loader  *prefetch.Loader
	auditor *audit.Service
}

func NewService(repo repository.EventRepository, authorizer Authorizer, loader *prefetch.Loader, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		authz:   authorizer,
		loader:  loader,
		auditor: auditor,
	}
}

// Create records a clinical entry. The creator and timestamp stamped
// here are what the edit window is measured against.
func (s *Service) Create(ctx context.Context, actor *model.User, patientID uuid.UUID, req *model.CreateEventRequest) (*model.Event, error) {
	if actor == nil {
		return nil, errors.Forbidden(fmt.Errorf("no acting user"))
	}

	event := &model.Event{
		PatientID: patientID,
		CreatedBy: actor.ID,
		Type:      model.EventType(req.Type),
		Content:   req.Content,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.auditor.LogChange(ctx, actor.ID, "event.create", event.ID)
	return event, nil
}

// ListForPatient returns the patient's entries, newest first, decorated
// with per-entry edit/delete decisions. Creators are resolved in one
// batched lookup; no per-entry fetches happen while decisions are
// computed.
func (s *Service) ListForPatient(ctx context.Context, actor *model.User, patientID uuid.UUID) ([]EventView, error) {
	events, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	withCreators, err := s.loader.EventsWithCreators(ctx, events)
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(withCreators))
	for _, item := range withCreators {
		view := EventView{
			Event:     item.Event,
			CanEdit:   s.authz.CanEditEvent(ctx, actor, item.Event),
			CanDelete: s.authz.CanDeleteEvent(ctx, actor, item.Event),
		}
		if item.Creator != nil {
			view.CreatorName = item.Creator.Name
		}
		views = append(views, view)
	}
	return views, nil
}

// Update edits an entry if the actor is its creator and the edit window
// has not elapsed.
func (s *Service) Update(ctx context.Context, actor *model.User, id uuid.UUID, req *model.UpdateEventRequest) error {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("event", err)
	}

	if !s.authz.CanEditEvent(ctx, actor, event) {
		s.logDenial(ctx, actor, authz.PermEditEvent, id)
		return errors.Forbidden(nil)
	}

	event.Content = req.Content
	if err := s.repo.Update(ctx, event); err != nil {
		return err
	}

	s.authz.InvalidateObject(ctx, id)
	s.auditor.LogChange(ctx, actor.ID, "event.update", id)
	return nil
}

// Delete soft-deletes an entry under the same creator-within-window
// rule, evaluated against the delete window.
func (s *Service) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("event", err)
	}

	if !s.authz.CanDeleteEvent(ctx, actor, event) {
		s.logDenial(ctx, actor, authz.PermDeleteEvent, id)
		return errors.Forbidden(nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.authz.InvalidateObject(ctx, id)
	s.auditor.LogChange(ctx, actor.ID, "event.delete", id)
	return nil
}

func (s *Service) logDenial(ctx context.Context, actor *model.User, permission string, objectID uuid.UUID) {
	actorID := uuid.Nil
	if actor != nil {
		actorID = actor.ID
	}
	s.auditor.LogDenial(ctx, actorID, permission, objectID, "creator/time-window rule refused")
}
