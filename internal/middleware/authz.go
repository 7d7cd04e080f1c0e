package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/audit"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/authz"
)

// Context keys for targets loaded by the guards, so handlers behind a
// guard do not fetch the object a second time.
const (
	ContextPatientKey = "guard_patient"
	ContextEventKey   = "guard_event"
)

// Authorizer is the decision surface the guards consume.
type Authorizer interface {
	CanAccessPatient(ctx context.Context, user *model.User, patient *model.Patient) bool
	CanEditEvent(ctx context.Context, user *model.User, event *model.Event) bool
	CanDeleteEvent(ctx context.Context, user *model.User, event *model.Event) bool
	CanManagePatients(ctx context.Context, user *model.User) bool
}

// AuthzMiddleware holds the stateless request-boundary guards. Each
// guard evaluates one predicate before the wrapped handler runs and
// refuses with a generic forbidden body on deny. The denial reason is
// written to the audit trail only; the response never says whether
// role, ownership, or the time window failed.
type AuthzMiddleware struct {
	authz    Authorizer
	patients repository.PatientRepository
	events   repository.EventRepository
	auditor  *audit.Service
}

func NewAuthzMiddleware(authorizer Authorizer, patients repository.PatientRepository, events repository.EventRepository, auditor *audit.Service) *AuthzMiddleware {
	return &AuthzMiddleware{
		authz:    authorizer,
		patients: patients,
		events:   events,
		auditor:  auditor,
	}
}

// RequireManagePatients guards the user-level management surface.
func (m *AuthzMiddleware) RequireManagePatients() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !m.authz.CanManagePatients(c.Request.Context(), user) {
			m.deny(c, user, authz.PermManagePatients, uuid.Nil)
			return
		}
		c.Next()
	}
}

// RequirePatientAccess guards routes addressing a patient by the given
// path parameter and stashes the loaded record in the context.
func (m *AuthzMiddleware) RequirePatientAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
			return
		}

		patient, err := m.patients.Get(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
			return
		}

		user, ok := CurrentUser(c)
		if !ok || !m.authz.CanAccessPatient(c.Request.Context(), user, patient) {
			m.deny(c, user, authz.PermAccessPatient, id)
			return
		}

		c.Set(ContextPatientKey, patient)
		c.Next()
	}
}

// RequireEventEdit guards event edit routes with the creator-within-
// window rule.
func (m *AuthzMiddleware) RequireEventEdit(param string) gin.HandlerFunc {
	return m.requireEvent(param, authz.PermEditEvent, m.authz.CanEditEvent)
}

// RequireEventDelete is RequireEventEdit against the delete window.
func (m *AuthzMiddleware) RequireEventDelete(param string) gin.HandlerFunc {
	return m.requireEvent(param, authz.PermDeleteEvent, m.authz.CanDeleteEvent)
}

func (m *AuthzMiddleware) requireEvent(param, permission string, predicate func(context.Context, *model.User, *model.Event) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
			return
		}

		event, err := m.events.Get(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, handler.NewErrorResponse("event not found"))
			return
		}

		user, ok := CurrentUser(c)
		if !ok || !predicate(c.Request.Context(), user, event) {
			m.deny(c, user, permission, id)
			return
		}

		c.Set(ContextEventKey, event)
		c.Next()
	}
}

func (m *AuthzMiddleware) deny(c *gin.Context, user *model.User, permission string, objectID uuid.UUID) {
	userID := uuid.Nil
	if user != nil {
		userID = user.ID
	}
	m.auditor.LogDenial(c.Request.Context(), userID, permission, objectID, "guard refused request")
	c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("forbidden"))
}
