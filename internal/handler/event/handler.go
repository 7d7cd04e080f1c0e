package event

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/middleware"
	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/event"
)

type Handler struct {
	service *event.Service
	guards  *middleware.AuthzMiddleware
}

func NewHandler(service *event.Service, guards *middleware.AuthzMiddleware) *Handler {
	return &Handler{
		service: service,
		guards:  guards,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id/events", h.guards.RequirePatientAccess("id"))
	{
		patients.GET("", h.ListEvents)
		patients.POST("", h.CreateEvent)
	}

	events := r.Group("/events")
	{
		events.PUT("/:eventId", h.guards.RequireEventEdit("eventId"), h.UpdateEvent)
		events.DELETE("/:eventId", h.guards.RequireEventDelete("eventId"), h.DeleteEvent)
	}
}

// ListEvents returns the patient's entries decorated with the acting
// user's per-entry edit/delete decisions, resolved from one batched
// creator lookup.
func (h *Handler) ListEvents(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	views, err := h.service.ListForPatient(c.Request.Context(), user, patientID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(views))
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	user, _ := middleware.CurrentUser(c)
	created, err := h.service.Create(c.Request.Context(), user, patientID, &req)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req model.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.service.Update(c.Request.Context(), user, id, &req); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
