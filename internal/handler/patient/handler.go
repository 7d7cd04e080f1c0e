package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/middleware"
	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/patient"
)

type Handler struct {
	service *patient.Service
	guards  *middleware.AuthzMiddleware
}

func NewHandler(service *patient.Service, guards *middleware.AuthzMiddleware) *Handler {
	return &Handler{
		service: service,
		guards:  guards,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.guards.RequireManagePatients(), h.RegisterPatient)
		patients.GET("", h.SearchPatients)
		patients.GET("/:id", h.guards.RequirePatientAccess("id"), h.GetPatient)
		patients.PUT("/:id/status", h.ChangeStatus)
		patients.PUT("/:id/personal-data", h.UpdatePersonalData)
	}
}

type registerPatientRequest struct {
	Name         string `json:"name" binding:"required"`
	RecordNumber string `json:"record_number" binding:"required"`
	Status       string `json:"status" binding:"omitempty,patient_status"`
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req registerPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, _ := middleware.CurrentUser(c)
	p := &model.Patient{
		Name:         req.Name,
		RecordNumber: req.RecordNumber,
		Status:       model.PatientStatus(req.Status),
	}
	if err := h.service.Register(c.Request.Context(), user, p); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	patients, err := h.service.Search(c.Request.Context(), user, c.Query("q"))
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

// GetPatient runs behind RequirePatientAccess; the guard already loaded
// and authorized the record.
func (h *Handler) GetPatient(c *gin.Context) {
	value, exists := c.Get(middleware.ContextPatientKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(value))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	var req model.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.service.ChangeStatus(c.Request.Context(), user, id, model.PatientStatus(req.Status)); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"status": req.Status}))
}

func (h *Handler) UpdatePersonalData(c *gin.Context) {
	var req model.UpdatePersonalDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.service.UpdatePersonalData(c.Request.Context(), user, id, &req); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
