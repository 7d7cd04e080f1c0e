package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/middleware"
	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/user"
)

type Handler struct {
	service *user.Service
	guards  *middleware.AuthzMiddleware
}

func NewHandler(service *user.Service, guards *middleware.AuthzMiddleware) *Handler {
	return &Handler{
		service: service,
		guards:  guards,
	}
}

// RegisterRoutes exposes account administration. Everything here is
// management-gated: these mutations change role context and trigger
// user-level cache invalidation.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users", h.guards.RequireManagePatients())
	{
		users.POST("", h.ProvisionUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
		users.PUT("/:id/profession", h.ChangeProfession)
		users.POST("/:id/groups", h.AddToGroup)
		users.DELETE("/:id/groups/:group", h.RemoveFromGroup)
	}
}

func (h *Handler) ProvisionUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Provision(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

type changeProfessionRequest struct {
	Profession string `json:"profession" binding:"required,oneof=doctor resident nurse physiotherapist student"`
}

func (h *Handler) ChangeProfession(c *gin.Context) {
	var req changeProfessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	if err := h.service.ChangeProfession(c.Request.Context(), id, model.ProfessionFromString(req.Profession)); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

type groupRequest struct {
	Group string `json:"group" binding:"required"`
}

func (h *Handler) AddToGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	if err := h.service.AddToGroup(c.Request.Context(), id, req.Group); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RemoveFromGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	if err := h.service.RemoveFromGroup(c.Request.Context(), id, c.Param("group")); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
