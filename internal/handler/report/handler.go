package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/middleware"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/report"
)

type Handler struct {
	service *report.Service
	guards  *middleware.AuthzMiddleware
}

func NewHandler(service *report.Service, guards *middleware.AuthzMiddleware) *Handler {
	return &Handler{
		service: service,
		guards:  guards,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports", h.guards.RequireManagePatients())
	{
		reports.GET("/consistency", h.ConsistencyReport)
	}
}

func (h *Handler) ConsistencyReport(c *gin.Context) {
	result, err := h.service.Consistency(c.Request.Context())
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
