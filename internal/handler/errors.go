package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"net/http"

	apperrors "github.com/carlosapgomes/eqmd-sub007/pkg/errors"
)

// WriteError maps a service error to its HTTP response. AppError
// messages are already safe for callers; anything else collapses to a
// generic 500.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
