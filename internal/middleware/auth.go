package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/pkg/auth"
)

// ContextUserKey is where the authenticated user lives in the gin
// context.
const ContextUserKey = "current_user"

type AuthMiddleware struct {
	jwtSvc *auth.JWTService
	users  repository.UserRepository
}

func NewAuthMiddleware(jwtSvc *auth.JWTService, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc: jwtSvc,
		users:  users,
	}
}

// Authenticate verifies the bearer token and loads the acting user into
// the request context. Deactivated accounts are rejected here, before
// any permission check runs.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		user, err := m.users.Get(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		user.Authenticated = true
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser extracts the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok && user != nil
}

// UserFromContext is the service-layer counterpart of CurrentUser for
// code that only sees a context.Context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(ContextUserKey).(*model.User)
	return user, ok && user != nil
}
