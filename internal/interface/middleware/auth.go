package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authapp "github.com/registery/auth-api/internal/application"
	"github.com/registery/auth-api/internal/domain/entity"
	"github.com/registery/auth-api/pkg/helpers"
	"github.com/registery/auth-api/pkg/response"
)

const (
	ctxUserKey      = "currentUser"
	ctxUserEmailKey = "userEmail"
)

// Auth validates the bearer token and loads the subject's user record.
// A valid token whose subject no longer exists is rejected; verification
// itself is stateless and needs only the shared secret.
func Auth(svc *authapp.Service, tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Err(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		email, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, helpers.ErrTokenExpired) {
				response.Err(c, http.StatusUnauthorized, "token has expired", nil)
				return
			}
			response.Err(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}

		u, err := svc.GetProfile(c.Request.Context(), email)
		if err != nil {
			response.Err(c, http.StatusUnauthorized, "user not found", nil)
			return
		}

		c.Set(ctxUserEmailKey, email)
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the user loaded by Auth, or nil outside it.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}
