package modules

import (
	"github.com/gin-gonic/gin"

	authapp "github.com/registery/auth-api/internal/application"
	handlers "github.com/registery/auth-api/internal/interface/http"
	"github.com/registery/auth-api/internal/interface/middleware"
	"github.com/registery/auth-api/pkg/helpers"
)

// AuthModule wires the authentication handlers into routes.
// Public: POST /register, POST /login, POST /auth/google, GET /health
// Protected: GET /me, POST /logout, POST /me/avatar
type AuthModule struct {
	Handler *handlers.AuthHandler
	Svc     *authapp.Service
	Tokens  *helpers.TokenManager
}

func NewAuthModule(h *handlers.AuthHandler, svc *authapp.Service, tokens *helpers.TokenManager) *AuthModule {
	return &AuthModule{Handler: h, Svc: svc, Tokens: tokens}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)
	rg.POST("/auth/google", m.Handler.GoogleAuth)
	rg.GET("/health", m.Handler.Health)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc, m.Tokens))
	{
		auth.GET("/me", m.Handler.Me)
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/me/avatar", m.Handler.UploadAvatar)
	}
}
