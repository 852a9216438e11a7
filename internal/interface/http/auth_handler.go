package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/registery/auth-api/config"
	authapp "github.com/registery/auth-api/internal/application"
	"github.com/registery/auth-api/internal/interface/middleware"
	"github.com/registery/auth-api/pkg/googleauth"
	"github.com/registery/auth-api/pkg/response"
	"github.com/registery/auth-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *authapp.Service
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewAuthHandler(svc *authapp.Service, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type registerRequest struct {
	FullName        string `json:"fullname" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// googleRequest accepts both payload spellings; id_token wins when both are set.
type googleRequest struct {
	IDToken      string `json:"id_token"`
	IDTokenAlias string `json:"idToken"`
}

func (r *googleRequest) token() string {
	if r.IDToken != "" {
		return r.IDToken
	}
	return r.IDTokenAlias
}

type userSummary struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	Picture  string `json:"picture,omitempty"`
}

// authEnvelope is the success payload shared by register, login and google
// sign-in responses.
type authEnvelope struct {
	Message      string      `json:"message"`
	ToastContent string      `json:"toast_content"`
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	User         userSummary `json:"user"`
}

func envelope(res *authapp.AuthResult, includePicture bool) authEnvelope {
	u := userSummary{Email: res.User.Email, FullName: res.User.FullName}
	if includePicture {
		u.Picture = res.User.PictureURL
	}
	return authEnvelope{
		Message:      res.Message,
		ToastContent: res.Toast,
		AccessToken:  res.Token,
		TokenType:    "bearer",
		User:         u,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), authapp.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusCreated, envelope(res, false))
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, envelope(res, true))
}

// GoogleAuth handles POST /auth/google.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	raw := req.token()
	if raw == "" {
		response.Err(c, http.StatusBadRequest, "Missing id_token or idToken in request body", nil)
		return
	}

	res, err := h.Svc.GoogleSignIn(c.Request.Context(), raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, envelope(res, true))
}

// Me handles GET /me; the auth middleware has already loaded the user.
func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Err(c, http.StatusUnauthorized, "user not found", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"email":    u.Email,
		"fullname": u.FullName,
		"picture":  u.PictureURL,
		"provider": u.Provider,
	})
}

// Logout handles POST /logout. Tokens are stateless, so there is nothing to
// invalidate server-side; the client discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// UploadAvatar handles POST /me/avatar (multipart, field "file").
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Err(c, http.StatusUnauthorized, "user not found", nil)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Err(c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Err(c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), u.Email, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"picture": url})
}

// Health handles GET /health with configuration-presence flags only.
func (h *AuthHandler) Health(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{
		"status":                    "ok",
		"google_clients_configured": len(h.Cfg.GoogleClientIDs()),
		"database_configured":       h.Cfg.DBHost != "" && h.Cfg.DBName != "",
	})
}

// fail maps application and verifier errors onto HTTP statuses.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authapp.ErrDuplicateEmail),
		errors.Is(err, authapp.ErrWrongProvider),
		errors.Is(err, authapp.ErrPasswordAccount),
		errors.Is(err, googleauth.ErrMissingEmailClaim):
		response.Err(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, authapp.ErrInvalidCredentials),
		errors.Is(err, googleauth.ErrVerificationFailed),
		errors.Is(err, authapp.ErrUserNotFound):
		response.Err(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"ip":         clientIP(c),
			}).Error("auth request failed")
		}
		response.Err(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
