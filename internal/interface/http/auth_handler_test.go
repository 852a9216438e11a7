package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registery/auth-api/config"
	authapp "github.com/registery/auth-api/internal/application"
	"github.com/registery/auth-api/internal/infrastructure/memory"
	"github.com/registery/auth-api/internal/interface/middleware"
	"github.com/registery/auth-api/pkg/googleauth"
	"github.com/registery/auth-api/pkg/helpers"
	"github.com/registery/auth-api/pkg/validation"
)

type stubVerifier struct {
	claims *googleauth.Claims
	err    error
}

func (s *stubVerifier) Verify(ctx context.Context, rawToken string) (*googleauth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.claims
	return &cp, nil
}

type testEnv struct {
	engine   *gin.Engine
	svc      *authapp.Service
	repo     *memory.UserRepository
	verifier *stubVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	repo := memory.NewUserRepository()
	verifier := &stubVerifier{}
	tokens := helpers.NewTokenManager("test-secret", time.Hour)
	svc := authapp.NewService(repo, tokens, verifier, nil, nil)

	cfg := &config.Config{GoogleClientID: "web-client", DBHost: "localhost", DBName: "registery"}
	h := NewAuthHandler(svc, cfg, nil)

	engine := gin.New()
	engine.POST("/register", h.Register)
	engine.POST("/login", h.Login)
	engine.POST("/auth/google", h.GoogleAuth)
	engine.GET("/health", h.Health)
	auth := engine.Group("/", middleware.Auth(svc, tokens))
	auth.GET("/me", h.Me)
	auth.POST("/logout", h.Logout)

	return &testEnv{engine: engine, svc: svc, repo: repo, verifier: verifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerBody(email string) map[string]string {
	return map[string]string{
		"fullname":         "Alice Example",
		"email":            email,
		"password":         "hunter2hunter2",
		"confirm_password": "hunter2hunter2",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Registration successful!", body["message"])
	assert.Equal(t, "Welcome, Alice Example!", body["toast_content"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "Alice Example", user["fullname"])
}

func TestRegisterDuplicateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil).Code)
	w := env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already registered", decode(t, w)["message"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	short := registerBody("alice@example.com")
	short["password"] = "short"
	short["confirm_password"] = "short"
	w := env.do(t, http.MethodPost, "/register", short, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]any)
	assert.Contains(t, details, "password")

	mismatch := registerBody("alice@example.com")
	mismatch["confirm_password"] = "different-password"
	w = env.do(t, http.MethodPost, "/register", mismatch, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details = decode(t, w)["details"].(map[string]any)
	assert.Contains(t, details, "confirm_password")
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil)

	w := env.do(t, http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "Welcome back, Alice Example! 👋", body["toast_content"])
	assert.NotEmpty(t, body["access_token"])
}

func TestLoginInvalidCredentialsShape(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil)

	wrong := env.do(t, http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil)
	unknown := env.do(t, http.MethodPost, "/login", map[string]string{"email": "ghost@example.com", "password": "wrong-password"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String(), "error bodies must be indistinguishable")
}

func TestLoginGoogleProviderAccount(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.claims = &googleauth.Claims{Email: "g@example.com", FullName: "Gina", SubjectID: "sub"}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/auth/google", map[string]string{"id_token": "raw"}, nil).Code)

	w := env.do(t, http.MethodPost, "/login", map[string]string{"email": "g@example.com", "password": "whatever-pass"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["message"], "Google Sign-In")
}

func TestGoogleAuthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.claims = &googleauth.Claims{Email: "g@example.com", FullName: "Gina", SubjectID: "sub", PictureURL: "https://pic"}

	w := env.do(t, http.MethodPost, "/auth/google", map[string]string{"id_token": "raw"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Registration successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "https://pic", user["picture"])

	// Second sign-in is a login, not a registration.
	w = env.do(t, http.MethodPost, "/auth/google", map[string]string{"id_token": "raw"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", decode(t, w)["message"])
	assert.Equal(t, 1, env.repo.Count())
}

func TestGoogleAuthTokenAlias(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.claims = &googleauth.Claims{Email: "g@example.com", FullName: "Gina", SubjectID: "sub"}

	w := env.do(t, http.MethodPost, "/auth/google", map[string]string{"idToken": "raw"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGoogleAuthMissingToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/google", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing id_token or idToken in request body", decode(t, w)["message"])
}

func TestGoogleAuthVerifierErrors(t *testing.T) {
	env := newTestEnv(t)

	env.verifier.err = googleauth.ErrVerificationFailed
	w := env.do(t, http.MethodPost, "/auth/google", map[string]string{"id_token": "raw"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.verifier.err = googleauth.ErrMissingEmailClaim
	w = env.do(t, http.MethodPost, "/auth/google", map[string]string{"id_token": "raw"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	reg := decode(t, env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil))
	token := reg["access_token"].(string)

	w := env.do(t, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "Alice Example", body["fullname"])
	assert.Equal(t, "email", body["provider"])
}

func TestMeTokenFailures(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil)

	// No header at all.
	w := env.do(t, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Syntactically invalid token.
	w = env.do(t, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", decode(t, w)["message"])

	// Expired token, signed with the same secret.
	expired, _, err := helpers.NewTokenManager("test-secret", -time.Minute).Issue("alice@example.com")
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token has expired", decode(t, w)["message"])
}

func TestMeDeletedAccount(t *testing.T) {
	env := newTestEnv(t)
	reg := decode(t, env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil))
	token := reg["access_token"].(string)

	env.repo.Delete("alice@example.com")
	w := env.do(t, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "user not found", decode(t, w)["message"])
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	reg := decode(t, env.do(t, http.MethodPost, "/register", registerBody("alice@example.com"), nil))
	token := reg["access_token"].(string)

	w := env.do(t, http.MethodPost, "/logout", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decode(t, w)["message"])

	// Stateless tokens: the same token still works afterwards.
	w = env.do(t, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["google_clients_configured"])
	assert.Equal(t, true, body["database_configured"])
	assert.NotContains(t, w.Body.String(), "secret")
}
