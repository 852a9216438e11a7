package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/registery/auth-api/internal/domain/entity"
	repo "github.com/registery/auth-api/internal/domain/repository"
	"github.com/registery/auth-api/pkg/googleauth"
	"github.com/registery/auth-api/pkg/helpers"
	"github.com/registery/auth-api/pkg/mailer"
	"github.com/registery/auth-api/pkg/notifier"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWrongProvider rejects a password login against a Google account.
	// Deliberately more specific than ErrInvalidCredentials: the account
	// holder is told which flow to use.
	ErrWrongProvider = errors.New("this email is registered with Google. Please use Google Sign-In")
	// ErrPasswordAccount rejects a Google sign-in against a password account
	// when attaching to existing accounts is disabled.
	ErrPasswordAccount = errors.New("this email is registered with a password. Please sign in with your email and password")
	ErrDuplicateEmail  = repo.ErrDuplicateEmail
	ErrUserNotFound    = errors.New("user not found")
)

// IdentityVerifier validates an external identity assertion and extracts
// verified claims. Implemented by googleauth.Verifier.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*googleauth.Claims, error)
}

// NotifierPort resolves a personalized greeting. Implementations never fail;
// they return a default greeting instead.
type NotifierPort interface {
	WelcomeMessage(ctx context.Context, fullName string) string
}

// Service is the account reconciler: it maps verified identity (local
// credentials or Google claims) onto persisted user records and mints
// session tokens.
type Service struct {
	Repo     repo.UserRepository
	Tokens   *helpers.TokenManager
	Google   IdentityVerifier
	Notifier NotifierPort
	Logger   *logrus.Logger

	// Optional side-channel deps; all nil-safe and best-effort.
	Pub          *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string
	GCS          *storage.Client
	GCSBucket    string

	// AttachExisting controls whether a Google sign-in may attach to an
	// account created through the password flow with the same email.
	AttachExisting bool
}

func NewService(r repo.UserRepository, tokens *helpers.TokenManager, google IdentityVerifier, notif NotifierPort, logger *logrus.Logger) *Service {
	return &Service{
		Repo:           r,
		Tokens:         tokens,
		Google:         google,
		Notifier:       notif,
		Logger:         logger,
		AttachExisting: true,
	}
}

// AuthResult is returned by every successful authentication operation.
type AuthResult struct {
	User        *entity.User
	Token       string
	TokenExpiry time.Time
	Message     string
	Toast       string
	Created     bool
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// Register creates an email-provider account. Password length and
// confirmation equality are validated before this is called. The unique
// email index is the authoritative duplicate guard; the lookup below only
// short-circuits the common case.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:        in.Email,
		FullName:     in.FullName,
		Provider:     entity.ProviderEmail,
		PasswordHash: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	greeting := s.greet(ctx, u.FullName)
	s.enqueueWelcomeEmail(ctx, u, greeting)
	s.indexUser(ctx, u)

	token, exp, err := s.Tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"email": u.Email, "provider": u.Provider}).Info("user registered")
	}
	return &AuthResult{
		User:        u,
		Token:       token,
		TokenExpiry: exp,
		Message:     "Registration successful!",
		Toast:       greeting,
		Created:     true,
	}, nil
}

// Login authenticates an email-provider account. Unknown email and wrong
// password yield the same error; only a provider mismatch is distinguished.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Provider != entity.ProviderEmail {
		return nil, ErrWrongProvider
	}
	if !helpers.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}

	name := u.FullName
	if name == "" {
		name = "User"
	}
	return &AuthResult{
		User:        u,
		Token:       token,
		TokenExpiry: exp,
		Message:     "Login successful",
		Toast:       fmt.Sprintf("Welcome back, %s! 👋", name),
	}, nil
}

// GoogleSignIn verifies a Google ID token and reconciles the claims against
// the user store: create on first sign-in, refresh display fields otherwise.
// Two concurrent first-time sign-ins for one email race on the unique index;
// the loser falls back to the update path instead of failing.
func (s *Service) GoogleSignIn(ctx context.Context, rawToken string) (*AuthResult, error) {
	claims, err := s.Google.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.GetByEmail(ctx, claims.Email)
	if errors.Is(err, repo.ErrNotFound) {
		created := &entity.User{
			Email:      claims.Email,
			FullName:   claims.FullName,
			Provider:   entity.ProviderGoogle,
			GoogleID:   claims.SubjectID,
			PictureURL: claims.PictureURL,
		}
		switch cerr := s.Repo.Create(ctx, created); {
		case cerr == nil:
			return s.googleCreated(ctx, created)
		case errors.Is(cerr, repo.ErrDuplicateEmail):
			// Lost the race to a concurrent first sign-in; treat the
			// existing record as the target.
			u, err = s.Repo.GetByEmail(ctx, claims.Email)
			if err != nil {
				return nil, err
			}
		default:
			return nil, cerr
		}
	} else if err != nil {
		return nil, err
	}

	return s.googleExisting(ctx, u, claims)
}

func (s *Service) googleCreated(ctx context.Context, u *entity.User) (*AuthResult, error) {
	s.enqueueWelcomeEmail(ctx, u, "")
	s.indexUser(ctx, u)

	token, exp, err := s.Tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"email": u.Email, "provider": u.Provider}).Info("user registered")
	}
	return &AuthResult{
		User:        u,
		Token:       token,
		TokenExpiry: exp,
		Message:     "Registration successful",
		Toast:       fmt.Sprintf("Welcome to the platform, %s! 👋", u.FullName),
		Created:     true,
	}, nil
}

func (s *Service) googleExisting(ctx context.Context, u *entity.User, claims *googleauth.Claims) (*AuthResult, error) {
	if !s.AttachExisting && u.Provider != entity.ProviderGoogle {
		return nil, ErrPasswordAccount
	}

	if u.FullName != claims.FullName || u.PictureURL != claims.PictureURL {
		if err := s.Repo.UpdateProfile(ctx, u.Email, claims.FullName, claims.PictureURL); err != nil {
			return nil, err
		}
		u.FullName = claims.FullName
		u.PictureURL = claims.PictureURL
		s.indexUser(ctx, u)
	}

	token, exp, err := s.Tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:        u,
		Token:       token,
		TokenExpiry: exp,
		Message:     "Login successful",
		Toast:       fmt.Sprintf("Welcome back, %s! 👋", u.FullName),
	}, nil
}

// GetProfile loads the record for a verified token subject.
func (s *Service) GetProfile(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UploadAvatar stores an avatar in GCS and points picture_url at it.
func (s *Service) UploadAvatar(ctx context.Context, email string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("avatar storage not configured")
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrUserNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.ID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	if err := s.Repo.UpdateProfile(ctx, u.Email, u.FullName, url); err != nil {
		return "", err
	}
	u.PictureURL = url
	s.indexUser(ctx, u)
	return url, nil
}

func (s *Service) greet(ctx context.Context, fullName string) string {
	if s.Notifier == nil {
		return notifier.DefaultMessage(fullName)
	}
	return s.Notifier.WelcomeMessage(ctx, fullName)
}

func (s *Service) enqueueWelcomeEmail(ctx context.Context, u *entity.User, greeting string) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{To: u.Email, FullName: u.FullName, Greeting: greeting}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email enqueue failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"full_name":   u.FullName,
		"provider":    u.Provider,
		"picture_url": u.PictureURL,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("email", u.Email).Warn("es index response error")
	}
}
