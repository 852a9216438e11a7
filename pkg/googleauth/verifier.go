package googleauth

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/idtoken"
)

var (
	// ErrVerificationFailed is returned when the assertion fails validation
	// against every accepted audience. The error deliberately does not say
	// which audiences were tried; each attempt is logged instead.
	ErrVerificationFailed = errors.New("invalid Google token")
	// ErrMissingEmailClaim is returned when a token verifies but carries no
	// email claim. This is a client error, not a verification failure.
	ErrMissingEmailClaim = errors.New("email not provided by Google")
	// ErrNoAudiences is a startup condition: the verifier cannot be built
	// without at least one accepted audience.
	ErrNoAudiences = errors.New("no Google client IDs configured")
)

// Claims are the attributes extracted from a verified Google ID token.
type Claims struct {
	Email      string
	FullName   string
	SubjectID  string
	PictureURL string
}

// validateFunc matches idtoken.Validate; swapped out in tests.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier validates Google ID tokens against an ordered set of accepted
// audiences, one per client application variant (web, android, ...).
type Verifier struct {
	audiences []string
	logger    *logrus.Logger
	validate  validateFunc
}

func NewVerifier(audiences []string, logger *logrus.Logger) (*Verifier, error) {
	if len(audiences) == 0 {
		return nil, ErrNoAudiences
	}
	return &Verifier{audiences: audiences, logger: logger, validate: idtoken.Validate}, nil
}

// Verify attempts each accepted audience in order; the first successful
// validation wins. It fails with ErrVerificationFailed only after all
// audiences have been tried.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	var payload *idtoken.Payload
	for _, aud := range v.audiences {
		p, err := v.validate(ctx, rawToken, aud)
		if err != nil {
			if v.logger != nil {
				v.logger.WithError(err).WithField("audience", truncate(aud, 20)).Debug("google token rejected for audience")
			}
			continue
		}
		if v.logger != nil {
			v.logger.WithField("audience", truncate(aud, 20)).Debug("google token verified")
		}
		payload = p
		break
	}
	if payload == nil {
		if v.logger != nil {
			v.logger.WithField("audiences_tried", len(v.audiences)).Warn("google token validation failed for all client IDs")
		}
		return nil, ErrVerificationFailed
	}

	claims := &Claims{
		Email:      stringClaim(payload.Claims, "email"),
		FullName:   stringClaim(payload.Claims, "name"),
		SubjectID:  payload.Subject,
		PictureURL: stringClaim(payload.Claims, "picture"),
	}
	if claims.Email == "" {
		return nil, ErrMissingEmailClaim
	}
	if claims.FullName == "" {
		claims.FullName = "User"
	}
	return claims, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
