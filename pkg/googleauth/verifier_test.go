package googleauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newTestVerifier(t *testing.T, audiences []string, validate validateFunc) *Verifier {
	t.Helper()
	v, err := NewVerifier(audiences, nil)
	require.NoError(t, err)
	v.validate = validate
	return v
}

func TestNewVerifierRequiresAudience(t *testing.T) {
	_, err := NewVerifier(nil, nil)
	assert.ErrorIs(t, err, ErrNoAudiences)
}

func TestVerifyFirstAudienceWins(t *testing.T) {
	var tried []string
	v := newTestVerifier(t, []string{"web-client", "android-client"}, func(ctx context.Context, token, aud string) (*idtoken.Payload, error) {
		tried = append(tried, aud)
		return &idtoken.Payload{
			Subject: "google-sub-1",
			Claims:  map[string]interface{}{"email": "a@example.com", "name": "Alice", "picture": "https://pic"},
		}, nil
	})

	claims, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"web-client"}, tried, "verification should short-circuit on first success")
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.FullName)
	assert.Equal(t, "google-sub-1", claims.SubjectID)
	assert.Equal(t, "https://pic", claims.PictureURL)
}

func TestVerifyFallsBackToLaterAudience(t *testing.T) {
	v := newTestVerifier(t, []string{"web-client", "android-client"}, func(ctx context.Context, token, aud string) (*idtoken.Payload, error) {
		if aud != "android-client" {
			return nil, errors.New("audience mismatch")
		}
		return &idtoken.Payload{Subject: "sub", Claims: map[string]interface{}{"email": "b@example.com"}}, nil
	})

	claims, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", claims.Email)
}

func TestVerifyAllAudiencesFail(t *testing.T) {
	v := newTestVerifier(t, []string{"web-client", "android-client"}, func(ctx context.Context, token, aud string) (*idtoken.Payload, error) {
		return nil, errors.New("bad token")
	})

	_, err := v.Verify(context.Background(), "raw-token")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyMissingEmailClaim(t *testing.T) {
	v := newTestVerifier(t, []string{"web-client"}, func(ctx context.Context, token, aud string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Subject: "sub", Claims: map[string]interface{}{"name": "No Email"}}, nil
	})

	_, err := v.Verify(context.Background(), "raw-token")
	assert.ErrorIs(t, err, ErrMissingEmailClaim)
	assert.NotErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyDefaultsDisplayName(t *testing.T) {
	v := newTestVerifier(t, []string{"web-client"}, func(ctx context.Context, token, aud string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Subject: "sub", Claims: map[string]interface{}{"email": "c@example.com"}}, nil
	})

	claims, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "User", claims.FullName)
	assert.Empty(t, claims.PictureURL)
}
