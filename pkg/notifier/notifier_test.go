package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWelcomeMessageSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get-welcome-message", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Hey Alice, great to have you!"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil, nil)
	got := c.WelcomeMessage(context.Background(), "Alice")
	assert.Equal(t, "Hey Alice, great to have you!", got)
}

func TestWelcomeMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil, nil)
	assert.Equal(t, "Welcome, Bob!", c.WelcomeMessage(context.Background(), "Bob"))
}

func TestWelcomeMessageMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil, nil)
	assert.Equal(t, "Welcome, Bob!", c.WelcomeMessage(context.Background(), "Bob"))
}

func TestWelcomeMessageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"message":"too late"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, nil, nil)
	assert.Equal(t, "Welcome, Carol!", c.WelcomeMessage(context.Background(), "Carol"))
}

func TestWelcomeMessageUnconfigured(t *testing.T) {
	c := NewClient("", time.Second, nil, nil)
	assert.Equal(t, "Welcome, Dave!", c.WelcomeMessage(context.Background(), "Dave"))

	var nilClient *Client
	assert.Equal(t, "Welcome, Dave!", nilClient.WelcomeMessage(context.Background(), "Dave"))
}
