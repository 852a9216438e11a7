package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultMessage is the deterministic greeting used whenever the external
// service cannot provide one.
func DefaultMessage(fullName string) string {
	return fmt.Sprintf("Welcome, %s!", fullName)
}

// Client calls the external welcome-message service. Every failure mode
// (timeout, network error, non-200 status, malformed body) is swallowed and
// replaced by the default greeting; callers only ever see a resolved string.
type Client struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
	Redis   *redis.Client // optional greeting cache
	Logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, rdb *redis.Client, logger *logrus.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: timeout,
		HTTP:    &http.Client{},
		Redis:   rdb,
		Logger:  logger,
	}
}

func cacheKey(fullName string) string {
	return "welcome:greeting:" + fullName
}

// WelcomeMessage returns a personalized greeting for fullName, never an error.
func (c *Client) WelcomeMessage(ctx context.Context, fullName string) string {
	fallback := DefaultMessage(fullName)
	if c == nil || c.BaseURL == "" {
		return fallback
	}

	if c.Redis != nil {
		if cached, err := c.Redis.Get(ctx, cacheKey(fullName)).Result(); err == nil && cached != "" {
			return cached
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"fullname": fullName})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/get-welcome-message", bytes.NewReader(body))
	if err != nil {
		return fallback
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).Warn("welcome notifier unreachable")
		}
		return fallback
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if c.Logger != nil {
			c.Logger.WithField("status", resp.StatusCode).Warn("welcome notifier returned non-200")
		}
		return fallback
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Message == "" {
		return fallback
	}

	if c.Redis != nil {
		_ = c.Redis.Set(ctx, cacheKey(fullName), parsed.Message, time.Hour).Err()
	}
	return parsed.Message
}
