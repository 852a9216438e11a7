package entity

import "time"

// Provider identifies the authentication path an account was created through.
// It is set once at creation and never changes; an account created via one
// path is rejected by the other.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
)

// User is the aggregate root for the identity domain, keyed by unique email.
// PasswordHash is set only for email-provider accounts and GoogleID only for
// google-provider accounts.
type User struct {
	ID           string
	Email        string
	FullName     string
	Provider     Provider
	PasswordHash string
	GoogleID     string
	PictureURL   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
