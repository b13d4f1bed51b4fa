package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotAuthenticated is returned when no usable access token exists and the
// user has to go through the interactive login again.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthTokens is the single stored credential record for the application user.
// It is overwritten wholesale on every save and deleted on logout or when a
// refresh attempt fails for good.
type AuthTokens struct {
	UserID       string    `json:"user_id" gorm:"primaryKey"`
	AccessToken  string    `json:"-" gorm:"not null"`
	RefreshToken string    `json:"-"` // empty when the provider issued none
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenSet is what an OAuth provider hands back on exchange or refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	AccountID    string
}

// OAuthProvider abstracts the identity provider (Microsoft or Google)
type OAuthProvider interface {
	// AuthCodeURL builds the interactive login URL
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for tokens
	Exchange(ctx context.Context, code string) (*TokenSet, error)

	// Refresh mints a new access token from a refresh token.
	// RefreshToken in the result may be empty when the provider does not
	// rotate refresh tokens.
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}
