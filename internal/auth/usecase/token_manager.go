package usecase

import (
	"context"
	"log"
	"time"

	authdomain "faktury-backend/internal/auth/domain"
	"faktury-backend/internal/auth/repository"
)

// expiryBuffer is how close to expiry a token may get before we refresh it
const expiryBuffer = 5 * time.Minute

// TokenManager hands callers a currently-valid access token, hiding the
// refresh mechanics behind GetValidAccessToken.
type TokenManager struct {
	tokenRepo repository.TokenRepository
	provider  authdomain.OAuthProvider
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(tokenRepo repository.TokenRepository, provider authdomain.OAuthProvider) *TokenManager {
	return &TokenManager{
		tokenRepo: tokenRepo,
		provider:  provider,
	}
}

// GetValidAccessToken returns a valid access token, refreshing it when it is
// expired or expiring within the safety buffer. It returns
// domain.ErrNotAuthenticated when the session cannot be recovered without an
// interactive login.
func (m *TokenManager) GetValidAccessToken(ctx context.Context) (string, error) {
	tokens, err := m.tokenRepo.Get()
	if err != nil {
		return "", err
	}
	if tokens == nil {
		return "", authdomain.ErrNotAuthenticated
	}

	if time.Until(tokens.ExpiresAt) > expiryBuffer {
		// Token is still valid, no network call needed
		return tokens.AccessToken, nil
	}

	if tokens.RefreshToken == "" {
		log.Println("[TokenManager] No refresh token available, re-authentication required")
		return "", authdomain.ErrNotAuthenticated
	}

	log.Println("[TokenManager] Access token expired or expiring soon, refreshing...")
	return m.refreshAccessToken(ctx, tokens)
}

func (m *TokenManager) refreshAccessToken(ctx context.Context, tokens *authdomain.AuthTokens) (string, error) {
	refreshed, err := m.provider.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		log.Printf("[TokenManager] Refresh failed, clearing stored tokens: %v", err)
		// An unrefreshable token is unrecoverable; a stale record left behind
		// would look "present but dead" to every other check
		if clearErr := m.tokenRepo.Clear(); clearErr != nil {
			log.Printf("[TokenManager] Failed to clear tokens: %v", clearErr)
		}
		return "", authdomain.ErrNotAuthenticated
	}

	// Providers may omit refresh-token rotation; keep the old one then
	newRefresh := refreshed.RefreshToken
	if newRefresh == "" {
		newRefresh = tokens.RefreshToken
	}

	userID := refreshed.AccountID
	if userID == "" {
		userID = tokens.UserID
	}

	if err := m.tokenRepo.Save(&authdomain.AuthTokens{
		UserID:       userID,
		AccessToken:  refreshed.AccessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    refreshed.ExpiresAt,
		CreatedAt:    tokens.CreatedAt,
	}); err != nil {
		return "", err
	}

	log.Println("[TokenManager] Access token refreshed successfully")
	return refreshed.AccessToken, nil
}

// SaveTokens persists tokens after an interactive OAuth exchange. Expiry is
// absolute: now + expiresIn seconds.
func (m *TokenManager) SaveTokens(userID, accessToken, refreshToken string, expiresIn int) error {
	return m.tokenRepo.Save(&authdomain.AuthTokens{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
	})
}

// SaveTokenSet persists a provider token set as-is
func (m *TokenManager) SaveTokenSet(set *authdomain.TokenSet) error {
	userID := set.AccountID
	if userID == "" {
		userID = "default"
	}
	return m.tokenRepo.Save(&authdomain.AuthTokens{
		UserID:       userID,
		AccessToken:  set.AccessToken,
		RefreshToken: set.RefreshToken,
		ExpiresAt:    set.ExpiresAt,
	})
}

// ClearTokens deletes the stored record (logout path)
func (m *TokenManager) ClearTokens() error {
	return m.tokenRepo.Clear()
}

// HasStoredTokens reports whether a credential record exists at all
func (m *TokenManager) HasStoredTokens() (bool, error) {
	tokens, err := m.tokenRepo.Get()
	if err != nil {
		return false, err
	}
	return tokens != nil, nil
}
