package usecase

import (
	"context"
	"errors"
	"time"

	authdomain "faktury-backend/internal/auth/domain"
	"faktury-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthUsecase drives the interactive OAuth flow and the browser session.
// The session cookie only identifies the user; credential material lives
// exclusively in the token store behind TokenManager.
type AuthUsecase interface {
	GetAuthURL() string
	HandleCallback(ctx context.Context, code string) (sessionToken string, err error)
	IsAuthenticated() (bool, error)
	Logout() error
	ValidateSession(sessionToken string) (userID string, err error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	tokenManager *TokenManager
	provider     authdomain.OAuthProvider
	config       *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(tokenManager *TokenManager, provider authdomain.OAuthProvider, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		tokenManager: tokenManager,
		provider:     provider,
		config:       cfg,
	}
}

func (u *authUsecase) GetAuthURL() string {
	return u.provider.AuthCodeURL(uuid.New().String())
}

func (u *authUsecase) HandleCallback(ctx context.Context, code string) (string, error) {
	set, err := u.provider.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	if err := u.tokenManager.SaveTokenSet(set); err != nil {
		return "", err
	}

	userID := set.AccountID
	if userID == "" {
		userID = "default"
	}
	return u.generateSessionToken(userID)
}

// IsAuthenticated reports token-store truth, not session-cookie presence
func (u *authUsecase) IsAuthenticated() (bool, error) {
	return u.tokenManager.HasStoredTokens()
}

func (u *authUsecase) Logout() error {
	return u.tokenManager.ClearTokens()
}

func (u *authUsecase) generateSessionToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(u.config.SessionExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.SessionSecret))
}

func (u *authUsecase) ValidateSession(sessionToken string) (string, error) {
	token, err := jwt.Parse(sessionToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.SessionSecret), nil
	})

	if err != nil || !token.Valid {
		return "", errors.New("invalid session")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("invalid session claims")
	}

	return userID, nil
}
