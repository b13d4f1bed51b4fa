package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "faktury-backend/internal/auth/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenRepo struct {
	record  *authdomain.AuthTokens
	getErr  error
	saveErr error

	saveCalls  int
	clearCalls int
}

func (r *fakeTokenRepo) Get() (*authdomain.AuthTokens, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.record, nil
}

func (r *fakeTokenRepo) Save(tokens *authdomain.AuthTokens) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.record = tokens
	return nil
}

func (r *fakeTokenRepo) Clear() error {
	r.clearCalls++
	r.record = nil
	return nil
}

type fakeOAuthProvider struct {
	refreshResult *authdomain.TokenSet
	refreshErr    error

	refreshCalls  int
	refreshedWith string
}

func (p *fakeOAuthProvider) AuthCodeURL(state string) string { return "https://example.com/auth" }

func (p *fakeOAuthProvider) Exchange(ctx context.Context, code string) (*authdomain.TokenSet, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeOAuthProvider) Refresh(ctx context.Context, refreshToken string) (*authdomain.TokenSet, error) {
	p.refreshCalls++
	p.refreshedWith = refreshToken
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.refreshResult, nil
}

func TestGetValidAccessToken_NoRecord(t *testing.T) {
	repo := &fakeTokenRepo{}
	provider := &fakeOAuthProvider{}
	m := NewTokenManager(repo, provider)

	_, err := m.GetValidAccessToken(context.Background())

	assert.ErrorIs(t, err, authdomain.ErrNotAuthenticated)
	assert.Equal(t, 0, provider.refreshCalls)
}

func TestGetValidAccessToken_ValidTokenNoRefresh(t *testing.T) {
	repo := &fakeTokenRepo{record: &authdomain.AuthTokens{
		UserID:       "user-1",
		AccessToken:  "still-good",
		RefreshToken: "R",
		ExpiresAt:    time.Now().Add(1 * time.Hour),
	}}
	provider := &fakeOAuthProvider{}
	m := NewTokenManager(repo, provider)

	token, err := m.GetValidAccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "still-good", token)
	assert.Equal(t, 0, provider.refreshCalls, "token outside the buffer must not trigger a refresh")
}

func TestGetValidAccessToken_WithinBufferRefreshes(t *testing.T) {
	repo := &fakeTokenRepo{record: &authdomain.AuthTokens{
		UserID:       "user-1",
		AccessToken:  "old-access",
		RefreshToken: "R",
		ExpiresAt:    time.Now().Add(2 * time.Minute), // inside the 5-minute buffer
	}}
	provider := &fakeOAuthProvider{refreshResult: &authdomain.TokenSet{
		AccessToken:  "new-access",
		RefreshToken: "R2",
		ExpiresAt:    time.Now().Add(1 * time.Hour),
	}}
	m := NewTokenManager(repo, provider)

	token, err := m.GetValidAccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, provider.refreshCalls)
	assert.Equal(t, "R", provider.refreshedWith, "refresh must use the stored refresh token")
	require.NotNil(t, repo.record)
	assert.Equal(t, "new-access", repo.record.AccessToken)
	assert.Equal(t, "R2", repo.record.RefreshToken)
}

func TestGetValidAccessToken_RotationOmittedKeepsOldRefreshToken(t *testing.T) {
	repo := &fakeTokenRepo{record: &authdomain.AuthTokens{
		UserID:       "user-1",
		AccessToken:  "old-access",
		RefreshToken: "R",
		ExpiresAt:    time.Now().Add(-1 * time.Minute),
	}}
	provider := &fakeOAuthProvider{refreshResult: &authdomain.TokenSet{
		AccessToken: "new-access",
		ExpiresAt:   time.Now().Add(1 * time.Hour),
	}}
	m := NewTokenManager(repo, provider)

	_, err := m.GetValidAccessToken(context.Background())

	require.NoError(t, err)
	require.NotNil(t, repo.record)
	assert.Equal(t, "R", repo.record.RefreshToken)
}

func TestGetValidAccessToken_NoRefreshToken(t *testing.T) {
	repo := &fakeTokenRepo{record: &authdomain.AuthTokens{
		UserID:      "user-1",
		AccessToken: "expired",
		ExpiresAt:   time.Now().Add(-1 * time.Minute),
	}}
	provider := &fakeOAuthProvider{}
	m := NewTokenManager(repo, provider)

	_, err := m.GetValidAccessToken(context.Background())

	assert.ErrorIs(t, err, authdomain.ErrNotAuthenticated)
	assert.Equal(t, 0, provider.refreshCalls)
}

func TestGetValidAccessToken_RefreshFailureClearsRecord(t *testing.T) {
	repo := &fakeTokenRepo{record: &authdomain.AuthTokens{
		UserID:       "user-1",
		AccessToken:  "expired",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-1 * time.Minute),
	}}
	provider := &fakeOAuthProvider{refreshErr: errors.New("invalid_grant")}
	m := NewTokenManager(repo, provider)

	_, err := m.GetValidAccessToken(context.Background())

	assert.ErrorIs(t, err, authdomain.ErrNotAuthenticated)
	assert.Equal(t, 1, repo.clearCalls, "an unrefreshable record must be cleared")
	assert.Nil(t, repo.record)

	// A follow-up call sees no record, no dangling half-valid state
	_, err = m.GetValidAccessToken(context.Background())
	assert.ErrorIs(t, err, authdomain.ErrNotAuthenticated)
}

func TestSaveTokens_AbsoluteExpiry(t *testing.T) {
	repo := &fakeTokenRepo{}
	m := NewTokenManager(repo, &fakeOAuthProvider{})

	before := time.Now()
	err := m.SaveTokens("user-1", "A", "R", 3600)
	require.NoError(t, err)

	require.NotNil(t, repo.record)
	expected := before.Add(3600 * time.Second)
	assert.WithinDuration(t, expected, repo.record.ExpiresAt, 2*time.Second)
}

func TestHasStoredTokens(t *testing.T) {
	repo := &fakeTokenRepo{}
	m := NewTokenManager(repo, &fakeOAuthProvider{})

	has, err := m.HasStoredTokens()
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, m.SaveTokens("user-1", "A", "R", 3600))

	has, err = m.HasStoredTokens()
	require.NoError(t, err)
	assert.True(t, has)
}
