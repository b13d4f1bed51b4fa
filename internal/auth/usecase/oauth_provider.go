package usecase

import (
	"context"
	"fmt"

	authdomain "faktury-backend/internal/auth/domain"
	"faktury-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// GraphScopes must match the Azure AD app registration
var GraphScopes = []string{
	"https://graph.microsoft.com/Mail.Read",
	"https://graph.microsoft.com/User.Read",
	"offline_access",
	"openid",
	"profile",
}

// GmailScopes must match the Google Cloud Console app registration
var GmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// oauthProvider implements domain.OAuthProvider on top of golang.org/x/oauth2
type oauthProvider struct {
	config *oauth2.Config
}

// NewMicrosoftProvider builds the provider for Microsoft Graph accounts
func NewMicrosoftProvider(cfg *config.Config) authdomain.OAuthProvider {
	return &oauthProvider{
		config: &oauth2.Config{
			ClientID:     cfg.AzureClientID,
			ClientSecret: cfg.AzureClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       GraphScopes,
			Endpoint:     microsoft.AzureADEndpoint(cfg.AzureTenant),
		},
	}
}

// NewGoogleProvider builds the provider for Gmail accounts
func NewGoogleProvider(cfg *config.Config) authdomain.OAuthProvider {
	return &oauthProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       GmailScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// NewProvider selects the provider configured in MAIL_PROVIDER
func NewProvider(cfg *config.Config) (authdomain.OAuthProvider, error) {
	switch cfg.MailProvider {
	case "graph":
		return NewMicrosoftProvider(cfg), nil
	case "gmail":
		return NewGoogleProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

func (p *oauthProvider) AuthCodeURL(state string) string {
	// Force the consent dialog so a refresh token is always returned
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (p *oauthProvider) Exchange(ctx context.Context, code string) (*authdomain.TokenSet, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %w", err)
	}
	return tokenSetFrom(token), nil
}

func (p *oauthProvider) Refresh(ctx context.Context, refreshToken string) (*authdomain.TokenSet, error) {
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("unable to refresh access token: %w", err)
	}
	set := tokenSetFrom(token)
	if set.RefreshToken == refreshToken {
		// No rotation happened; report it as omitted
		set.RefreshToken = ""
	}
	return set, nil
}

func tokenSetFrom(token *oauth2.Token) *authdomain.TokenSet {
	return &authdomain.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
}
