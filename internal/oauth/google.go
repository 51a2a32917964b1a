package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vibe-gaming/notes/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var googleScopes = []string{"openid", "email", "profile"}

type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg config.GoogleConfig) *Google {
	return newGoogle(cfg, endpoints.Google)
}

func newGoogle(cfg config.GoogleConfig, endpoint oauth2.Endpoint) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       googleScopes,
			Endpoint:     endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Exchange trades the authorization code for a token and loads the user
// info. Only accounts with a verified email are accepted.
func (g *Google) Exchange(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrExchangeFailed)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build userinfo request: %w", ErrExchangeFailed, err)
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get userinfo: %w", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %w", ErrExchangeFailed, err)
	}

	if info.Sub == "" || info.Email == "" || !info.EmailVerified {
		return nil, fmt.Errorf("%w: userinfo has no verified email", ErrExchangeFailed)
	}

	return &Identity{
		ExternalID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
	}, nil
}
