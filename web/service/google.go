package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/mhsanaei/taskpanel/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthIdentity is what a provider vouches for after a successful sign-in.
type OAuthIdentity struct {
	Email string
	Name  string
}

// OAuthProvider delegates authentication to an external identity provider.
type OAuthProvider interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*OAuthIdentity, error)
}

// GoogleService signs users in with Google accounts.
type GoogleService struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

var _ OAuthProvider = (*GoogleService)(nil)

func NewGoogleService(cfg config.GoogleOAuthConfig) *GoogleService {
	return NewGoogleServiceWithEndpoint(cfg, google.Endpoint, googleUserInfoURL)
}

// NewGoogleServiceWithEndpoint is NewGoogleService against custom OAuth and userinfo URLs.
func NewGoogleServiceWithEndpoint(cfg config.GoogleOAuthConfig, endpoint oauth2.Endpoint, userInfoURL string) *GoogleService {
	return &GoogleService{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     endpoint,
			Scopes:       []string{"profile", "email"},
		},
		userInfoURL: userInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *GoogleService) Enabled() bool {
	return s.conf.ClientID != "" && s.conf.ClientSecret != ""
}

func (s *GoogleService) AuthCodeURL(state string) string {
	return s.conf.AuthCodeURL(state)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Identify exchanges an authorization code and reads the account's email and name.
func (s *GoogleService) Identify(ctx context.Context, code string) (*OAuthIdentity, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, errors.New("google account has no verified email")
	}
	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &OAuthIdentity{Email: info.Email, Name: name}, nil
}
