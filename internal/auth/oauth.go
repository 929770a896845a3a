package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateCookieName = "onyx_oauth_state"

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

var githubEndpoint = oauth2.Endpoint{
	AuthURL:  "https://github.com/login/oauth/authorize",
	TokenURL: "https://github.com/login/oauth/access_token",
}

// OAuthProvider is one configured third-party sign-in.
type OAuthProvider struct {
	Name   string
	Config *oauth2.Config
	// ProfileURL and EmailsURL are the provider APIs read after the exchange.
	ProfileURL string
	EmailsURL  string
	decode     func(ctx context.Context, client *http.Client, p *OAuthProvider, body []byte) (Profile, error)
}

// OAuthConfig holds client credentials. Providers without a client id are skipped.
type OAuthConfig struct {
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

// Providers indexes configured providers by name.
type Providers map[string]*OAuthProvider

// NewProviders builds google and github providers with callbacks under BaseURL.
func NewProviders(cfg OAuthConfig) Providers {
	out := Providers{}
	if cfg.GoogleClientID != "" {
		out[ProviderGoogle] = &OAuthProvider{
			Name: ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  callbackURL(cfg.BaseURL, ProviderGoogle),
				Scopes:       []string{"openid", "profile", "email"},
				Endpoint:     google.Endpoint,
			},
			ProfileURL: googleUserInfoURL,
			decode:     decodeGoogleProfile,
		}
	}
	if cfg.GitHubClientID != "" {
		out[ProviderGitHub] = &OAuthProvider{
			Name: ProviderGitHub,
			Config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  callbackURL(cfg.BaseURL, ProviderGitHub),
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     githubEndpoint,
			},
			ProfileURL: githubUserURL,
			EmailsURL:  githubEmailsURL,
			decode:     decodeGitHubProfile,
		}
	}
	return out
}

// Names lists configured providers in a stable order.
func (p Providers) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func callbackURL(base, provider string) string {
	return base + "/auth/oauth/" + provider + "/callback"
}

// AuthCodeURL returns the consent URL for state.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

// Exchange trades code for a token and reads the user's profile.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: %s exchange: %w", p.Name, err)
	}
	client := p.Config.Client(ctx, token)
	body, err := getJSON(ctx, client, p.ProfileURL)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: %s profile: %w", p.Name, err)
	}
	decode := p.decode
	if decode == nil {
		decode = decodeGoogleProfile
	}
	return decode(ctx, client, p, body)
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeGoogleProfile(_ context.Context, _ *http.Client, _ *OAuthProvider, body []byte) (Profile, error) {
	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return Profile{}, err
	}
	return Profile{Subject: info.Sub, Email: info.Email, Name: info.Name}, nil
}

func decodeGitHubProfile(ctx context.Context, client *http.Client, p *OAuthProvider, body []byte) (Profile, error) {
	var info struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return Profile{}, err
	}
	name := info.Name
	if name == "" {
		name = info.Login
	}
	profile := Profile{Subject: strconv.FormatInt(info.ID, 10), Email: info.Email, Name: name}

	// private addresses are only listed by the emails API
	if profile.Email == "" && p.EmailsURL != "" {
		raw, err := getJSON(ctx, client, p.EmailsURL)
		if err != nil {
			return profile, nil
		}
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if json.Unmarshal(raw, &emails) != nil {
			return profile, nil
		}
		for _, e := range emails {
			if e.Primary {
				profile.Email = e.Email
				break
			}
		}
		if profile.Email == "" && len(emails) > 0 {
			profile.Email = emails[0].Email
		}
	}
	return profile, nil
}

func newOAuthState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func setStateCookie(w http.ResponseWriter, state string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth/oauth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func verifyStateCookie(r *http.Request) bool {
	cookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return cookie.Value == r.URL.Query().Get("state")
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/auth/oauth",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}
