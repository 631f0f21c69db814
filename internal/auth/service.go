package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scholle211/tunetrivia/internal/catalog"
)

// Tier is the account capability level gating catalog access: elevated
// accounts get personal playlists and search, standard accounts only the
// featured listing.
type Tier string

const (
	TierStandard Tier = "standard"
	TierElevated Tier = "elevated"
)

const loginScopes = "user-read-private user-read-email playlist-read-private playlist-read-collaborative streaming user-modify-playback-state"

// ExchangeError is a failed authorization-code exchange. Surfaced as a login
// failure; the user retries by restarting login.
type ExchangeError struct {
	Reason string
}

func (e *ExchangeError) Error() string {
	return "auth: token exchange failed: " + e.Reason
}

// Config is the identity-provider endpoint configuration.
type Config struct {
	ClientID     string
	RedirectURL  string
	AuthorizeURL string
	TokenURL     string
	StateSecret  []byte
}

// Session is the authorization state derived for one browser session.
type Session struct {
	Authenticated bool             `json:"authenticated"`
	Tier          Tier             `json:"tier"`
	Profile       *catalog.Profile `json:"profile,omitempty"`
}

// ProfileFetcher is the slice of the catalog client the lifecycle needs.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (catalog.Profile, error)
}

// Service manages the PKCE authorization-code flow and the stored credential
// state for every browser session.
type Service struct {
	cfg     Config
	store   SessionStore
	catalog ProfileFetcher
	http    *http.Client
}

func NewService(cfg Config, store SessionStore, catalog ProfileFetcher) *Service {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = "https://accounts.spotify.com/authorize"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://accounts.spotify.com/api/token"
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		catalog: catalog,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type stateClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *Service) signState(sessionID string) (string, error) {
	claims := &stateClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(verifierTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.StateSecret)
}

// VerifyState checks the signed OAuth state parameter and returns the browser
// session it was issued for.
func (s *Service) VerifyState(state string) (string, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.StateSecret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.SessionID == "" {
		return "", errors.New("auth: state missing session")
	}
	return claims.SessionID, nil
}

// BeginLogin generates a fresh PKCE verifier, stores it for the session, and
// returns the provider authorize URL the user agent must be redirected to.
func (s *Service) BeginLogin(ctx context.Context, sessionID string) (string, error) {
	verifier, err := newCodeVerifier()
	if err != nil {
		return "", err
	}
	if err := s.store.SetVerifier(ctx, sessionID, verifier); err != nil {
		return "", err
	}

	state, err := s.signState(sessionID)
	if err != nil {
		return "", err
	}

	v := url.Values{}
	v.Set("client_id", s.cfg.ClientID)
	v.Set("response_type", "code")
	v.Set("redirect_uri", s.cfg.RedirectURL)
	v.Set("scope", loginScopes)
	v.Set("code_challenge_method", "S256")
	v.Set("code_challenge", codeChallenge(verifier))
	v.Set("state", state)

	return s.cfg.AuthorizeURL + "?" + v.Encode(), nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// CompleteLogin exchanges the authorization code and the stored verifier for
// a bearer token. On success the token is persisted and the verifier cleared;
// on failure the session stays unauthenticated.
func (s *Service) CompleteLogin(ctx context.Context, sessionID, code string) error {
	verifier, err := s.store.Verifier(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ExchangeError{Reason: "no pending login for session"}
		}
		return err
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURL)
	form.Set("code_verifier", verifier)

	resp, err := s.http.PostForm(s.cfg.TokenURL, form)
	if err != nil {
		return &ExchangeError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return &ExchangeError{Reason: "invalid token response"}
	}
	if tr.AccessToken == "" {
		reason := tr.ErrorDescription
		if reason == "" {
			reason = tr.Error
		}
		if reason == "" {
			reason = fmt.Sprintf("provider status %d", resp.StatusCode)
		}
		return &ExchangeError{Reason: reason}
	}

	if err := s.store.SetToken(ctx, sessionID, tr.AccessToken); err != nil {
		return err
	}
	_ = s.store.ClearVerifier(ctx, sessionID)
	return nil
}

// RestoreSession rebuilds the authorization state from a persisted token.
// An expired token is cleared locally and yields an unauthenticated session;
// that is a recovery, not an error.
func (s *Service) RestoreSession(ctx context.Context, sessionID string) (Session, error) {
	token, err := s.store.Token(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return Session{Tier: TierStandard}, nil
	}
	if err != nil {
		return Session{}, err
	}

	profile, err := s.catalog.FetchProfile(ctx, token)
	if errors.Is(err, catalog.ErrSessionExpired) {
		_ = s.store.ClearToken(ctx, sessionID)
		return Session{Tier: TierStandard}, nil
	}
	if err != nil {
		return Session{}, err
	}

	tier := TierStandard
	if profile.Product == "premium" {
		tier = TierElevated
	}
	return Session{
		Authenticated: true,
		Tier:          tier,
		Profile:       &profile,
	}, nil
}

// Token returns the stored bearer token for a session.
func (s *Service) Token(ctx context.Context, sessionID string) (string, error) {
	return s.store.Token(ctx, sessionID)
}

// DeviceID returns the stored playback device id for a session.
func (s *Service) DeviceID(ctx context.Context, sessionID string) (string, error) {
	return s.store.DeviceID(ctx, sessionID)
}

// SetDeviceID persists the device id negotiated by the playback SDK.
func (s *Service) SetDeviceID(ctx context.Context, sessionID, deviceID string) error {
	return s.store.SetDeviceID(ctx, sessionID, deviceID)
}

// Logout clears all credential state for the session. Idempotent.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}
