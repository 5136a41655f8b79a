package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/teemow/mcp-google-workspace/internal/logging"
)

const (
	// refreshAttempts is the number of token endpoint calls made for one refresh
	// when the endpoint cannot be reached.
	refreshAttempts = 2

	// refreshTimeout bounds a shared refresh independently of the caller that
	// started it.
	refreshTimeout = 30 * time.Second

	// clientSecretEnv is the variable that points at the client secret file.
	clientSecretEnv = "CLIENT_SECRET_PATH"
)

// Token refresh results passed to a RefreshRecorder.
const (
	RefreshSuccess   = "success"
	RefreshFailure   = "failure"
	RefreshTransient = "transient"
	RefreshRevoked   = "revoked"
)

// RefreshRecorder receives the outcome of every refresh attempt.
type RefreshRecorder interface {
	RecordTokenRefresh(ctx context.Context, result string)
}

// StoreOption configures a CredentialStore.
type StoreOption func(*CredentialStore)

// WithHTTPClient sets the client used to talk to the token endpoint.
func WithHTTPClient(c *http.Client) StoreOption {
	return func(s *CredentialStore) { s.httpClient = c }
}

// WithEndpoint overrides the OAuth endpoint from the client secret file.
// Client credentials are sent in the request body unless e sets another
// AuthStyle.
func WithEndpoint(e oauth2.Endpoint) StoreOption {
	if e.AuthStyle == oauth2.AuthStyleAutoDetect {
		e.AuthStyle = oauth2.AuthStyleInParams
	}
	return func(s *CredentialStore) { s.endpoint = &e }
}

// WithScopes replaces DefaultOAuthScopes.
func WithScopes(scopes ...string) StoreOption {
	return func(s *CredentialStore) { s.scopes = scopes }
}

// WithRefreshRecorder reports refresh outcomes, usually to metrics.
func WithRefreshRecorder(r RefreshRecorder) StoreOption {
	return func(s *CredentialStore) { s.recorder = r }
}

// CredentialStore owns the process' single active credential set.
// It is safe for concurrent use.
type CredentialStore struct {
	clientSecretPath string
	tokenPath        string
	scopes           []string
	httpClient       *http.Client
	endpoint         *oauth2.Endpoint
	recorder         RefreshRecorder

	mu        sync.Mutex
	conf      *oauth2.Config
	secretErr error
	token     *oauth2.Token
	granted   []string
	version   uint64

	refreshGroup singleflight.Group
}

// NewCredentialStore creates a store for the given client secret and token
// files. Nothing is read until credentials are first requested.
func NewCredentialStore(clientSecretPath, tokenPath string, opts ...StoreOption) *CredentialStore {
	s := &CredentialStore{
		clientSecretPath: clientSecretPath,
		tokenPath:        tokenPath,
		scopes:           DefaultOAuthScopes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenPath returns the file tokens are persisted to.
func (s *CredentialStore) TokenPath() string {
	return s.tokenPath
}

// Credentials returns a valid, non-expired credential set. An expired token
// is refreshed silently; concurrent callers share one refresh.
func (s *CredentialStore) Credentials(ctx context.Context) (*Credentials, error) {
	s.mu.Lock()
	if err := s.loadLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.token != nil && s.token.Valid() {
		creds := s.snapshotLocked()
		s.mu.Unlock()
		return creds, nil
	}
	s.mu.Unlock()

	v, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refresh(rctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credentials), nil
}

// AuthURL returns the consent URL for the configured client.
func (s *CredentialStore) AuthURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.loadLocked()
	if s.conf == nil {
		return "", s.authenticationErrorLocked()
	}
	return consentURL(s.conf), nil
}

// Exchange trades an authorization code from the consent page for a token
// and persists it.
func (s *CredentialStore) Exchange(ctx context.Context, code string) (*Credentials, error) {
	s.mu.Lock()
	_ = s.loadLocked()
	conf := s.conf
	if conf == nil {
		err := s.authenticationErrorLocked()
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	tok, err := conf.Exchange(withHTTPClient(ctx, s.httpClient), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	scopes := grantedScopes(tok, s.scopes)
	if err := writeTokenFile(s.tokenPath, tok, scopes); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTokenLocked(tok, scopes)
	slog.Info("stored new OAuth token", slog.String("path", s.tokenPath))
	return s.snapshotLocked(), nil
}

// loadLocked reads the client secret once and the token file whenever no
// token is held, so a token written by another process is picked up.
func (s *CredentialStore) loadLocked() error {
	if s.conf == nil && s.secretErr == nil {
		conf, err := loadOAuthConfig(s.clientSecretPath, s.scopes)
		if err != nil {
			s.secretErr = err
		} else {
			if s.endpoint != nil {
				conf.Endpoint = *s.endpoint
			}
			s.conf = conf
		}
	}

	if s.token == nil {
		tok, scopes, err := readTokenFile(s.tokenPath)
		if err != nil {
			slog.Warn("ignoring unreadable token file", logging.Err(err))
		} else if tok != nil {
			s.setTokenLocked(tok, scopes)
		}
	}

	if s.conf == nil && s.token == nil {
		return s.authenticationErrorLocked()
	}
	return nil
}

func (s *CredentialStore) authenticationErrorLocked() error {
	return &AuthenticationError{
		Path:   s.clientSecretPath,
		EnvVar: clientSecretEnv,
		Err:    s.secretErr,
	}
}

func (s *CredentialStore) setTokenLocked(tok *oauth2.Token, scopes []string) {
	s.token = tok
	if len(scopes) > 0 {
		s.granted = scopes
	}
	s.version++
}

func (s *CredentialStore) snapshotLocked() *Credentials {
	tok := *s.token
	return &Credentials{
		Token:   &tok,
		Scopes:  append([]string(nil), s.granted...),
		Version: s.version,
	}
}

// refresh runs inside the singleflight group.
func (s *CredentialStore) refresh(ctx context.Context) (*Credentials, error) {
	s.mu.Lock()
	if s.token != nil && s.token.Valid() {
		creds := s.snapshotLocked()
		s.mu.Unlock()
		return creds, nil
	}
	conf := s.conf
	var refreshToken string
	if s.token != nil {
		refreshToken = s.token.RefreshToken
	}
	if conf == nil {
		err := s.authenticationErrorLocked()
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	if refreshToken == "" {
		return nil, &AuthorizationRequiredError{URL: consentURL(conf), Reason: "no cached token"}
	}

	tok, err := s.refreshWithRetry(ctx, conf, refreshToken)
	if err != nil {
		if isInvalidGrant(err) {
			s.record(ctx, RefreshRevoked)
			slog.Warn("refresh token rejected, consent required", logging.Err(err))
			return nil, &AuthorizationRequiredError{URL: consentURL(conf), Reason: "refresh token invalid or revoked"}
		}
		s.record(ctx, RefreshTransient)
		return nil, &TransientAuthError{Err: err}
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}

	s.mu.Lock()
	scopes := s.granted
	s.mu.Unlock()
	scopes = grantedScopes(tok, scopes)

	if err := writeTokenFile(s.tokenPath, tok, scopes); err != nil {
		s.record(ctx, RefreshFailure)
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTokenLocked(tok, scopes)
	s.record(ctx, RefreshSuccess)
	slog.Debug("refreshed OAuth token",
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.Time("expiry", tok.Expiry))
	return s.snapshotLocked(), nil
}

// refreshWithRetry calls the token endpoint, retrying once when it could not
// be reached. A rejected refresh token is never retried.
func (s *CredentialStore) refreshWithRetry(ctx context.Context, conf *oauth2.Config, refreshToken string) (*oauth2.Token, error) {
	var lastErr error
	for attempt := 1; attempt <= refreshAttempts; attempt++ {
		src := conf.TokenSource(withHTTPClient(ctx, s.httpClient), &oauth2.Token{RefreshToken: refreshToken})
		tok, err := src.Token()
		if err == nil {
			return tok, nil
		}
		lastErr = err
		if isInvalidGrant(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			break
		}
		slog.Warn("token refresh failed",
			logging.Attempt(attempt),
			logging.Err(err))
	}
	return nil, lastErr
}

func (s *CredentialStore) record(ctx context.Context, result string) {
	if s.recorder != nil {
		s.recorder.RecordTokenRefresh(ctx, result)
	}
}
