package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// loadOAuthConfig parses a client secret file downloaded from the Google
// Cloud console ("installed" or "web" application).
func loadOAuthConfig(path string, scopes []string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret: %w", err)
	}

	conf, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret: %w", err)
	}
	// Autodetect repeats every failed token request with the other style.
	conf.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	return conf, nil
}

// consentURL returns the URL the user visits to grant offline access.
func consentURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL(newState(), oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func newState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "state"
	}
	return hex.EncodeToString(b)
}

// isInvalidGrant reports whether the token endpoint rejected the refresh
// token itself (revoked, expired or malformed), as opposed to failing to
// answer.
func isInvalidGrant(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.Response == nil {
		return re.ErrorCode != ""
	}
	code := re.Response.StatusCode
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError
}

// withHTTPClient makes the oauth2 package use client for token requests.
func withHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
