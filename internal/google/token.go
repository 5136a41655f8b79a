package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// tokenFile is the on-disk token format: the oauth2.Token JSON encoding plus
// the granted scopes. The "token" field is read for files written in the
// google-auth authorized user format, which stores the access token there.
type tokenFile struct {
	AccessToken  string    `json:"access_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`

	Token string `json:"token,omitempty"`
}

// readTokenFile loads a cached token. A missing file returns (nil, nil, nil).
func readTokenFile(path string) (*oauth2.Token, []string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
	}

	access := tf.AccessToken
	if access == "" {
		access = tf.Token
	}
	if access == "" && tf.RefreshToken == "" {
		return nil, nil, fmt.Errorf("token file %s contains neither an access token nor a refresh token", path)
	}

	tokenType := tf.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		TokenType:    tokenType,
		RefreshToken: tf.RefreshToken,
		Expiry:       tf.Expiry,
	}
	if access == "" {
		// Only a refresh token: force a refresh on first use.
		tok.Expiry = time.Unix(1, 0)
	}
	return tok, tf.Scopes, nil
}

// writeTokenFile persists tok atomically with owner-only permissions.
func writeTokenFile(path string, tok *oauth2.Token, scopes []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tokenFile{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// grantedScopes extracts the space separated "scope" field from a token
// response, falling back to the requested scopes.
func grantedScopes(tok *oauth2.Token, requested []string) []string {
	if raw, ok := tok.Extra("scope").(string); ok && raw != "" {
		return strings.Fields(raw)
	}
	return requested
}
