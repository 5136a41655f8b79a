package google

import (
	"context"

	"golang.org/x/oauth2"
)

// Credentials is a snapshot of the active credential set.
type Credentials struct {
	Token  *oauth2.Token
	Scopes []string
	// Version increases every time the store obtains a new token. Clients
	// built from an older version must be rebuilt.
	Version uint64
}

// TokenProvider supplies valid credentials to the Facade.
// CredentialStore is the production implementation; tests provide their own.
type TokenProvider interface {
	Credentials(ctx context.Context) (*Credentials, error)
}

// StaticTokenProvider always returns the same credentials.
type StaticTokenProvider struct {
	Creds *Credentials
}

// Credentials returns the fixed credentials.
func (p StaticTokenProvider) Credentials(context.Context) (*Credentials, error) {
	return p.Creds, nil
}
