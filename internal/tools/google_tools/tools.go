package google_tools

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

const service = "auth"

// AuthStatus is returned by get_auth_url.
type AuthStatus struct {
	AuthURL    string     `json:"authUrl"`
	TokenValid bool       `json:"tokenValid"`
	TokenPath  string     `json:"tokenPath"`
	Expiry     *time.Time `json:"expiry,omitempty"`
	// TokenError explains why the cached token cannot be used.
	TokenError string `json:"tokenError,omitempty"`
}

// AuthResult is returned by save_auth_code.
type AuthResult struct {
	TokenPath string    `json:"tokenPath"`
	Scopes    []string  `json:"scopes"`
	Expiry    time.Time `json:"expiry"`
}

// RegisterGoogleCommands adds the OAuth commands to the registry of sc.
func RegisterGoogleCommands(sc *server.ServerContext) error {
	return sc.Registry().RegisterAll(Descriptors(sc)...)
}

// Descriptors returns the OAuth command descriptors bound to sc.
func Descriptors(sc *server.ServerContext) []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{
			Name:        "get_auth_url",
			Service:     service,
			Description: "Get the Google consent URL and report whether the cached token is valid",
			ReadOnly:    true,
			Handler:     handleGetAuthURL(sc),
		},
		{
			Name:        "save_auth_code",
			Service:     service,
			Description: "Exchange the authorization code from the consent page for a token and store it",
			Params: []dispatch.Param{
				dispatch.String("code", dispatch.Required(), dispatch.Description("Authorization code shown by Google after consent")),
			},
			Handler: handleSaveAuthCode(sc),
		},
	}
}

func handleGetAuthURL(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, _ dispatch.Args) (any, error) {
		store := sc.CredentialStore()
		url, err := store.AuthURL()
		if err != nil {
			return nil, err
		}

		status := &AuthStatus{AuthURL: url, TokenPath: store.TokenPath()}
		creds, err := store.Credentials(ctx)
		if err != nil {
			status.TokenError = err.Error()
			return status, nil
		}
		status.TokenValid = true
		if !creds.Token.Expiry.IsZero() {
			expiry := creds.Token.Expiry
			status.Expiry = &expiry
		}
		return status, nil
	}
}

func handleSaveAuthCode(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		store := sc.CredentialStore()
		creds, err := store.Exchange(ctx, args.String("code"))
		if err != nil {
			var rejected *oauth2.RetrieveError
			if errors.As(err, &rejected) {
				return nil, common.Invalid("code", "a valid, unused authorization code", rejected.Error())
			}
			return nil, err
		}
		return &AuthResult{
			TokenPath: store.TokenPath(),
			Scopes:    creds.Scopes,
			Expiry:    creds.Token.Expiry,
		}, nil
	}
}
