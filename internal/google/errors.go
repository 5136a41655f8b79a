package google

import "fmt"

// AuthenticationError is an unrecoverable credential problem, such as a
// missing or malformed client secret file with no cached token to fall back on.
type AuthenticationError struct {
	// Path is the file that could not be used, if any.
	Path string
	// EnvVar names the environment variable that configures Path.
	EnvVar string
	Err    error
}

func (e *AuthenticationError) Error() string {
	msg := "authentication failed"
	if e.Path != "" {
		msg += fmt.Sprintf(": cannot use %s", e.Path)
	}
	if e.EnvVar != "" {
		msg += fmt.Sprintf(" (set %s to a valid OAuth client secret file)", e.EnvVar)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// TransientAuthError is a token refresh failure that may succeed if retried,
// typically a network error talking to the token endpoint.
type TransientAuthError struct {
	Err error
}

func (e *TransientAuthError) Error() string {
	return fmt.Sprintf("token refresh failed temporarily: %v", e.Err)
}

func (e *TransientAuthError) Unwrap() error { return e.Err }

// AuthorizationRequiredError means the user has to grant consent before any
// API call can be made. URL is the consent page to visit; the resulting code
// is passed to CredentialStore.Exchange.
type AuthorizationRequiredError struct {
	URL string
	// Reason explains why the cached token could not be used.
	Reason string
}

func (e *AuthorizationRequiredError) Error() string {
	msg := "authorization required: visit " + e.URL
	if e.Reason != "" {
		msg = fmt.Sprintf("authorization required (%s): visit %s", e.Reason, e.URL)
	}
	return msg
}
