// Package google manages OAuth2 credentials for the Google Workspace APIs and
// hands out one authenticated client per service.
//
// A CredentialStore owns the single active credential set of the process. It
// reads the OAuth client secret and the cached token from disk, refreshes the
// token silently when it expires and persists every new token back to the
// token file. When no usable token exists the store does not block: it
// returns an AuthorizationRequiredError carrying the consent URL, and the
// caller completes the flow later through Exchange.
//
// A Facade builds the Drive, Sheets, Docs and Slides clients lazily from the
// store's credentials and rebuilds them when the credentials change.
package google
