// Package google_tools registers the commands that drive the Google OAuth
// consent flow.
//
// A command that needs consent fails with an authorization_required error
// carrying the consent URL. The flow from an MCP client is:
//  1. Call get_auth_url to get the consent URL and the current token state
//  2. The user visits the URL and grants access
//  3. Call save_auth_code with the code shown by Google
//
// The token is written to TOKEN_PATH and refreshed automatically afterwards,
// so every Drive, Sheets, Docs and Slides command works without further
// interaction.
package google_tools
