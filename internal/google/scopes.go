package google

import (
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	sheets "google.golang.org/api/sheets/v4"
	slides "google.golang.org/api/slides/v1"
)

// DefaultOAuthScopes are the scopes requested during consent.
//
// The scopes provide access to:
//   - Google Drive: full access (listing, copying, moving and deleting files)
//   - Google Sheets: full access
//   - Google Docs: full access
//   - Google Slides: full access
var DefaultOAuthScopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsScope,
	docs.DocumentsScope,
	slides.PresentationsScope,
}
