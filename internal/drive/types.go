package drive

import "time"

// MIME types of Google Workspace files.
const (
	FolderMimeType       = "application/vnd.google-apps.folder"
	SpreadsheetMimeType  = "application/vnd.google-apps.spreadsheet"
	DocumentMimeType     = "application/vnd.google-apps.document"
	PresentationMimeType = "application/vnd.google-apps.presentation"
)

// FileInfo represents metadata about a file or folder in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// CreatedTime is when the file was created
	CreatedTime time.Time `json:"createdTime"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink is a link for opening the file in a relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`
}

// MoveOptions contains options for moving or renaming a file
type MoveOptions struct {
	// NewName is the new name for the file (leave empty to keep current name)
	NewName string

	// AddParents are folder IDs to add as parents
	AddParents []string

	// RemoveParents are folder IDs to remove as parents
	RemoveParents []string
}
