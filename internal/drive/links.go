package drive

import (
	"net/url"
	"regexp"
	"strings"
)

// Kinds of Google file links.
const (
	LinkDocument     = "document"
	LinkSpreadsheet  = "spreadsheet"
	LinkPresentation = "presentation"
	LinkFile         = "drive"
)

// FileLink is a Google Docs, Sheets, Slides or Drive URL split into its parts.
type FileLink struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

var (
	// https://docs.google.com/{document|spreadsheets|presentation}/d/{id}/...
	docsPathRegex = regexp.MustCompile(`^/(document|spreadsheets|presentation)/(?:u/\d+/)?d/([a-zA-Z0-9_-]+)`)

	// https://drive.google.com/file/d/{id}/...
	drivePathRegex = regexp.MustCompile(`^/(?:u/\d+/)?file/d/([a-zA-Z0-9_-]+)`)

	idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

var docsKinds = map[string]string{
	"document":     LinkDocument,
	"spreadsheets": LinkSpreadsheet,
	"presentation": LinkPresentation,
}

// ParseLink recognizes docs.google.com and drive.google.com URLs, including
// drive.google.com/open?id=... links. It returns nil for anything else.
func ParseLink(raw string) *FileLink {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}

	switch strings.ToLower(u.Host) {
	case "docs.google.com":
		if m := docsPathRegex.FindStringSubmatch(u.Path); m != nil {
			return &FileLink{URL: raw, ID: m[2], Kind: docsKinds[m[1]]}
		}
	case "drive.google.com":
		if m := drivePathRegex.FindStringSubmatch(u.Path); m != nil {
			return &FileLink{URL: raw, ID: m[1], Kind: LinkFile}
		}
		if id := u.Query().Get("id"); idRegex.MatchString(id) {
			return &FileLink{URL: raw, ID: id, Kind: LinkFile}
		}
	}
	return nil
}

// FileID returns the file id in a Google file URL, or s without surrounding
// whitespace when it is not one. Commands accept either form.
func FileID(s string) string {
	if link := ParseLink(s); link != nil {
		return link.ID
	}
	return strings.TrimSpace(s)
}
