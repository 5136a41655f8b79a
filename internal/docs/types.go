package docs

import "fmt"

// DocumentInfo identifies a document.
type DocumentInfo struct {
	ID    string `json:"documentId"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// UpdateResult reports the outcome of a batch update against a document.
type UpdateResult struct {
	DocumentID string `json:"documentId"`
	Requests   int    `json:"requests"`
	// Index is where the first inserted element starts, when applicable.
	Index int64 `json:"index,omitempty"`
	// ObjectID is set when an inline object was created.
	ObjectID string `json:"objectId,omitempty"`
}

// Format selects how a document is rendered by Render.
type Format string

// Supported document formats.
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists every accepted Format.
var Formats = []string{string(FormatJSON), string(FormatMarkdown), string(FormatText)}

// ParseFormat converts a format name, defaulting to JSON when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMarkdown, FormatText:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown document format %q", s)
}

// ImageSize is an optional inline image size in points.
type ImageSize struct {
	Width  float64
	Height float64
}
