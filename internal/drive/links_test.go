package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected *FileLink
	}{
		{
			name:     "document",
			url:      "https://docs.google.com/document/d/1ABC123xyz/edit",
			expected: &FileLink{ID: "1ABC123xyz", Kind: LinkDocument},
		},
		{
			name:     "document with query parameters",
			url:      "https://docs.google.com/document/d/1XYZ789abc/edit?usp=sharing",
			expected: &FileLink{ID: "1XYZ789abc", Kind: LinkDocument},
		},
		{
			name:     "spreadsheet with gid fragment",
			url:      "https://docs.google.com/spreadsheets/d/1Sheet_123-x/edit#gid=0",
			expected: &FileLink{ID: "1Sheet_123-x", Kind: LinkSpreadsheet},
		},
		{
			name:     "presentation for a secondary account",
			url:      "https://docs.google.com/presentation/u/1/d/1Slide456/edit",
			expected: &FileLink{ID: "1Slide456", Kind: LinkPresentation},
		},
		{
			name:     "drive file",
			url:      "https://drive.google.com/file/d/1File789/view",
			expected: &FileLink{ID: "1File789", Kind: LinkFile},
		},
		{
			name:     "drive open link",
			url:      "https://drive.google.com/open?id=1Open000",
			expected: &FileLink{ID: "1Open000", Kind: LinkFile},
		},
		{name: "other host", url: "https://example.com/document/d/1ABC/edit"},
		{name: "docs without id", url: "https://docs.google.com/document/"},
		{name: "bare id", url: "1ABC123xyz"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := ParseLink(tt.url)
			if tt.expected == nil {
				assert.Nil(t, link)
				return
			}
			if assert.NotNil(t, link) {
				assert.Equal(t, tt.expected.ID, link.ID)
				assert.Equal(t, tt.expected.Kind, link.Kind)
				assert.Equal(t, tt.url, link.URL)
			}
		})
	}
}

func TestFileID(t *testing.T) {
	assert.Equal(t, "1Sheet123", FileID("https://docs.google.com/spreadsheets/d/1Sheet123/edit"))
	assert.Equal(t, "1Sheet123", FileID("  1Sheet123 "))
	assert.Equal(t, "", FileID(""))
}
