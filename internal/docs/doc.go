// Package docs wraps the Google Docs API.
//
// Client covers document creation, text, heading, image and table
// insertion, and retrieval. Documents are deleted through the Drive API.
// Markdown and PlainText render a fetched document; both understand
// documents with tabs.
package docs
