// Package docs_tools registers the Google Docs commands.
//
// These commands let a client:
//   - Create and delete documents
//   - Insert text, headings, inline images and tables at a body index
//   - Retrieve a document as the raw API resource, Markdown or plain text
//   - Read the Drive metadata of a document
//
// Body indices count UTF-16 code units and the body starts at index 1, so
// inserting at 1 prepends to the document.
package docs_tools
