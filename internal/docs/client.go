package docs

import (
	"context"
	"fmt"
	"unicode/utf16"

	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// MaxHeadingLevel is the deepest named heading style.
const MaxHeadingLevel = 6

// Client wraps the Google Docs API service. Deletion goes through Drive
// since the Docs API cannot remove documents.
type Client struct {
	docsService  *docs.Service
	driveService *drive.Service
}

// NewClient creates a Docs client. Authentication comes from opts.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{docsService: docsService, driveService: driveService}, nil
}

// CreateDocument creates an empty document.
func (c *Client) CreateDocument(ctx context.Context, title string) (*DocumentInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	doc, err := c.docsService.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &DocumentInfo{ID: doc.DocumentId, Title: doc.Title, URL: documentURL(doc.DocumentId)}, nil
}

// GetDocument retrieves a document including the content of every tab.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	doc, err := c.docsService.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	return doc, nil
}

// Render fetches a document and renders it in format. JSON returns the
// document resource itself; markdown and text return a string.
func (c *Client) Render(ctx context.Context, documentID string, format Format) (any, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatMarkdown:
		return Markdown(doc)
	case FormatText:
		return PlainText(doc)
	default:
		return doc, nil
	}
}

// DeleteDocument permanently deletes a document through Drive.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("documentID is required")
	}

	if err := c.driveService.Files.Delete(documentID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	return nil
}

// InsertText inserts text at index. Indices count UTF-16 code units and the
// body starts at 1.
func (c *Client) InsertText(ctx context.Context, documentID, text string, index int64) (*UpdateResult, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	return c.batchUpdate(ctx, documentID, index, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: location(index),
			Text:     text,
		},
	})
}

// InsertHeading inserts text at index and styles it as HEADING_<level>.
func (c *Client) InsertHeading(ctx context.Context, documentID, text string, level int, index int64) (*UpdateResult, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if level < 1 || level > MaxHeadingLevel {
		return nil, fmt.Errorf("heading level %d out of range 1-%d", level, MaxHeadingLevel)
	}

	return c.batchUpdate(ctx, documentID, index,
		&docs.Request{
			InsertText: &docs.InsertTextRequest{
				Location: location(index),
				Text:     text,
			},
		},
		&docs.Request{
			UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
				Range: &docs.Range{
					StartIndex: index,
					EndIndex:   index + utf16Len(text),
				},
				ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: fmt.Sprintf("HEADING_%d", level)},
				Fields:         "namedStyleType",
			},
		},
	)
}

// InsertImage inserts an inline image fetched from imageURL. A nil size
// keeps the image's natural size.
func (c *Client) InsertImage(ctx context.Context, documentID, imageURL string, index int64, size *ImageSize) (*UpdateResult, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image URL is required")
	}

	req := &docs.InsertInlineImageRequest{
		Location: location(index),
		Uri:      imageURL,
	}
	if size != nil {
		req.ObjectSize = &docs.Size{}
		if size.Width > 0 {
			req.ObjectSize.Width = &docs.Dimension{Magnitude: size.Width, Unit: "PT"}
		}
		if size.Height > 0 {
			req.ObjectSize.Height = &docs.Dimension{Magnitude: size.Height, Unit: "PT"}
		}
	}

	return c.batchUpdate(ctx, documentID, index, &docs.Request{InsertInlineImage: req})
}

// InsertTable inserts an empty rows x columns table. An index of 0 appends
// the table to the end of the body.
func (c *Client) InsertTable(ctx context.Context, documentID string, rows, columns, index int64) (*UpdateResult, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("table needs at least one row and one column, got %dx%d", rows, columns)
	}

	req := &docs.InsertTableRequest{Rows: rows, Columns: columns}
	if index > 0 {
		req.Location = location(index)
	} else {
		req.EndOfSegmentLocation = &docs.EndOfSegmentLocation{}
	}
	return c.batchUpdate(ctx, documentID, index, &docs.Request{InsertTable: req})
}

func (c *Client) batchUpdate(ctx context.Context, documentID string, index int64, reqs ...*docs.Request) (*UpdateResult, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	resp, err := c.docsService.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update document %s: %w", documentID, err)
	}

	res := &UpdateResult{DocumentID: documentID, Requests: len(reqs), Index: index}
	for _, reply := range resp.Replies {
		if reply != nil && reply.InsertInlineImage != nil {
			res.ObjectID = reply.InsertInlineImage.ObjectId
		}
	}
	return res, nil
}

func location(index int64) *docs.Location {
	return &docs.Location{Index: index, ForceSendFields: []string{"Index"}}
}

func utf16Len(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}

func documentURL(id string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", id)
}
