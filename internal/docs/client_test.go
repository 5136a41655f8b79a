package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// captureBatch returns a handler that decodes one batchUpdate body into got.
func captureBatch(t *testing.T, got *docs.BatchUpdateDocumentRequest, reply *docs.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/documents/doc1:batchUpdate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(got))

		resp := docs.BatchUpdateDocumentResponse{DocumentId: "doc1"}
		if reply != nil {
			resp.Replies = []*docs.Response{reply}
		}
		writeJSON(w, resp)
	}
}

func TestCreateDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/documents", r.URL.Path)
		var doc docs.Document
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		writeJSON(w, docs.Document{DocumentId: "doc1", Title: doc.Title})
	})

	info, err := c.CreateDocument(context.Background(), "Plan")
	require.NoError(t, err)
	assert.Equal(t, "doc1", info.ID)
	assert.Equal(t, "Plan", info.Title)
	assert.Equal(t, "https://docs.google.com/document/d/doc1/edit", info.URL)

	_, err = c.CreateDocument(context.Background(), "")
	assert.Error(t, err)
}

func TestInsertHeading(t *testing.T) {
	var got docs.BatchUpdateDocumentRequest
	c := newTestClient(t, captureBatch(t, &got, nil))

	_, err := c.InsertHeading(context.Background(), "doc1", "Überblick", 2, 5)
	require.NoError(t, err)

	require.Len(t, got.Requests, 2)
	assert.Equal(t, "Überblick", got.Requests[0].InsertText.Text)
	assert.Equal(t, int64(5), got.Requests[0].InsertText.Location.Index)

	style := got.Requests[1].UpdateParagraphStyle
	require.NotNil(t, style)
	assert.Equal(t, "HEADING_2", style.ParagraphStyle.NamedStyleType)
	assert.Equal(t, "namedStyleType", style.Fields)
	assert.Equal(t, int64(5), style.Range.StartIndex)
	assert.Equal(t, int64(14), style.Range.EndIndex)
}

func TestInsertHeading_LevelOutOfRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.InsertHeading(context.Background(), "doc1", "x", 7, 1)
	assert.Error(t, err)
	_, err = c.InsertHeading(context.Background(), "doc1", "x", 0, 1)
	assert.Error(t, err)
}

func TestInsertImage(t *testing.T) {
	var got docs.BatchUpdateDocumentRequest
	reply := &docs.Response{InsertInlineImage: &docs.InsertInlineImageResponse{ObjectId: "kix.img"}}
	c := newTestClient(t, captureBatch(t, &got, reply))

	res, err := c.InsertImage(context.Background(), "doc1", "https://example.com/a.png", 1, &ImageSize{Width: 200})
	require.NoError(t, err)
	assert.Equal(t, "kix.img", res.ObjectID)

	img := got.Requests[0].InsertInlineImage
	require.NotNil(t, img)
	assert.Equal(t, "https://example.com/a.png", img.Uri)
	require.NotNil(t, img.ObjectSize.Width)
	assert.Equal(t, 200.0, img.ObjectSize.Width.Magnitude)
	assert.Equal(t, "PT", img.ObjectSize.Width.Unit)
	assert.Nil(t, img.ObjectSize.Height)
}

func TestInsertTable(t *testing.T) {
	var got docs.BatchUpdateDocumentRequest
	c := newTestClient(t, captureBatch(t, &got, nil))

	_, err := c.InsertTable(context.Background(), "doc1", 3, 2, 0)
	require.NoError(t, err)

	tbl := got.Requests[0].InsertTable
	require.NotNil(t, tbl)
	assert.Equal(t, int64(3), tbl.Rows)
	assert.Equal(t, int64(2), tbl.Columns)
	assert.NotNil(t, tbl.EndOfSegmentLocation)
	assert.Nil(t, tbl.Location)

	_, err = c.InsertTable(context.Background(), "doc1", 0, 2, 1)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/documents/doc1", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeTabsContent"))
		writeJSON(w, docs.Document{
			DocumentId: "doc1",
			Title:      "Plan",
			Body:       body(para("Ship it\n", &docs.TextStyle{Bold: true})),
		})
	})

	md, err := c.Render(context.Background(), "doc1", FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n\n**Ship it**\n\n", md)

	text, err := c.Render(context.Background(), "doc1", FormatText)
	require.NoError(t, err)
	assert.Equal(t, "Plan\n\nShip it\n", text)

	raw, err := c.Render(context.Background(), "doc1", FormatJSON)
	require.NoError(t, err)
	require.IsType(t, &docs.Document{}, raw)
	assert.Equal(t, "doc1", raw.(*docs.Document).DocumentId)
}

func TestDeleteDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/files/doc1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteDocument(context.Background(), "doc1"))
}
