package slides_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	slidesapi "google.golang.org/api/slides/v1"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/slides"
)

// fakeSlides serves presentation "p1" with one slide "s1".
type fakeSlides struct {
	mu      sync.Mutex
	batches []*slidesapi.Request
	deleted []string
}

func slideS1() *slidesapi.Page {
	return &slidesapi.Page{
		ObjectId: "s1",
		PageElements: []*slidesapi.PageElement{
			{ObjectId: "title", Shape: &slidesapi.Shape{ShapeType: "TEXT_BOX"}},
			{ObjectId: "pic", Image: &slidesapi.Image{ContentUrl: "https://example.com/a.png"}},
		},
		SlideProperties: &slidesapi.SlideProperties{NotesPage: &slidesapi.Page{
			ObjectId:        "s1_notes",
			NotesProperties: &slidesapi.NotesProperties{SpeakerNotesObjectId: "s1_speaker"},
		}},
	}
}

func (f *fakeSlides) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/presentations":
		var p slidesapi.Presentation
		_ = json.NewDecoder(r.Body).Decode(&p)
		writeJSON(w, slidesapi.Presentation{PresentationId: "p1", Title: p.Title})
	case r.Method == http.MethodGet && r.URL.Path == "/v1/presentations/p1":
		writeJSON(w, slidesapi.Presentation{PresentationId: "p1", Slides: []*slidesapi.Page{slideS1()}})
	case r.Method == http.MethodGet && r.URL.Path == "/v1/presentations/p1/pages/s1":
		writeJSON(w, slideS1())
	case r.Method == http.MethodPost && r.URL.Path == "/v1/presentations/p1:batchUpdate":
		var body slidesapi.BatchUpdatePresentationRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.batches = append(f.batches, body.Requests...)
		writeJSON(w, slidesapi.BatchUpdatePresentationResponse{PresentationId: "p1"})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/files/"):
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/files/"))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSlides) requests() []*slidesapi.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*slidesapi.Request(nil), f.batches...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestContext(t *testing.T, api http.Handler) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	creds := &google.Credentials{Token: &oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(time.Hour)}, Version: 1}
	sc, err := server.NewServerContext(context.Background(),
		config.Config{
			FolderID:         "folder-1",
			TokenPath:        filepath.Join(t.TempDir(), "token.json"),
			RetryMaxAttempts: 1,
		},
		server.WithTokenProvider(google.StaticTokenProvider{Creds: creds}),
		server.WithFacadeOptions(google.WithClientOptions(
			option.WithEndpoint(srv.URL+"/"),
			option.WithHTTPClient(srv.Client()),
		)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	require.NoError(t, RegisterSlidesCommands(sc))
	return sc
}

func run(t *testing.T, sc *server.ServerContext, command string, args map[string]any) *dispatch.Response {
	t.Helper()
	return sc.Dispatcher().Dispatch(context.Background(), dispatch.Invocation{Command: command, Args: args})
}

func requireInvalid(t *testing.T, resp *dispatch.Response, param string) {
	t.Helper()
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dispatch.KindInvalidArgument, resp.Error.Kind)
	assert.Equal(t, param, resp.Error.Param)
}

func TestDescriptors(t *testing.T) {
	sc := newTestContext(t, &fakeSlides{})
	assert.Equal(t, 15, sc.Registry().Len())

	var readOnly []string
	for _, d := range sc.Registry().Descriptors() {
		assert.Equal(t, "slides", d.Service)
		if d.ReadOnly {
			readOnly = append(readOnly, d.Name)
		}
	}
	assert.Equal(t, []string{"get_presentation_details", "search_slide_elements"}, readOnly)
}

func TestCreateAndDeletePresentation(t *testing.T) {
	api := &fakeSlides{}
	sc := newTestContext(t, api)

	resp := run(t, sc, "create_presentation", map[string]any{"title": "Deck"})
	require.True(t, resp.Success, "%+v", resp.Error)
	info := resp.Payload.(*slides.PresentationInfo)
	assert.Equal(t, "p1", info.ID)
	assert.Equal(t, "Deck", info.Title)

	resp = run(t, sc, "delete_presentation", map[string]any{"presentation_id": "p1"})
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.Equal(t, &DeleteResult{PresentationID: "p1", Deleted: true}, resp.Payload)
	assert.Equal(t, []string{"p1"}, api.deleted)
}

func TestAddImage_Defaults(t *testing.T) {
	api := &fakeSlides{}
	sc := newTestContext(t, api)

	resp := run(t, sc, "add_image_to_slide", map[string]any{
		"presentation_id": "p1",
		"slide_id":        "s1",
		"image_url":       "https://example.com/b.png",
	})
	require.True(t, resp.Success, "%+v", resp.Error)

	reqs := api.requests()
	require.Len(t, reqs, 1)
	img := reqs[0].CreateImage
	require.NotNil(t, img)
	assert.Equal(t, "https://example.com/b.png", img.Url)
	assert.Equal(t, "s1", img.ElementProperties.PageObjectId)
	assert.Equal(t, slides.DefaultImageWidth, img.ElementProperties.Size.Width.Magnitude)
	assert.Equal(t, slides.DefaultImageHeight, img.ElementProperties.Size.Height.Magnitude)
	assert.Equal(t, slides.DefaultImageX, img.ElementProperties.Transform.TranslateX)
}

func TestUnknownSlide(t *testing.T) {
	commands := map[string]map[string]any{
		"add_image_to_slide":      {"image_url": "https://example.com/b.png"},
		"add_shape_to_slide":      {"shape_type": "RECTANGLE"},
		"add_slide_notes":         {"notes": "hello"},
		"update_slide_background": {"color": "#fff"},
		"update_slide_layout":     {"layout": "BLANK"},
		"search_slide_elements":   {},
	}
	for command, extra := range commands {
		t.Run(command, func(t *testing.T) {
			api := &fakeSlides{}
			sc := newTestContext(t, api)

			args := map[string]any{"presentation_id": "p1", "slide_id": "missing"}
			for k, v := range extra {
				args[k] = v
			}
			requireInvalid(t, run(t, sc, command, args), "slide_id")
			assert.Empty(t, api.requests())
		})
	}
}

func TestUpdateBackground_ExactlyOne(t *testing.T) {
	sc := newTestContext(t, &fakeSlides{})
	base := map[string]any{"presentation_id": "p1", "slide_id": "s1"}

	requireInvalid(t, run(t, sc, "update_slide_background", base), "color")

	both := map[string]any{"presentation_id": "p1", "slide_id": "s1", "color": "#000", "image_url": "https://example.com/a.png"}
	requireInvalid(t, run(t, sc, "update_slide_background", both), "color")

	bad := map[string]any{"presentation_id": "p1", "slide_id": "s1", "color": "blue"}
	requireInvalid(t, run(t, sc, "update_slide_background", bad), "color")
}

func TestSearchElements_ByType(t *testing.T) {
	sc := newTestContext(t, &fakeSlides{})

	resp := run(t, sc, "search_slide_elements", map[string]any{
		"presentation_id": "p1",
		"slide_id":        "s1",
		"element_type":    "image",
	})
	require.True(t, resp.Success, "%+v", resp.Error)

	found := resp.Payload.([]slides.ElementInfo)
	require.Len(t, found, 1)
	assert.Equal(t, "pic", found[0].ObjectID)
}

func TestUpdateTransition_RecordsInNotes(t *testing.T) {
	api := &fakeSlides{}
	sc := newTestContext(t, api)

	resp := run(t, sc, "update_slide_transition", map[string]any{
		"presentation_id": "p1",
		"slide_id":        "s1",
		"transition_type": "fade",
	})
	require.True(t, resp.Success, "%+v", resp.Error)

	result := resp.Payload.(*slides.TransitionResult)
	assert.True(t, result.Recorded)
	assert.False(t, result.Applied)
	assert.Equal(t, "[transition: FADE 1s]", result.Note)

	reqs := api.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "s1_speaker", reqs[0].InsertText.ObjectId)
}

func TestAddLine(t *testing.T) {
	api := &fakeSlides{}
	sc := newTestContext(t, api)

	resp := run(t, sc, "add_line_to_slide", map[string]any{
		"presentation_id": "p1",
		"slide_id":        "s1",
		"start_x":         10,
		"start_y":         10,
		"end_x":           110,
		"end_y":           60,
	})
	require.True(t, resp.Success, "%+v", resp.Error)

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "STRAIGHT", reqs[0].CreateLine.Category)
	assert.Equal(t, 1.0, reqs[1].UpdateLineProperties.LineProperties.Weight.Magnitude)

	same := map[string]any{"presentation_id": "p1", "slide_id": "s1", "start_x": 5, "start_y": 5, "end_x": 5, "end_y": 5}
	requireInvalid(t, run(t, sc, "add_line_to_slide", same), "end_x")
}

func TestUpdateTextStyle(t *testing.T) {
	api := &fakeSlides{}
	sc := newTestContext(t, api)

	resp := run(t, sc, "update_text_style", map[string]any{
		"presentation_id": "p1",
		"object_id":       "title",
		"bold":            false,
		"font_size":       24,
	})
	require.True(t, resp.Success, "%+v", resp.Error)

	reqs := api.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "bold,fontSize", reqs[0].UpdateTextStyle.Fields)

	requireInvalid(t, run(t, sc, "update_text_style", map[string]any{
		"presentation_id": "p1",
		"object_id":       "title",
	}), "bold")
}

func TestUpdateShapeStyle_BadColor(t *testing.T) {
	sc := newTestContext(t, &fakeSlides{})

	requireInvalid(t, run(t, sc, "update_shape_style", map[string]any{
		"presentation_id": "p1",
		"object_id":       "title",
		"outline_color":   "#12345",
	}), "outline_color")
}
