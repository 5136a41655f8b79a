package slides

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	slides "google.golang.org/api/slides/v1"

	"github.com/teemow/mcp-google-workspace/internal/colors"
)

const (
	emuPerPoint     = 12700
	pointsPerInch   = 96
	unitPoints      = "PT"
	unitEMU         = "EMU"
	textRangeAll    = "ALL"
	presentationURL = "https://docs.google.com/presentation/d/%s/edit"
)

// Client wraps the Google Slides API service. Presentations are deleted
// through Drive.
type Client struct {
	slidesService *slides.Service
	driveService  *drive.Service
	newID         func(prefix string) string
}

// NewClient creates a Slides client. Authentication comes from opts.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	slidesService, err := slides.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		slidesService: slidesService,
		driveService:  driveService,
		newID:         NewObjectID,
	}, nil
}

// CreatePresentation creates an empty presentation.
func (c *Client) CreatePresentation(ctx context.Context, title string) (*PresentationInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	p, err := c.slidesService.Presentations.Create(&slides.Presentation{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}
	return &PresentationInfo{ID: p.PresentationId, Title: p.Title, URL: fmt.Sprintf(presentationURL, p.PresentationId)}, nil
}

// GetPresentation returns the full presentation resource.
func (c *Client) GetPresentation(ctx context.Context, presentationID string) (*slides.Presentation, error) {
	if presentationID == "" {
		return nil, fmt.Errorf("presentationID is required")
	}

	p, err := c.slidesService.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}
	return p, nil
}

// DeletePresentation permanently deletes a presentation through Drive.
func (c *Client) DeletePresentation(ctx context.Context, presentationID string) error {
	if presentationID == "" {
		return fmt.Errorf("presentationID is required")
	}

	if err := c.driveService.Files.Delete(presentationID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete presentation %s: %w", presentationID, err)
	}
	return nil
}

// GetPage returns one slide or notes page.
func (c *Client) GetPage(ctx context.Context, presentationID, pageID string) (*slides.Page, error) {
	if pageID == "" {
		return nil, fmt.Errorf("page id is required")
	}

	page, err := c.slidesService.Presentations.Pages.Get(presentationID, pageID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", pageID, err)
	}
	return page, nil
}

// AddSlide appends a slide with layout (DefaultLayout when empty) and fills
// its title and body placeholders with title and content.
func (c *Client) AddSlide(ctx context.Context, presentationID, title, content, layout string) (*SlideResult, error) {
	if layout == "" {
		layout = DefaultLayout
	}

	p, err := c.GetPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}

	slideID := c.newID("slide")
	_, err = c.batchUpdate(ctx, presentationID, &slides.Request{
		CreateSlide: &slides.CreateSlideRequest{
			ObjectId:             slideID,
			InsertionIndex:       int64(len(p.Slides)),
			SlideLayoutReference: &slides.LayoutReference{PredefinedLayout: layout},
			ForceSendFields:      []string{"InsertionIndex"},
		},
	})
	if err != nil {
		return nil, err
	}

	if title != "" || content != "" {
		page, err := c.GetPage(ctx, presentationID, slideID)
		if err != nil {
			return nil, err
		}
		reqs, err := placeholderRequests(page, title, content, true)
		if err != nil {
			return nil, err
		}
		if _, err := c.batchUpdate(ctx, presentationID, reqs...); err != nil {
			return nil, err
		}
	}

	return &SlideResult{SlideID: slideID, Layout: layout, Dimensions: dimensions(p)}, nil
}

// placeholderRequests inserts title and content into the first title-like
// and body-like placeholders of page. In strict mode a missing placeholder
// for non-empty text is an error; otherwise that text is dropped.
func placeholderRequests(page *slides.Page, title, content string, strict bool) ([]*slides.Request, error) {
	var reqs []*slides.Request
	for _, p := range []struct {
		text  string
		kind  string
		types []string
	}{
		{title, "title", []string{"TITLE", "CENTERED_TITLE"}},
		{content, "body", []string{"BODY", "SUBTITLE"}},
	} {
		if p.text == "" {
			continue
		}
		id := findPlaceholder(page, p.types...)
		if id == "" {
			if strict {
				return nil, fmt.Errorf("slide %s has no %s placeholder", page.ObjectId, p.kind)
			}
			continue
		}
		reqs = append(reqs, insertText(id, p.text))
	}
	return reqs, nil
}

// SearchElements lists the page elements of slideID, optionally only those
// of elementType (see ElementTypes).
func (c *Client) SearchElements(ctx context.Context, presentationID, slideID, elementType string) ([]ElementInfo, error) {
	p, err := c.GetPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}

	var slide *slides.Page
	for _, s := range p.Slides {
		if s.ObjectId == slideID {
			slide = s
			break
		}
	}
	if slide == nil {
		return nil, &SlideNotFoundError{PresentationID: presentationID, SlideID: slideID}
	}

	found := []ElementInfo{}
	for _, el := range slide.PageElements {
		kind := elementKind(el)
		if elementType != "" && !strings.EqualFold(kind, elementType) {
			continue
		}
		info := ElementInfo{ObjectID: el.ObjectId, SlideID: slideID, Type: kind, Element: el}
		if el.Shape != nil {
			info.ShapeType = el.Shape.ShapeType
			info.Text = shapeText(el.Shape)
			if el.Shape.Placeholder != nil {
				info.Placeholder = el.Shape.Placeholder.Type
			}
		}
		found = append(found, info)
	}
	return found, nil
}

func (c *Client) batchUpdate(ctx context.Context, presentationID string, reqs ...*slides.Request) (*slides.BatchUpdatePresentationResponse, error) {
	if presentationID == "" {
		return nil, fmt.Errorf("presentationID is required")
	}
	if len(reqs) == 0 {
		return &slides.BatchUpdatePresentationResponse{PresentationId: presentationID}, nil
	}

	resp, err := c.slidesService.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update presentation %s: %w", presentationID, err)
	}
	return resp, nil
}

// SlideNotFoundError reports a slide id that is not part of a presentation.
type SlideNotFoundError struct {
	PresentationID string
	SlideID        string
}

func (e *SlideNotFoundError) Error() string {
	return fmt.Sprintf("slide %s not found in presentation %s", e.SlideID, e.PresentationID)
}

func dimensions(p *slides.Presentation) *Dimensions {
	w, h := DefaultSlideWidth, DefaultSlideHeight
	if p.PageSize != nil {
		if v, ok := toPoints(p.PageSize.Width); ok {
			w = v
		}
		if v, ok := toPoints(p.PageSize.Height); ok {
			h = v
		}
	}
	return &Dimensions{Width: w, Height: h, WidthInches: w / pointsPerInch, HeightInches: h / pointsPerInch}
}

func toPoints(d *slides.Dimension) (float64, bool) {
	if d == nil || d.Magnitude == 0 {
		return 0, false
	}
	if d.Unit == unitEMU {
		return d.Magnitude / emuPerPoint, true
	}
	return d.Magnitude, true
}

func findPlaceholder(page *slides.Page, types ...string) string {
	for _, el := range page.PageElements {
		if el.Shape == nil || el.Shape.Placeholder == nil {
			continue
		}
		for _, t := range types {
			if el.Shape.Placeholder.Type == t {
				return el.ObjectId
			}
		}
	}
	return ""
}

func elementKind(el *slides.PageElement) string {
	switch {
	case el.Shape != nil:
		return "shape"
	case el.Image != nil:
		return "image"
	case el.Line != nil:
		return "line"
	case el.Table != nil:
		return "table"
	case el.Video != nil:
		return "video"
	case el.WordArt != nil:
		return "wordArt"
	case el.SheetsChart != nil:
		return "sheetsChart"
	case el.ElementGroup != nil:
		return "elementGroup"
	}
	return "unknown"
}

func shapeText(s *slides.Shape) string {
	if s.Text == nil {
		return ""
	}
	var b strings.Builder
	for _, te := range s.Text.TextElements {
		if te.TextRun != nil {
			b.WriteString(te.TextRun.Content)
		}
	}
	return b.String()
}

func insertText(objectID, text string) *slides.Request {
	return &slides.Request{InsertText: &slides.InsertTextRequest{ObjectId: objectID, Text: text}}
}

func pt(v float64) *slides.Dimension {
	return &slides.Dimension{Magnitude: v, Unit: unitPoints, ForceSendFields: []string{"Magnitude"}}
}

func opaqueColor(hex string) (*slides.OpaqueColor, error) {
	rgb, err := colors.ParseHex(hex)
	if err != nil {
		return nil, err
	}
	return &slides.OpaqueColor{RgbColor: &slides.RgbColor{
		Red:             rgb.Red,
		Green:           rgb.Green,
		Blue:            rgb.Blue,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}}, nil
}

func solidFill(hex string) (*slides.SolidFill, error) {
	c, err := opaqueColor(hex)
	if err != nil {
		return nil, err
	}
	return &slides.SolidFill{Color: c}, nil
}
