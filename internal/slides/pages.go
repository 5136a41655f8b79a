package slides

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	slides "google.golang.org/api/slides/v1"
)

const transitionPrefix = "[transition:"

// UpdateBackground fills a slide background with a solid color or a
// stretched image. Exactly one of color and imageURL must be set.
func (c *Client) UpdateBackground(ctx context.Context, presentationID, slideID, color, imageURL string) (*SlideResult, error) {
	if (color == "") == (imageURL == "") {
		return nil, fmt.Errorf("exactly one of color and image URL is required")
	}

	req := &slides.UpdatePagePropertiesRequest{
		ObjectId:       slideID,
		PageProperties: &slides.PageProperties{PageBackgroundFill: &slides.PageBackgroundFill{}},
	}
	if color != "" {
		fill, err := solidFill(color)
		if err != nil {
			return nil, err
		}
		req.PageProperties.PageBackgroundFill.SolidFill = fill
		req.Fields = "pageBackgroundFill.solidFill.color"
	} else {
		req.PageProperties.PageBackgroundFill.StretchedPictureFill = &slides.StretchedPictureFill{ContentUrl: imageURL}
		req.Fields = "pageBackgroundFill.stretchedPictureFill.contentUrl"
	}

	if _, err := c.batchUpdate(ctx, presentationID, &slides.Request{UpdatePageProperties: req}); err != nil {
		return nil, err
	}
	return &SlideResult{SlideID: slideID}, nil
}

// UpdateLayout switches a slide to another predefined layout. Slides cannot
// change the layout of an existing page, so a new slide with the layout is
// inserted at the same position, the title and body text is carried over
// where the new layout has placeholders for it, and the old slide is
// deleted. The result carries the new slide id.
func (c *Client) UpdateLayout(ctx context.Context, presentationID, slideID, layout string) (*SlideResult, error) {
	if layout == "" {
		return nil, fmt.Errorf("layout is required")
	}

	p, err := c.GetPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, s := range p.Slides {
		if s.ObjectId == slideID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, &SlideNotFoundError{PresentationID: presentationID, SlideID: slideID}
	}
	old := p.Slides[index]
	title := placeholderText(old, "TITLE", "CENTERED_TITLE")
	body := placeholderText(old, "BODY", "SUBTITLE")

	newID := c.newID("slide")
	_, err = c.batchUpdate(ctx, presentationID, &slides.Request{
		CreateSlide: &slides.CreateSlideRequest{
			ObjectId:             newID,
			InsertionIndex:       int64(index),
			SlideLayoutReference: &slides.LayoutReference{PredefinedLayout: layout},
			ForceSendFields:      []string{"InsertionIndex"},
		},
	})
	if err != nil {
		return nil, err
	}

	page, err := c.GetPage(ctx, presentationID, newID)
	if err != nil {
		return nil, err
	}
	reqs, err := placeholderRequests(page, title, body, false)
	if err != nil {
		return nil, err
	}
	reqs = append(reqs, &slides.Request{DeleteObject: &slides.DeleteObjectRequest{ObjectId: slideID}})

	if _, err := c.batchUpdate(ctx, presentationID, reqs...); err != nil {
		return nil, err
	}
	return &SlideResult{SlideID: newID, Layout: layout, Dimensions: dimensions(p), Replaced: slideID}, nil
}

// SetNotes replaces the speaker notes of a slide.
func (c *Client) SetNotes(ctx context.Context, presentationID, slideID, notes string) (*NotesResult, error) {
	notesID, current, err := c.speakerNotes(ctx, presentationID, slideID)
	if err != nil {
		return nil, err
	}
	if err := c.writeNotes(ctx, presentationID, notesID, current, notes); err != nil {
		return nil, err
	}
	return &NotesResult{SlideID: slideID, NotesID: notesID, Notes: notes}, nil
}

// RecordTransition stores a transition as a "[transition: TYPE Ns]" line in
// the speaker notes, replacing an earlier one. The Slides API has no request
// to set page transitions.
func (c *Client) RecordTransition(ctx context.Context, presentationID, slideID, transitionType string, duration float64) (*TransitionResult, error) {
	if transitionType == "" {
		return nil, fmt.Errorf("transition type is required")
	}
	if duration < 0 {
		return nil, fmt.Errorf("duration must not be negative")
	}

	notesID, current, err := c.speakerNotes(ctx, presentationID, slideID)
	if err != nil {
		return nil, err
	}

	line := fmt.Sprintf("%s %s %ss]", transitionPrefix, strings.ToUpper(transitionType), strconv.FormatFloat(duration, 'f', -1, 64))
	kept := make([]string, 0, 4)
	for _, l := range strings.Split(strings.TrimRight(current, "\n"), "\n") {
		if l != "" && !strings.HasPrefix(strings.TrimSpace(l), transitionPrefix) {
			kept = append(kept, l)
		}
	}
	kept = append(kept, line)

	if err := c.writeNotes(ctx, presentationID, notesID, current, strings.Join(kept, "\n")); err != nil {
		return nil, err
	}
	return &TransitionResult{
		SlideID:  slideID,
		Type:     strings.ToUpper(transitionType),
		Duration: duration,
		Recorded: true,
		Note:     line,
	}, nil
}

// speakerNotes returns the speaker notes shape id of a slide and its
// current text. The shape may not exist yet; inserting text creates it.
func (c *Client) speakerNotes(ctx context.Context, presentationID, slideID string) (string, string, error) {
	page, err := c.GetPage(ctx, presentationID, slideID)
	if err != nil {
		return "", "", err
	}
	if page.SlideProperties == nil || page.SlideProperties.NotesPage == nil ||
		page.SlideProperties.NotesPage.NotesProperties == nil ||
		page.SlideProperties.NotesPage.NotesProperties.SpeakerNotesObjectId == "" {
		return "", "", fmt.Errorf("slide %s has no notes page", slideID)
	}

	notesPage := page.SlideProperties.NotesPage
	notesID := notesPage.NotesProperties.SpeakerNotesObjectId
	for _, el := range notesPage.PageElements {
		if el.ObjectId == notesID && el.Shape != nil {
			return notesID, shapeText(el.Shape), nil
		}
	}
	return notesID, "", nil
}

func (c *Client) writeNotes(ctx context.Context, presentationID, notesID, current, text string) error {
	var reqs []*slides.Request
	if strings.TrimSpace(current) != "" {
		reqs = append(reqs, &slides.Request{
			DeleteText: &slides.DeleteTextRequest{ObjectId: notesID, TextRange: &slides.Range{Type: textRangeAll}},
		})
	}
	if text != "" {
		reqs = append(reqs, insertText(notesID, text))
	}
	_, err := c.batchUpdate(ctx, presentationID, reqs...)
	return err
}

func placeholderText(page *slides.Page, types ...string) string {
	id := findPlaceholder(page, types...)
	if id == "" {
		return ""
	}
	for _, el := range page.PageElements {
		if el.ObjectId == id {
			return strings.TrimRight(shapeText(el.Shape), "\n")
		}
	}
	return ""
}
