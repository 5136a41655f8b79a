package slides

import (
	"context"
	"fmt"
	"math"
	"strings"

	slides "google.golang.org/api/slides/v1"
)

// AddImage places an image fetched from imageURL on a slide.
func (c *Client) AddImage(ctx context.Context, presentationID, slideID, imageURL string, g Geometry) (*ElementResult, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image URL is required")
	}
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %gx%g", g.Width, g.Height)
	}

	id := c.newID("image")
	_, err := c.batchUpdate(ctx, presentationID, &slides.Request{
		CreateImage: &slides.CreateImageRequest{
			ObjectId:          id,
			Url:               imageURL,
			ElementProperties: elementProperties(slideID, g),
		},
	})
	if err != nil {
		return nil, err
	}
	return &ElementResult{ObjectID: id, SlideID: slideID}, nil
}

// AddShape creates a shape of shapeType (RECTANGLE, ELLIPSE, ...) with
// optional text.
func (c *Client) AddShape(ctx context.Context, presentationID, slideID, shapeType string, g Geometry, text string) (*ElementResult, error) {
	if shapeType == "" {
		return nil, fmt.Errorf("shape type is required")
	}

	id := c.newID("shape")
	reqs := []*slides.Request{{
		CreateShape: &slides.CreateShapeRequest{
			ObjectId:          id,
			ShapeType:         strings.ToUpper(shapeType),
			ElementProperties: elementProperties(slideID, g),
		},
	}}
	if text != "" {
		reqs = append(reqs, insertText(id, text))
	}

	if _, err := c.batchUpdate(ctx, presentationID, reqs...); err != nil {
		return nil, err
	}
	return &ElementResult{ObjectID: id, SlideID: slideID}, nil
}

// AddLine draws a line from (StartX, StartY) to (EndX, EndY).
func (c *Client) AddLine(ctx context.Context, presentationID, slideID string, opts LineOptions) (*ElementResult, error) {
	category := strings.ToUpper(opts.Category)
	if category == "" {
		category = "STRAIGHT"
	}

	dx, dy := opts.EndX-opts.StartX, opts.EndY-opts.StartY
	if dx == 0 && dy == 0 {
		return nil, fmt.Errorf("line start and end are the same point")
	}

	// The line runs corner to corner of its box; negative scales flip it
	// so that it starts at the start point.
	scaleX, scaleY := 1.0, 1.0
	if dx < 0 {
		scaleX = -1
	}
	if dy < 0 {
		scaleY = -1
	}

	id := c.newID("line")
	reqs := []*slides.Request{{
		CreateLine: &slides.CreateLineRequest{
			ObjectId: id,
			Category: category,
			ElementProperties: &slides.PageElementProperties{
				PageObjectId: slideID,
				Size:         &slides.Size{Width: pt(math.Abs(dx)), Height: pt(math.Abs(dy))},
				Transform: &slides.AffineTransform{
					ScaleX:          scaleX,
					ScaleY:          scaleY,
					TranslateX:      opts.StartX,
					TranslateY:      opts.StartY,
					Unit:            unitPoints,
					ForceSendFields: []string{"ScaleX", "ScaleY", "TranslateX", "TranslateY"},
				},
			},
		},
	}}

	props := &slides.LineProperties{}
	var fields []string
	if opts.Color != "" {
		fill, err := solidFill(opts.Color)
		if err != nil {
			return nil, err
		}
		props.LineFill = &slides.LineFill{SolidFill: fill}
		fields = append(fields, "lineFill.solidFill.color")
	}
	if opts.Weight > 0 {
		props.Weight = pt(opts.Weight)
		fields = append(fields, "weight")
	}
	if len(fields) > 0 {
		reqs = append(reqs, &slides.Request{
			UpdateLineProperties: &slides.UpdateLinePropertiesRequest{
				ObjectId:       id,
				LineProperties: props,
				Fields:         strings.Join(fields, ","),
			},
		})
	}

	if _, err := c.batchUpdate(ctx, presentationID, reqs...); err != nil {
		return nil, err
	}
	return &ElementResult{ObjectID: id, SlideID: slideID}, nil
}

// UpdateTextStyle applies style to all text of a shape or table.
func (c *Client) UpdateTextStyle(ctx context.Context, presentationID, objectID string, style TextStyle) (*ElementResult, error) {
	ts := &slides.TextStyle{}
	var fields []string

	if style.Bold != nil {
		ts.Bold = *style.Bold
		ts.ForceSendFields = append(ts.ForceSendFields, "Bold")
		fields = append(fields, "bold")
	}
	if style.Italic != nil {
		ts.Italic = *style.Italic
		ts.ForceSendFields = append(ts.ForceSendFields, "Italic")
		fields = append(fields, "italic")
	}
	if style.Underline != nil {
		ts.Underline = *style.Underline
		ts.ForceSendFields = append(ts.ForceSendFields, "Underline")
		fields = append(fields, "underline")
	}
	if style.FontSize > 0 {
		ts.FontSize = pt(style.FontSize)
		fields = append(fields, "fontSize")
	}
	if style.FontFamily != "" {
		ts.FontFamily = style.FontFamily
		fields = append(fields, "fontFamily")
	}
	if style.ForegroundColor != "" {
		color, err := opaqueColor(style.ForegroundColor)
		if err != nil {
			return nil, err
		}
		ts.ForegroundColor = &slides.OptionalColor{OpaqueColor: color}
		fields = append(fields, "foregroundColor")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no text style given")
	}

	_, err := c.batchUpdate(ctx, presentationID, &slides.Request{
		UpdateTextStyle: &slides.UpdateTextStyleRequest{
			ObjectId:  objectID,
			TextRange: &slides.Range{Type: textRangeAll},
			Style:     ts,
			Fields:    strings.Join(fields, ","),
		},
	})
	if err != nil {
		return nil, err
	}
	return &ElementResult{ObjectID: objectID}, nil
}

// UpdateShapeStyle changes the fill and outline of a shape.
func (c *Client) UpdateShapeStyle(ctx context.Context, presentationID, objectID string, style ShapeStyle) (*ElementResult, error) {
	props := &slides.ShapeProperties{}
	var fields []string

	if style.FillColor != "" {
		fill, err := solidFill(style.FillColor)
		if err != nil {
			return nil, err
		}
		props.ShapeBackgroundFill = &slides.ShapeBackgroundFill{SolidFill: fill}
		fields = append(fields, "shapeBackgroundFill.solidFill.color")
	}
	if style.OutlineColor != "" || style.OutlineWeight > 0 {
		props.Outline = &slides.Outline{}
	}
	if style.OutlineColor != "" {
		fill, err := solidFill(style.OutlineColor)
		if err != nil {
			return nil, err
		}
		props.Outline.OutlineFill = &slides.OutlineFill{SolidFill: fill}
		fields = append(fields, "outline.outlineFill.solidFill.color")
	}
	if style.OutlineWeight > 0 {
		props.Outline.Weight = pt(style.OutlineWeight)
		fields = append(fields, "outline.weight")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no shape style given")
	}

	_, err := c.batchUpdate(ctx, presentationID, &slides.Request{
		UpdateShapeProperties: &slides.UpdateShapePropertiesRequest{
			ObjectId:        objectID,
			ShapeProperties: props,
			Fields:          strings.Join(fields, ","),
		},
	})
	if err != nil {
		return nil, err
	}
	return &ElementResult{ObjectID: objectID}, nil
}

// DeleteElement removes a page element or a whole slide.
func (c *Client) DeleteElement(ctx context.Context, presentationID, objectID string) error {
	if objectID == "" {
		return fmt.Errorf("object id is required")
	}
	_, err := c.batchUpdate(ctx, presentationID, &slides.Request{
		DeleteObject: &slides.DeleteObjectRequest{ObjectId: objectID},
	})
	return err
}

func elementProperties(slideID string, g Geometry) *slides.PageElementProperties {
	return &slides.PageElementProperties{
		PageObjectId: slideID,
		Size:         &slides.Size{Width: pt(g.Width), Height: pt(g.Height)},
		Transform:    rotatedTransform(g),
	}
}

// rotatedTransform positions an element at (X, Y) rotated around its center.
func rotatedTransform(g Geometry) *slides.AffineTransform {
	rad := g.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	if g.Rotation == 0 {
		cos, sin = 1, 0
	}
	cx, cy := g.Width/2, g.Height/2

	t := &slides.AffineTransform{
		ScaleX:          cos,
		ScaleY:          cos,
		TranslateX:      g.X + cx - (cos*cx - sin*cy),
		TranslateY:      g.Y + cy - (sin*cx + cos*cy),
		Unit:            unitPoints,
		ForceSendFields: []string{"ScaleX", "ScaleY", "TranslateX", "TranslateY"},
	}
	if sin != 0 {
		t.ShearX = -sin
		t.ShearY = sin
	}
	return t
}
