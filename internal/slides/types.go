package slides

import (
	slides "google.golang.org/api/slides/v1"
)

// Default slide size in points, used when a presentation reports none.
const (
	DefaultSlideWidth  = 960.0
	DefaultSlideHeight = 540.0
)

// Defaults for add_image when no geometry is given.
const (
	DefaultImageX      = 100.0
	DefaultImageY      = 100.0
	DefaultImageWidth  = 400.0
	DefaultImageHeight = 300.0
)

// Default size of shapes added without explicit dimensions.
const (
	DefaultShapeWidth  = 200.0
	DefaultShapeHeight = 100.0
)

// DefaultLayout is the predefined layout used for new slides.
const DefaultLayout = "TITLE_AND_BODY"

// Layouts lists the predefined slide layouts.
var Layouts = []string{
	"BLANK", "CAPTION_ONLY", "TITLE", "TITLE_AND_BODY", "TITLE_AND_TWO_COLUMNS",
	"TITLE_ONLY", "SECTION_HEADER", "SECTION_TITLE_AND_DESCRIPTION",
	"ONE_COLUMN_TEXT", "MAIN_POINT", "BIG_NUMBER",
}

// TransitionTypes lists the transitions that can be recorded on a slide.
var TransitionTypes = []string{
	"NONE", "FADE", "DISSOLVE", "SLIDE_FROM_RIGHT", "SLIDE_FROM_LEFT",
	"FLIP", "CUBE", "GALLERY", "ZOOM",
}

// LineCategories lists the accepted line categories.
var LineCategories = []string{"STRAIGHT", "BENT", "CURVED"}

// ElementTypes lists the page element kinds search can filter on.
var ElementTypes = []string{"shape", "image", "line", "table", "video", "wordArt", "sheetsChart", "elementGroup"}

// PresentationInfo identifies a presentation.
type PresentationInfo struct {
	ID    string `json:"presentationId"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Dimensions is a slide size in points and inches.
type Dimensions struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	WidthInches  float64 `json:"widthInches"`
	HeightInches float64 `json:"heightInches"`
}

// SlideResult is returned by slide-level operations.
type SlideResult struct {
	SlideID    string      `json:"slideId"`
	Layout     string      `json:"layout,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	// Replaced is the id of a slide removed by the operation.
	Replaced string `json:"replaced,omitempty"`
}

// ElementResult identifies a created or updated page element.
type ElementResult struct {
	ObjectID string `json:"objectId"`
	SlideID  string `json:"slideId,omitempty"`
}

// ElementInfo summarises a page element found by SearchElements.
type ElementInfo struct {
	ObjectID    string              `json:"objectId"`
	SlideID     string              `json:"slideId"`
	Type        string              `json:"type"`
	ShapeType   string              `json:"shapeType,omitempty"`
	Placeholder string              `json:"placeholder,omitempty"`
	Text        string              `json:"text,omitempty"`
	Element     *slides.PageElement `json:"element"`
}

// Geometry places an element on a slide.
type Geometry struct {
	X, Y          float64
	Width, Height float64
	// Rotation in degrees, clockwise around the element center.
	Rotation float64
}

// TextStyle lists text style changes; unset fields are left untouched.
type TextStyle struct {
	Bold            *bool
	Italic          *bool
	Underline       *bool
	FontSize        float64
	FontFamily      string
	ForegroundColor string
}

// ShapeStyle lists shape style changes; unset fields are left untouched.
type ShapeStyle struct {
	FillColor     string
	OutlineColor  string
	OutlineWeight float64
}

// LineOptions describes a line between two points.
type LineOptions struct {
	StartX, StartY float64
	EndX, EndY     float64
	Category       string
	Color          string
	Weight         float64
}

// NotesResult reports the speaker notes written to a slide.
type NotesResult struct {
	SlideID string `json:"slideId"`
	NotesID string `json:"notesObjectId"`
	Notes   string `json:"notes"`
}

// TransitionResult reports a transition recorded in speaker notes. The
// Slides API cannot set transitions, so Applied is always false.
type TransitionResult struct {
	SlideID  string  `json:"slideId"`
	Type     string  `json:"transitionType"`
	Duration float64 `json:"duration"`
	Recorded bool    `json:"recorded"`
	Applied  bool    `json:"applied"`
	Note     string  `json:"note"`
}
