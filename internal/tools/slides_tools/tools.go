package slides_tools

import (
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/drive"
	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/slides"
)

const service = string(google.ServiceSlides)

// RegisterSlidesCommands adds the Slides commands to the registry of sc.
func RegisterSlidesCommands(sc *server.ServerContext) error {
	return sc.Registry().RegisterAll(Descriptors(sc)...)
}

func presentationParam() dispatch.Param {
	return dispatch.String("presentation_id", dispatch.Required(), dispatch.Normalize(drive.FileID),
		dispatch.Description("ID or URL of the presentation"))
}

func slideParam() dispatch.Param {
	return dispatch.String("slide_id", dispatch.Required(), dispatch.Description("Object ID of the slide"))
}

func objectParam() dispatch.Param {
	return dispatch.String("object_id", dispatch.Required(), dispatch.Description("Object ID of the page element"))
}

func pointParam(name, description string, def float64) dispatch.Param {
	return dispatch.Float(name, dispatch.Default(def), dispatch.Description(description+" in points"))
}

// Descriptors returns the Slides command descriptors bound to sc.
func Descriptors(sc *server.ServerContext) []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{
			Name:        "create_presentation",
			Service:     service,
			Description: "Create an empty presentation",
			Params: []dispatch.Param{
				dispatch.String("title", dispatch.Required(), dispatch.Description("Title of the presentation")),
			},
			Handler: handleCreatePresentation(sc),
		},
		{
			Name:        "get_presentation_details",
			Service:     service,
			Description: "Get the full presentation resource, including slides and page elements",
			ReadOnly:    true,
			Params:      []dispatch.Param{presentationParam()},
			Handler:     handleGetPresentation(sc),
		},
		{
			Name:        "delete_presentation",
			Service:     service,
			Description: "Permanently delete a presentation",
			Params:      []dispatch.Param{presentationParam()},
			Handler:     handleDeletePresentation(sc),
		},
		{
			Name:        "add_slide_to_presentation",
			Service:     service,
			Description: "Append a slide and fill its title and body placeholders",
			Params: []dispatch.Param{
				presentationParam(),
				dispatch.String("title", dispatch.Description("Slide title")),
				dispatch.String("content", dispatch.Description("Body text")),
				dispatch.Enum("layout", slides.Layouts, dispatch.Default(slides.DefaultLayout),
					dispatch.Description("Predefined layout of the new slide")),
			},
			Handler: handleAddSlide(sc),
		},
		{
			Name:        "search_slide_elements",
			Service:     service,
			Description: "List the page elements of a slide, optionally of one type only",
			ReadOnly:    true,
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.Enum("element_type", slides.ElementTypes, dispatch.Description("Only return elements of this type")),
			},
			Handler: handleSearchElements(sc),
		},
		{
			Name:        "update_slide_background",
			Service:     service,
			Description: "Fill a slide background with a solid color or an image; give exactly one of color and image_url",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.String("color", dispatch.Description("Hex color, e.g. #336699")),
				dispatch.String("image_url", dispatch.Description("Publicly reachable image URL")),
			},
			Handler: handleUpdateBackground(sc),
		},
		{
			Name:    "update_slide_layout",
			Service: service,
			Description: "Switch a slide to another predefined layout. The slide is replaced by a new one at the same " +
				"position carrying its title and body text; the result holds the new slide id",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.Enum("layout", slides.Layouts, dispatch.Required(), dispatch.Description("Predefined layout")),
			},
			Handler: handleUpdateLayout(sc),
		},
		{
			Name:    "update_slide_transition",
			Service: service,
			Description: "Record a transition for a slide in its speaker notes. The Slides API cannot apply " +
				"transitions, so they have to be applied in the editor",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.Enum("transition_type", slides.TransitionTypes, dispatch.Required(), dispatch.Description("Transition type")),
				dispatch.Float("duration", dispatch.Default(1.0), dispatch.Description("Duration in seconds")),
			},
			Handler: handleUpdateTransition(sc),
		},
		{
			Name:        "add_slide_notes",
			Service:     service,
			Description: "Replace the speaker notes of a slide",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.String("notes", dispatch.Required(), dispatch.Description("Speaker notes text")),
			},
			Handler: handleAddNotes(sc),
		},
		{
			Name:        "add_image_to_slide",
			Service:     service,
			Description: "Place an image on a slide",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.String("image_url", dispatch.Required(), dispatch.Description("Publicly reachable image URL")),
				pointParam("x", "Left edge", slides.DefaultImageX),
				pointParam("y", "Top edge", slides.DefaultImageY),
				pointParam("width", "Width", slides.DefaultImageWidth),
				pointParam("height", "Height", slides.DefaultImageHeight),
				dispatch.Float("rotation", dispatch.Default(0.0), dispatch.Description("Clockwise rotation in degrees")),
			},
			Handler: handleAddImage(sc),
		},
		{
			Name:        "add_shape_to_slide",
			Service:     service,
			Description: "Add a shape such as RECTANGLE, ELLIPSE or TRIANGLE to a slide, optionally with text",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.String("shape_type", dispatch.Required(), dispatch.Description("Slides shape type, e.g. RECTANGLE")),
				pointParam("x", "Left edge", slides.DefaultImageX),
				pointParam("y", "Top edge", slides.DefaultImageY),
				pointParam("width", "Width", slides.DefaultShapeWidth),
				pointParam("height", "Height", slides.DefaultShapeHeight),
				dispatch.String("text", dispatch.Description("Text inside the shape")),
			},
			Handler: handleAddShape(sc),
		},
		{
			Name:        "add_line_to_slide",
			Service:     service,
			Description: "Draw a line between two points of a slide",
			Params: []dispatch.Param{
				presentationParam(),
				slideParam(),
				dispatch.Float("start_x", dispatch.Required(), dispatch.Description("Start x in points")),
				dispatch.Float("start_y", dispatch.Required(), dispatch.Description("Start y in points")),
				dispatch.Float("end_x", dispatch.Required(), dispatch.Description("End x in points")),
				dispatch.Float("end_y", dispatch.Required(), dispatch.Description("End y in points")),
				dispatch.Enum("line_category", slides.LineCategories, dispatch.Default("STRAIGHT"), dispatch.Description("Line category")),
				dispatch.String("color", dispatch.Default("#000000"), dispatch.Description("Hex color of the line")),
				dispatch.Float("weight", dispatch.Default(1.0), dispatch.Description("Line weight in points")),
			},
			Handler: handleAddLine(sc),
		},
		{
			Name:        "update_text_style",
			Service:     service,
			Description: "Style all text of a shape or table; parameters that are not given stay unchanged",
			Params: []dispatch.Param{
				presentationParam(),
				objectParam(),
				dispatch.Bool("bold", dispatch.Description("Bold text")),
				dispatch.Bool("italic", dispatch.Description("Italic text")),
				dispatch.Bool("underline", dispatch.Description("Underlined text")),
				dispatch.Float("font_size", dispatch.Description("Font size in points")),
				dispatch.String("font_family", dispatch.Description("Font family, e.g. Arial")),
				dispatch.String("foreground_color", dispatch.Description("Hex text color")),
			},
			Handler: handleUpdateTextStyle(sc),
		},
		{
			Name:        "update_shape_style",
			Service:     service,
			Description: "Change the fill and outline of a shape; parameters that are not given stay unchanged",
			Params: []dispatch.Param{
				presentationParam(),
				objectParam(),
				dispatch.String("fill_color", dispatch.Description("Hex fill color")),
				dispatch.String("outline_color", dispatch.Description("Hex outline color")),
				dispatch.Float("outline_weight", dispatch.Description("Outline weight in points")),
			},
			Handler: handleUpdateShapeStyle(sc),
		},
		{
			Name:        "delete_slide_element",
			Service:     service,
			Description: "Delete a page element, or a whole slide when given a slide id",
			Params: []dispatch.Param{
				presentationParam(),
				objectParam(),
			},
			Handler: handleDeleteElement(sc),
		},
	}
}
