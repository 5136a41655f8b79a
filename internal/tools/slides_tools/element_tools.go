package slides_tools

import (
	"context"
	"strings"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/slides"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

func geometry(args dispatch.Args) (slides.Geometry, error) {
	g := slides.Geometry{
		X:        args.Float("x"),
		Y:        args.Float("y"),
		Width:    args.Float("width"),
		Height:   args.Float("height"),
		Rotation: args.Float("rotation"),
	}
	if g.Width <= 0 {
		return g, common.Invalid("width", "a positive size in points", "")
	}
	if g.Height <= 0 {
		return g, common.Invalid("height", "a positive size in points", "")
	}
	return g, nil
}

func handleAddImage(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		g, err := geometry(args)
		if err != nil {
			return nil, err
		}
		client, err := slideTarget(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.AddImage(ctx, args.String("presentation_id"), args.String("slide_id"), args.String("image_url"), g)
	}
}

func handleAddShape(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		g, err := geometry(args)
		if err != nil {
			return nil, err
		}
		client, err := slideTarget(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.AddShape(ctx, args.String("presentation_id"), args.String("slide_id"),
			args.String("shape_type"), g, args.String("text"))
	}
}

func handleAddLine(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		opts := slides.LineOptions{
			StartX:   args.Float("start_x"),
			StartY:   args.Float("start_y"),
			EndX:     args.Float("end_x"),
			EndY:     args.Float("end_y"),
			Category: args.String("line_category"),
			Color:    args.String("color"),
			Weight:   args.Float("weight"),
		}
		if opts.StartX == opts.EndX && opts.StartY == opts.EndY {
			return nil, common.Invalid("end_x", "an end point different from the start point", "")
		}
		if err := checkColors(args, "color"); err != nil {
			return nil, err
		}
		client, err := slideTarget(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.AddLine(ctx, args.String("presentation_id"), args.String("slide_id"), opts)
	}
}

var textStyleParams = []string{"bold", "italic", "underline", "font_size", "font_family", "foreground_color"}

func handleUpdateTextStyle(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		if err := requireOneOf(args, textStyleParams); err != nil {
			return nil, err
		}
		if err := checkColors(args, "foreground_color"); err != nil {
			return nil, err
		}
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		return client.UpdateTextStyle(ctx, args.String("presentation_id"), args.String("object_id"), slides.TextStyle{
			Bold:            args.BoolPtr("bold"),
			Italic:          args.BoolPtr("italic"),
			Underline:       args.BoolPtr("underline"),
			FontSize:        args.Float("font_size"),
			FontFamily:      args.String("font_family"),
			ForegroundColor: args.String("foreground_color"),
		})
	}
}

var shapeStyleParams = []string{"fill_color", "outline_color", "outline_weight"}

func handleUpdateShapeStyle(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		if err := requireOneOf(args, shapeStyleParams); err != nil {
			return nil, err
		}
		if err := checkColors(args, "fill_color", "outline_color"); err != nil {
			return nil, err
		}
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		return client.UpdateShapeStyle(ctx, args.String("presentation_id"), args.String("object_id"), slides.ShapeStyle{
			FillColor:     args.String("fill_color"),
			OutlineColor:  args.String("outline_color"),
			OutlineWeight: args.Float("outline_weight"),
		})
	}
}

func handleDeleteElement(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		id := args.String("object_id")
		if err := client.DeleteElement(ctx, args.String("presentation_id"), id); err != nil {
			return nil, err
		}
		return &slides.ElementResult{ObjectID: id}, nil
	}
}

// requireOneOf fails unless at least one of names carries a change: a
// boolean, a non-empty string or a positive number.
func requireOneOf(args dispatch.Args, names []string) error {
	for _, name := range names {
		switch v := args[name].(type) {
		case bool:
			return nil
		case string:
			if v != "" {
				return nil
			}
		case float64:
			if v > 0 {
				return nil
			}
		}
	}
	return common.Invalid(names[0], "at least one of "+strings.Join(names, ", "), "nothing to change")
}
