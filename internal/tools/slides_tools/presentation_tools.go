package slides_tools

import (
	"context"
	"errors"

	"github.com/teemow/mcp-google-workspace/internal/colors"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/slides"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

// DeleteResult is returned by delete_presentation.
type DeleteResult struct {
	PresentationID string `json:"presentationId"`
	Deleted        bool   `json:"deleted"`
}

// slideError reports an unknown slide as a bad slide_id.
func slideError(err error) error {
	var notFound *slides.SlideNotFoundError
	if errors.As(err, &notFound) {
		return common.Invalid("slide_id", "a slide of the presentation", notFound.Error())
	}
	return err
}

// requireSlide fails with an invalid slide_id unless slideID is a slide of
// the presentation.
func requireSlide(ctx context.Context, client *slides.Client, presentationID, slideID string) error {
	p, err := client.GetPresentation(ctx, presentationID)
	if err != nil {
		return err
	}
	for _, s := range p.Slides {
		if s.ObjectId == slideID {
			return nil
		}
	}
	return slideError(&slides.SlideNotFoundError{PresentationID: presentationID, SlideID: slideID})
}

// checkColors validates the hex color arguments that were given.
func checkColors(args dispatch.Args, names ...string) error {
	for _, name := range names {
		if !args.Has(name) || args.String(name) == "" {
			continue
		}
		if _, err := colors.ParseHex(args.String(name)); err != nil {
			return common.Invalid(name, "hex color #RRGGBB or #RGB", err.Error())
		}
	}
	return nil
}

// slideTarget resolves the client for a command on one slide and checks
// that the slide exists.
func slideTarget(ctx context.Context, sc *server.ServerContext, args dispatch.Args) (*slides.Client, error) {
	client, err := sc.Facade().Slides(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSlide(ctx, client, args.String("presentation_id"), args.String("slide_id")); err != nil {
		return nil, err
	}
	return client, nil
}

func handleCreatePresentation(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		return client.CreatePresentation(ctx, args.String("title"))
	}
}

func handleGetPresentation(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		return client.GetPresentation(ctx, args.String("presentation_id"))
	}
}

func handleDeletePresentation(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		id := args.String("presentation_id")
		if err := client.DeletePresentation(ctx, id); err != nil {
			return nil, err
		}
		return &DeleteResult{PresentationID: id, Deleted: true}, nil
	}
}

func handleAddSlide(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		return client.AddSlide(ctx, args.String("presentation_id"),
			args.String("title"), args.String("content"), args.String("layout"))
	}
}

func handleSearchElements(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		found, err := client.SearchElements(ctx, args.String("presentation_id"),
			args.String("slide_id"), args.String("element_type"))
		if err != nil {
			return nil, slideError(err)
		}
		return found, nil
	}
}

func handleUpdateBackground(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		color, imageURL := args.String("color"), args.String("image_url")
		if (color == "") == (imageURL == "") {
			return nil, common.Invalid("color", "exactly one of color and image_url", "")
		}
		if err := checkColors(args, "color"); err != nil {
			return nil, err
		}
		client, err := slideTarget(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.UpdateBackground(ctx, args.String("presentation_id"), args.String("slide_id"), color, imageURL)
	}
}

func handleUpdateLayout(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Slides(ctx)
		if err != nil {
			return nil, err
		}
		result, err := client.UpdateLayout(ctx, args.String("presentation_id"),
			args.String("slide_id"), args.String("layout"))
		if err != nil {
			return nil, slideError(err)
		}
		return result, nil
	}
}

func handleUpdateTransition(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		if args.Float("duration") < 0 {
			return nil, common.Invalid("duration", "a non-negative number of seconds", "")
		}
		client, err := slideTarget(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.RecordTransition(ctx, args.String("presentation_id"), args.String("slide_id"),
			args.String("transition_type"), args.Float("duration"))
	}
}

func handleAddNotes(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := slideTarget(ctx, sc, args)
		if err != nil {
			return nil, err
		}
		return client.SetNotes(ctx, args.String("presentation_id"), args.String("slide_id"), args.String("notes"))
	}
}
