package docs_tools

import (
	"context"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/docs"
	"github.com/teemow/mcp-google-workspace/internal/drive"
	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

const service = string(google.ServiceDocs)

// RenderedDocument is returned by get_document_details for the markdown and
// text formats.
type RenderedDocument struct {
	DocumentID string `json:"documentId"`
	Format     string `json:"format"`
	Content    string `json:"content"`
}

// DeleteResult is returned by delete_document.
type DeleteResult struct {
	DocumentID string `json:"documentId"`
	Deleted    bool   `json:"deleted"`
}

// RegisterDocsCommands adds the Docs commands to the registry of sc.
func RegisterDocsCommands(sc *server.ServerContext) error {
	return sc.Registry().RegisterAll(Descriptors(sc)...)
}

func documentParam() dispatch.Param {
	return dispatch.String("document_id", dispatch.Required(), dispatch.Normalize(drive.FileID),
		dispatch.Description("ID or URL of the document"))
}

func indexParam() dispatch.Param {
	return dispatch.Int("index", dispatch.Default(1), dispatch.Description("Body index to insert at; 1 is the start of the document"))
}

// Descriptors returns the Docs command descriptors bound to sc.
func Descriptors(sc *server.ServerContext) []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{
			Name:        "create_document",
			Service:     service,
			Description: "Create an empty document",
			Params: []dispatch.Param{
				dispatch.String("title", dispatch.Required(), dispatch.Description("Title of the document")),
			},
			Handler: handleCreateDocument(sc),
		},
		{
			Name:        "get_document_details",
			Service:     service,
			Description: "Get a document as the API resource (json), Markdown or plain text",
			ReadOnly:    true,
			Params: []dispatch.Param{
				documentParam(),
				dispatch.Enum("format", docs.Formats, dispatch.Default(string(docs.FormatJSON)), dispatch.Description("Output format")),
			},
			Handler: handleGetDocument(sc),
		},
		{
			Name:        "get_document_metadata",
			Service:     service,
			Description: "Get the Drive metadata of a document: name, MIME type, times, link and parents",
			ReadOnly:    true,
			Params:      []dispatch.Param{documentParam()},
			Handler:     handleGetMetadata(sc),
		},
		{
			Name:        "delete_document",
			Service:     service,
			Description: "Permanently delete a document",
			Params:      []dispatch.Param{documentParam()},
			Handler:     handleDeleteDocument(sc),
		},
		{
			Name:        "insert_text_to_document",
			Service:     service,
			Description: "Insert text into a document",
			Params: []dispatch.Param{
				documentParam(),
				dispatch.String("text", dispatch.Required(), dispatch.Description("Text to insert")),
				indexParam(),
			},
			Handler: handleInsertText(sc),
		},
		{
			Name:        "insert_heading_to_document",
			Service:     service,
			Description: "Insert a heading paragraph into a document",
			Params: []dispatch.Param{
				documentParam(),
				dispatch.String("text", dispatch.Required(), dispatch.Description("Heading text")),
				dispatch.Int("level", dispatch.Default(1), dispatch.Description("Heading level, 1 to 6")),
				indexParam(),
			},
			Handler: handleInsertHeading(sc),
		},
		{
			Name:        "insert_image_to_document",
			Service:     service,
			Description: "Insert an inline image fetched from a URL",
			Params: []dispatch.Param{
				documentParam(),
				dispatch.String("image_url", dispatch.Required(), dispatch.Description("Publicly reachable image URL")),
				indexParam(),
				dispatch.Float("width", dispatch.Description("Width in points; natural size when omitted")),
				dispatch.Float("height", dispatch.Description("Height in points; natural size when omitted")),
			},
			Handler: handleInsertImage(sc),
		},
		{
			Name:        "create_table_in_document",
			Service:     service,
			Description: "Insert an empty table into a document",
			Params: []dispatch.Param{
				documentParam(),
				dispatch.Int("rows", dispatch.Required(), dispatch.Description("Number of rows")),
				dispatch.Int("columns", dispatch.Required(), dispatch.Description("Number of columns")),
				dispatch.Int("index", dispatch.Description("Body index to insert at; appends to the body when omitted")),
			},
			Handler: handleCreateTable(sc),
		},
	}
}

func handleCreateDocument(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}
		return client.CreateDocument(ctx, args.String("title"))
	}
}

func handleGetDocument(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		format, err := docs.ParseFormat(args.String("format"))
		if err != nil {
			return nil, common.Invalid("format", "one of json, markdown, text", err.Error())
		}
		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}

		id := args.String("document_id")
		rendered, err := client.Render(ctx, id, format)
		if err != nil {
			return nil, err
		}
		if content, ok := rendered.(string); ok {
			return &RenderedDocument{DocumentID: id, Format: string(format), Content: content}, nil
		}
		return rendered, nil
	}
}

func handleGetMetadata(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Drive(ctx)
		if err != nil {
			return nil, err
		}
		return client.GetFile(ctx, args.String("document_id"))
	}
}

func handleDeleteDocument(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}
		id := args.String("document_id")
		if err := client.DeleteDocument(ctx, id); err != nil {
			return nil, err
		}
		return &DeleteResult{DocumentID: id, Deleted: true}, nil
	}
}

// bodyIndex returns the index argument, which must be at least 1.
func bodyIndex(args dispatch.Args) (int64, error) {
	index := args.Int("index")
	if index < 1 {
		return 0, common.Invalid("index", "a body index of at least 1", "")
	}
	return index, nil
}

func handleInsertText(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		index, err := bodyIndex(args)
		if err != nil {
			return nil, err
		}
		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}
		return client.InsertText(ctx, args.String("document_id"), args.String("text"), index)
	}
}

func handleInsertHeading(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		level := args.Int("level")
		if level < 1 || level > docs.MaxHeadingLevel {
			return nil, common.Invalid("level", "a heading level from 1 to 6", "")
		}
		index, err := bodyIndex(args)
		if err != nil {
			return nil, err
		}
		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}
		return client.InsertHeading(ctx, args.String("document_id"), args.String("text"), int(level), index)
	}
}

func handleInsertImage(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		index, err := bodyIndex(args)
		if err != nil {
			return nil, err
		}

		var size *docs.ImageSize
		if args.Has("width") || args.Has("height") {
			size = &docs.ImageSize{Width: args.Float("width"), Height: args.Float("height")}
			if size.Width < 0 {
				return nil, common.Invalid("width", "a positive size in points", "")
			}
			if size.Height < 0 {
				return nil, common.Invalid("height", "a positive size in points", "")
			}
		}

		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}
		return client.InsertImage(ctx, args.String("document_id"), args.String("image_url"), index, size)
	}
}

func handleCreateTable(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		rows, columns := args.Int("rows"), args.Int("columns")
		if rows < 1 {
			return nil, common.Invalid("rows", "at least one row", "")
		}
		if columns < 1 {
			return nil, common.Invalid("columns", "at least one column", "")
		}
		index := args.Int("index")
		if index < 0 {
			return nil, common.Invalid("index", "a body index of at least 1", "")
		}

		client, err := sc.Facade().Docs(ctx)
		if err != nil {
			return nil, err
		}
		return client.InsertTable(ctx, args.String("document_id"), rows, columns, index)
	}
}
