package drive_tools

import (
	"context"
	"log/slog"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/drive"
	"github.com/teemow/mcp-google-workspace/internal/logging"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/sheets"
)

// SpreadsheetResult is returned by the spreadsheet creation commands.
type SpreadsheetResult struct {
	sheets.SpreadsheetInfo
	FolderID string `json:"folderId,omitempty"`
	// InFolder is false when the spreadsheet was created but could not be
	// moved into the configured folder.
	InFolder bool `json:"inFolder"`
}

func handleListFiles(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, _ dispatch.Args) (any, error) {
		client, err := sc.Facade().Drive(ctx)
		if err != nil {
			return nil, err
		}
		return client.ListFolder(ctx, sc.FolderID())
	}
}

func handleCopyFile(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Drive(ctx)
		if err != nil {
			return nil, err
		}
		file, err := client.CopyFile(ctx, args.String("file_id"), args.String("new_name"), "")
		if err != nil {
			return nil, err
		}
		if file.MimeType == drive.SpreadsheetMimeType {
			sc.SetCurrentSpreadsheet(file.ID)
		}
		return file, nil
	}
}

func handleRenameFile(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Drive(ctx)
		if err != nil {
			return nil, err
		}
		return client.RenameFile(ctx, args.String("file_id"), args.String("new_name"))
	}
}

func handleCreateSpreadsheet(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		sheetsClient, err := sc.Facade().Sheets(ctx)
		if err != nil {
			return nil, err
		}
		driveClient, err := sc.Facade().Drive(ctx)
		if err != nil {
			return nil, err
		}

		info, err := sheetsClient.CreateSpreadsheet(ctx, args.String("title"))
		if err != nil {
			return nil, err
		}
		sc.SetCurrentSpreadsheet(info.ID)

		result := &SpreadsheetResult{SpreadsheetInfo: *info, FolderID: sc.FolderID()}
		if _, err := driveClient.MoveToFolder(ctx, info.ID, sc.FolderID()); err != nil {
			// The spreadsheet exists; failing here would make a retry create a second one.
			slog.Warn("failed to move new spreadsheet into folder",
				logging.SpreadsheetID(info.ID),
				slog.String("folder_id", sc.FolderID()),
				logging.Err(err))
			return result, nil
		}
		result.InFolder = true
		return result, nil
	}
}

// handleCopySpreadsheet copies the spreadsheet named by sourceParam into the
// configured folder.
func handleCopySpreadsheet(sc *server.ServerContext, sourceParam string) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		client, err := sc.Facade().Drive(ctx)
		if err != nil {
			return nil, err
		}
		title := args.String("title")
		file, err := client.CopyFile(ctx, args.String(sourceParam), title, sc.FolderID())
		if err != nil {
			return nil, err
		}
		sc.SetCurrentSpreadsheet(file.ID)

		return &SpreadsheetResult{
			SpreadsheetInfo: sheets.SpreadsheetInfo{
				ID:    file.ID,
				Title: title,
				URL:   file.WebViewLink,
			},
			FolderID: sc.FolderID(),
			InFolder: true,
		}, nil
	}
}
