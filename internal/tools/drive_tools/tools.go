package drive_tools

import (
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/drive"
	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/server"
)

const service = string(google.ServiceDrive)

// RegisterDriveCommands adds the Drive commands to the registry of sc.
func RegisterDriveCommands(sc *server.ServerContext) error {
	return sc.Registry().RegisterAll(Descriptors(sc)...)
}

// Descriptors returns the Drive command descriptors bound to sc.
func Descriptors(sc *server.ServerContext) []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{
			Name:        "list_files",
			Service:     service,
			Description: "List the files in the configured Drive folder, most recently modified first",
			ReadOnly:    true,
			Handler:     handleListFiles(sc),
		},
		{
			Name:        "copy_file",
			Service:     service,
			Description: "Copy a Drive file under a new name",
			Params: []dispatch.Param{
				dispatch.String("file_id", dispatch.Required(), dispatch.Normalize(drive.FileID), dispatch.Description("ID or URL of the file to copy")),
				dispatch.String("new_name", dispatch.Required(), dispatch.Description("Name of the copy")),
			},
			Handler: handleCopyFile(sc),
		},
		{
			Name:        "rename_file",
			Service:     service,
			Description: "Rename a Drive file",
			Params: []dispatch.Param{
				dispatch.String("file_id", dispatch.Required(), dispatch.Normalize(drive.FileID), dispatch.Description("ID or URL of the file to rename")),
				dispatch.String("new_name", dispatch.Required(), dispatch.Description("New name of the file")),
			},
			Handler: handleRenameFile(sc),
		},
		{
			Name:        "create_spreadsheet",
			Service:     service,
			Description: "Create an empty spreadsheet in the configured folder and make it the current spreadsheet",
			Params: []dispatch.Param{
				dispatch.String("title", dispatch.Required(), dispatch.Description("Title of the new spreadsheet")),
			},
			Handler: handleCreateSpreadsheet(sc),
		},
		{
			Name:        "create_spreadsheet_from_template",
			Service:     service,
			Description: "Create a spreadsheet in the configured folder by copying a template",
			Params: []dispatch.Param{
				dispatch.String("template_id", dispatch.Required(), dispatch.Normalize(drive.FileID), dispatch.Description("ID or URL of the template spreadsheet")),
				dispatch.String("title", dispatch.Required(), dispatch.Description("Title of the new spreadsheet")),
			},
			Handler: handleCopySpreadsheet(sc, "template_id"),
		},
		{
			Name:        "create_spreadsheet_from_existing",
			Service:     service,
			Description: "Create a spreadsheet in the configured folder by copying an existing one",
			Params: []dispatch.Param{
				dispatch.String("source_id", dispatch.Required(), dispatch.Normalize(drive.FileID), dispatch.Description("ID or URL of the spreadsheet to copy")),
				dispatch.String("title", dispatch.Required(), dispatch.Description("Title of the new spreadsheet")),
			},
			Handler: handleCopySpreadsheet(sc, "source_id"),
		},
	}
}
