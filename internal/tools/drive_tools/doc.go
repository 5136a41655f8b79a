// Package drive_tools registers the Google Drive commands.
//
// Available commands:
//   - list_files: list the configured folder, newest first
//   - copy_file: copy a file under a new name
//   - rename_file: rename a file
//   - create_spreadsheet: create a spreadsheet inside the configured folder
//   - create_spreadsheet_from_template: copy a template into the folder
//   - create_spreadsheet_from_existing: copy a spreadsheet into the folder
//
// Commands that create or copy a spreadsheet make it the current
// spreadsheet, which the Sheets commands use when spreadsheet_id is omitted.
//
// Example invocation from the command line:
//
//	mcp-google-workspace run create_spreadsheet_from_template \
//	  --template_id 1AbC... --title "Q3 report"
package drive_tools
