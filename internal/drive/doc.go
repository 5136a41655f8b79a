// Package drive provides a client for the Google Drive operations used by the
// workspace commands.
//
// Listing is scoped to one folder. New spreadsheets and copies are placed in
// that folder, and documents and presentations are deleted through Drive
// because their own APIs have no delete call.
//
// Example usage:
//
//	client, err := drive.NewClient(ctx, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	files, err := client.ListFolder(ctx, folderID)
package drive
