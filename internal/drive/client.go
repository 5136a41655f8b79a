package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const fileFields = "id, name, mimeType, createdTime, modifiedTime, webViewLink, parents"

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
}

// NewClient creates a Drive client. Authentication comes from opts,
// normally option.WithHTTPClient with an OAuth2 client.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: svc}, nil
}

// Service exposes the underlying API service.
func (c *Client) Service() *drive.Service {
	return c.service
}

// ListFolder lists the non-trashed files directly inside folderID, most
// recently modified first.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}

	query := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))
	files := []*FileInfo{}
	err := c.service.Files.List().
		Q(query).
		OrderBy("modifiedTime desc").
		PageSize(100).
		Fields("nextPageToken, files(id, name, mimeType, createdTime, modifiedTime)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, convertToFileInfo(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list files in folder %s: %w", folderID, err)
	}
	return files, nil
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// CopyFile copies fileID under a new name. When folderID is set the copy is
// placed in that folder.
func (c *Client) CopyFile(ctx context.Context, fileID, newName, folderID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if newName == "" {
		return nil, fmt.Errorf("new name is required")
	}

	copied := &drive.File{Name: newName}
	if folderID != "" {
		copied.Parents = []string{folderID}
	}

	file, err := c.service.Files.Copy(fileID, copied).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to copy file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// RenameFile changes the name of a file.
func (c *Client) RenameFile(ctx context.Context, fileID, newName string) (*FileInfo, error) {
	return c.MoveFile(ctx, fileID, &MoveOptions{NewName: newName})
}

// MoveToFolder makes folderID the only parent of fileID.
func (c *Client) MoveToFolder(ctx context.Context, fileID, folderID string) (*FileInfo, error) {
	current, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var remove []string
	for _, p := range current.Parents {
		if p != folderID {
			remove = append(remove, p)
		}
	}

	return c.MoveFile(ctx, fileID, &MoveOptions{
		AddParents:    []string{folderID},
		RemoveParents: remove,
	})
}

// MoveFile moves or renames a file
func (c *Client) MoveFile(ctx context.Context, fileID string, options *MoveOptions) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil {
		return nil, fmt.Errorf("move options are required")
	}

	update := &drive.File{}
	if options.NewName != "" {
		update.Name = options.NewName
	}

	call := c.service.Files.Update(fileID, update).
		Context(ctx).
		Fields(fileFields)

	if len(options.AddParents) > 0 {
		call = call.AddParents(strings.Join(options.AddParents, ","))
	}
	if len(options.RemoveParents) > 0 {
		call = call.RemoveParents(strings.Join(options.RemoveParents, ","))
	}

	driveFile, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update file %s: %w", fileID, err)
	}

	return convertToFileInfo(driveFile), nil
}

// DeleteFile deletes a file from Google Drive
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	err := c.service.Files.Delete(fileID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}

	return nil
}

// escapeQuery escapes a value for use inside a single-quoted Drive query string.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
	}

	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			fileInfo.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			fileInfo.ModifiedTime = t
		}
	}

	return fileInfo
}
