// Package drive pulls dataset drops out of a shared Google Drive
// folder so teams that publish catalog and sales exports there feed
// the same pipelines as direct uploads.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// listPageSize bounds one Files.List page. Folders larger than a page
// are walked via NextPageToken.
const listPageSize = 1000

// Service wraps the Drive v3 API with service-account auth.
type Service struct {
	srv *drive.Service
}

// NewService builds a read-only Drive client from service-account
// credentials JSON. The context bounds the client's token refreshes,
// so pass the process context rather than a request's.
func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

// File is the subset of Drive file metadata the sync needs.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// ListFiles returns the non-trashed files directly under a folder,
// ordered by name. An empty folderID means the Drive root. Every page
// is fetched, so large drop folders list completely.
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	pageToken := ""
	for {
		call := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
			OrderBy("name").
			PageSize(listPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list drive files: %w", err)
		}

		for _, f := range result.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}

		if result.NextPageToken == "" {
			return files, nil
		}
		pageToken = result.NextPageToken
	}
}

// DownloadFile streams a file's content into w.
func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("failed to download drive file: %w", err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

// FindFolderByPath resolves a slash-separated folder path to its Drive
// ID, starting at the root. An empty path resolves to the root itself.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}
		// Single quotes delimit strings in Drive queries.
		name := strings.ReplaceAll(folder, `'`, `\'`)

		result, err := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='application/vnd.google-apps.folder' and trashed=false",
				currentID, name)).
			Fields("files(id)").
			PageSize(1).
			Do()
		if err != nil {
			return "", fmt.Errorf("failed to find folder %s: %w", folder, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}
		currentID = result.Files[0].Id
	}
	return currentID, nil
}
