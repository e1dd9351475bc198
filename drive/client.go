// Package drive creates per-project Google Drive folders and uploads
// supplementary files. Folder creation is fatal for a submission when the
// integration is enabled; file uploads are best-effort.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"renovabot/logger"
	"renovabot/survey"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMIME = "application/vnd.google-apps.folder"

// subfolderNames are created inside every project folder so the crew has a
// fixed layout for photos and documents.
var subfolderNames = []string{"before", "after", "3d", "drawings"}

// Client manages the project folder hierarchy under one parent folder.
type Client struct {
	svc      *drive.Service
	parentID string
}

// Options configures the Drive client.
type Options struct {
	CredentialsFile string
	ParentFolderID  string
}

// New builds a Drive client. The parent folder must already exist and be
// shared with the service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.ParentFolderID == "" {
		return nil, fmt.Errorf("drive: empty parent folder id")
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(opts.CredentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("drive: service init: %w", err)
	}
	logger.Drive.Info("drive client ready",
		slog.String("parent_folder_id", opts.ParentFolderID),
	)
	return &Client{svc: svc, parentID: opts.ParentFolderID}, nil
}

// CreateProjectFolder creates the project folder with its fixed subfolders
// and opens it for link viewing. Returns the folder ID and shareable URL.
func (c *Client) CreateProjectFolder(ctx context.Context, clientName, roomType, location string) (survey.ProjectFolder, error) {
	start := time.Now()
	name := FolderName(clientName, roomType, location)

	folder, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMIME,
		Parents:  []string{c.parentID},
	}).Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		logger.Error(ctx, "drive", "folder.create.failed",
			slog.String("err", err.Error()),
		)
		return survey.ProjectFolder{}, fmt.Errorf("drive: create folder %q: %w", name, err)
	}

	for _, sub := range subfolderNames {
		_, err := c.svc.Files.Create(&drive.File{
			Name:     sub,
			MimeType: folderMIME,
			Parents:  []string{folder.Id},
		}).Fields("id").Context(ctx).Do()
		if err != nil {
			return survey.ProjectFolder{}, fmt.Errorf("drive: create subfolder %q: %w", sub, err)
		}
	}

	// Anyone with the link can view, so the sheet row link works for the
	// whole team without individual shares.
	_, err = c.svc.Permissions.Create(folder.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return survey.ProjectFolder{}, fmt.Errorf("drive: share folder: %w", err)
	}

	logger.Info(ctx, "drive", "folder.create.ok",
		slog.String("folder_url", folder.WebViewLink),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return survey.ProjectFolder{ID: folder.Id, URL: folder.WebViewLink}, nil
}

// CreateTextFile uploads a plain-text file into the given folder.
func (c *Client) CreateTextFile(ctx context.Context, folderID, name, content string) error {
	_, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: "text/plain",
		Parents:  []string{folderID},
	}).Media(strings.NewReader(content)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("drive: upload %q: %w", name, err)
	}
	return nil
}

// FolderName builds the project folder title from the lead answers.
func FolderName(clientName, roomType, location string) string {
	name := fmt.Sprintf("%s — %s", clientName, roomType)
	if location != "" && location != survey.NotSpecified {
		name = fmt.Sprintf("%s (%s)", name, location)
	}
	return name
}
