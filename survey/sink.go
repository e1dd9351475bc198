package survey

import (
	"context"
	"time"
)

// FieldValue pairs a question's display name with the accepted answer.
type FieldValue struct {
	Field string
	Value string
}

// Submission is the transient bundle handed to the sinks when a survey
// completes. It is never stored by the engine itself.
type Submission struct {
	ID          string
	UserID      int64
	SubmittedAt time.Time
	Fields      []FieldValue
	FolderURL   string
}

// ProjectFolder identifies a created Drive folder.
type ProjectFolder struct {
	ID  string
	URL string
}

// RowAppender is the primary persistence sink. A failure here is fatal for
// the submission and is surfaced to the user.
type RowAppender interface {
	AppendRow(ctx context.Context, sub Submission) error
}

// FolderCreator is the optional Drive capability. Deployments without Drive
// run the engine with a nil FolderCreator.
type FolderCreator interface {
	CreateProjectFolder(ctx context.Context, clientName, roomType, location string) (ProjectFolder, error)
	CreateTextFile(ctx context.Context, folderID, name, content string) error
}

// Notifier delivers best-effort admin notifications. Failures are logged
// and swallowed.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
