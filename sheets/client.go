// Package sheets persists finished submissions as rows of a Google Sheets
// spreadsheet. The spreadsheet is the primary storage: an append failure is
// surfaced to the caller instead of being swallowed.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"renovabot/logger"
	"renovabot/survey"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Client appends submission rows to a single sheet of one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	questions     []survey.Question
}

// Options configures the Sheets client. Questions is the active questionnaire;
// the header row is derived from it so columns line up with appended rows.
type Options struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
	Questions       []survey.Question
}

// New builds a Sheets client and verifies the spreadsheet is reachable,
// creating the target sheet and its header row when missing.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: empty spreadsheet id")
	}
	if len(opts.Questions) == 0 {
		return nil, fmt.Errorf("sheets: no questions configured")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(opts.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: service init: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		questions:     opts.Questions,
	}
	if err := c.ensureSheet(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureSheet creates the target sheet when the spreadsheet lacks it and
// writes the header row into an empty sheet.
func (c *Client) ensureSheet(ctx context.Context) error {
	doc, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: get spreadsheet: %w", err)
	}

	found := false
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			found = true
			break
		}
	}
	if !found {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: c.sheetName},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("sheets: add sheet %q: %w", c.sheetName, err)
		}
		logger.Sheets.Info("sheet created", slog.String("sheet", c.sheetName))
	}

	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, c.sheetName+"!A1:A1").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read header: %w", err)
	}
	if len(resp.Values) == 0 {
		header := headerRow(c.questions)
		vr := &sheets.ValueRange{Values: [][]any{header}}
		_, err := c.svc.Spreadsheets.Values.
			Update(c.spreadsheetID, c.sheetName+"!A1", vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("sheets: write header: %w", err)
		}
		logger.Sheets.Info("header written",
			slog.String("sheet", c.sheetName),
			slog.Int("columns", len(header)),
		)
	}
	return nil
}

// AppendRow stores one submission as a new row.
func (c *Client) AppendRow(ctx context.Context, sub survey.Submission) error {
	start := time.Now()
	vr := &sheets.ValueRange{Values: [][]any{SubmissionRow(sub)}}
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		logger.Error(ctx, "sheets", "append.failed",
			slog.String("submission_id", sub.ID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("sheets: append row: %w", err)
	}

	updatedRange := ""
	if resp.Updates != nil {
		updatedRange = resp.Updates.UpdatedRange
	}
	logger.Info(ctx, "sheets", "append.ok",
		slog.String("submission_id", sub.ID),
		slog.String("row", updatedRange),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// headerRow builds the header row: date and submission id columns, one
// column per question field and a trailing folder link column.
func headerRow(questions []survey.Question) []any {
	header := make([]any, 0, len(questions)+3)
	header = append(header, "Date", "Submission ID")
	for _, q := range questions {
		header = append(header, q.Field)
	}
	header = append(header, "Folder Link")
	return header
}

// SubmissionRow converts a submission into a sheet row matching headerRow.
func SubmissionRow(sub survey.Submission) []any {
	row := make([]any, 0, len(sub.Fields)+3)
	row = append(row, sub.SubmittedAt.Format("2006-01-02 15:04:05"), sub.ID)
	for _, fv := range sub.Fields {
		row = append(row, fv.Value)
	}
	row = append(row, sub.FolderURL)
	return row
}
