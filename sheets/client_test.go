package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"renovabot/survey"
)

func TestHeaderRowShape(t *testing.T) {
	header := headerRow(survey.DefaultQuestions())
	require.Equal(t, "Date", header[0])
	require.Equal(t, "Submission ID", header[1])
	require.Equal(t, "Client Name", header[2])
	require.Equal(t, "Folder Link", header[len(header)-1])
	require.Len(t, header, len(survey.DefaultQuestions())+3)
}

func TestHeaderRowTracksConfiguredQuestions(t *testing.T) {
	questions := []survey.Question{
		{Field: "Client Name", Text: "Name?", Required: true},
		{Field: "Budget", Text: "Budget?"},
		{Field: "Deadline", Text: "Deadline?"},
	}

	header := headerRow(questions)
	require.Equal(t, []any{
		"Date", "Submission ID", "Client Name", "Budget", "Deadline", "Folder Link",
	}, header)

	sub := survey.Submission{
		ID:          "sub-2",
		SubmittedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		Fields: []survey.FieldValue{
			{Field: "Client Name", Value: "Bob"},
			{Field: "Budget", Value: "5000"},
			{Field: "Deadline", Value: survey.NotSpecified},
		},
	}
	require.Len(t, SubmissionRow(sub), len(header))
}

func TestSubmissionRowMatchesHeaderOrder(t *testing.T) {
	sub := survey.Submission{
		ID:          "sub-1",
		UserID:      42,
		SubmittedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Fields: []survey.FieldValue{
			{Field: "Client Name", Value: "Alice"},
			{Field: "Room Type", Value: "Kitchen"},
		},
		FolderURL: "https://drive.google.com/x",
	}

	row := SubmissionRow(sub)
	require.Equal(t, []any{
		"2026-03-14 09:30:00",
		"sub-1",
		"Alice",
		"Kitchen",
		"https://drive.google.com/x",
	}, row)
}
