package survey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeQuestionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadQuestions(t *testing.T) {
	path := writeQuestionsFile(t, `
questions:
  - field: "Client Name"
    text: "name?"
    required: true
    max_length: 100
  - field: "Location"
    text: "where?"
`)

	qs, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	require.Equal(t, "Client Name", qs[0].Field)
	require.True(t, qs[0].Required)
	require.Equal(t, 100, qs[0].Limit())
	require.False(t, qs[1].Required)
	require.Equal(t, 0, qs[1].Limit())
}

func TestLoadQuestionsRejectsEmptyList(t *testing.T) {
	path := writeQuestionsFile(t, "questions: []\n")
	_, err := LoadQuestions(path)
	require.ErrorContains(t, err, "must not be empty")
}

func TestLoadQuestionsRejectsMissingField(t *testing.T) {
	path := writeQuestionsFile(t, `
questions:
  - text: "name?"
`)
	_, err := LoadQuestions(path)
	require.ErrorContains(t, err, "field name is required")
}

func TestLoadQuestionsRejectsMissingFile(t *testing.T) {
	_, err := LoadQuestions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read questions file")
}

func TestDefaultQuestionsAreValid(t *testing.T) {
	qs := DefaultQuestions()
	require.NoError(t, ValidateQuestions(qs))
	require.Len(t, qs, 8)
	require.True(t, qs[0].Required)
	require.True(t, qs[1].Required)
	for _, q := range qs[2:] {
		require.False(t, q.Required, q.Field)
	}
}
