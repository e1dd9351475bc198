package survey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"renovabot/telegram/format"
)

// Question is one step of the intake questionnaire. The ordered list is
// immutable after startup; sessions index into it by step.
type Question struct {
	// Field is the display name used in the spreadsheet header and the
	// admin notification.
	Field    string `yaml:"field"`
	Text     string `yaml:"text"`
	Required bool   `yaml:"required"`
	// MaxLength bounds accepted input length in runes; nil or 0 means unbounded.
	MaxLength *int `yaml:"max_length"`
}

// Limit returns the effective max length, 0 when unbounded.
func (q Question) Limit() int {
	return format.DerefInt(q.MaxLength, 0)
}

type questionsFile struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestions reads the ordered question list from a YAML file.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}
	var file questionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse questions YAML: %w", err)
	}
	if err := ValidateQuestions(file.Questions); err != nil {
		return nil, err
	}
	return file.Questions, nil
}

// ValidateQuestions rejects empty or malformed question sets.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question list must not be empty")
	}
	for i, q := range questions {
		if q.Field == "" {
			return fmt.Errorf("question %d: field name is required", i)
		}
		if q.Text == "" {
			return fmt.Errorf("question %d (%s): prompt text is required", i, q.Field)
		}
		if q.Limit() < 0 {
			return fmt.Errorf("question %d (%s): max_length must be >= 0", i, q.Field)
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }

// DefaultQuestions returns the canonical renovation intake set: first two
// questions required, the rest skippable.
func DefaultQuestions() []Question {
	return []Question{
		{
			Field:     "Client Name",
			Text:      "🙋‍♂️ What is the *client's name*?",
			Required:  true,
			MaxLength: intPtr(100),
		},
		{
			Field:     "Room Type",
			Text:      "🏗️ What *room* did you work on? (e.g. kitchen, bathroom, laundry room)",
			Required:  true,
			MaxLength: intPtr(100),
		},
		{
			Field: "Location",
			Text:  "📍 In which *city and state* was this project completed?",
		},
		{
			Field: "Goal",
			Text:  "🌟 What was the *client's goal* for this space? (e.g. modernize layout, fix poor lighting, update style)",
		},
		{
			Field: "Work Done",
			Text:  "💪 What *work was done* during the remodel?",
		},
		{
			Field: "Materials",
			Text:  "🧱 What *materials* were used? (Include names, colors, manufacturers if possible)",
		},
		{
			Field: "Features",
			Text:  "✨ Were there any *interesting features* or smart solutions implemented? (e.g. round lighting, hidden drawers, custom panels)",
		},
		{
			Field: "Drive Link",
			Text:  "📂 Please *paste the Google Drive folder link* (with subfolders: before / after / 3D / drawings)",
		},
	}
}
