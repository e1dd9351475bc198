package drive

import (
	"testing"

	"renovabot/survey"
)

func TestFolderName(t *testing.T) {
	cases := []struct {
		client, room, location string
		want                   string
	}{
		{"Alice", "Kitchen", "Springfield", "Alice — Kitchen (Springfield)"},
		{"Alice", "Kitchen", "", "Alice — Kitchen"},
		{"Alice", "Kitchen", survey.NotSpecified, "Alice — Kitchen"},
	}
	for _, tc := range cases {
		if got := FolderName(tc.client, tc.room, tc.location); got != tc.want {
			t.Fatalf("FolderName(%q, %q, %q) = %q, want %q", tc.client, tc.room, tc.location, got, tc.want)
		}
	}
}
