package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const minimalYAML = `
telegram:
  token: "123:abc"
database:
  host: "localhost"
google:
  credentials_file: "sa.json"
  spreadsheet_id: "sheet-id"
  drive_parent_folder_id: "folder-id"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	require.Equal(t, "Renovation Projects", cfg.Google.SheetName)
	require.Equal(t, defaultSessionTTLSeconds, cfg.Survey.SessionTTLSeconds)
	require.Equal(t, defaultSinkTimeoutSeconds, cfg.Survey.SinkTimeoutSeconds)
	require.Equal(t, defaultSkipToken, cfg.Survey.SkipToken)
	require.Equal(t, defaultQuestionsPath, cfg.Survey.QuestionsPath)
}

func TestLoadRequiresToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: ""
google:
  credentials_file: "sa.json"
  spreadsheet_id: "sheet-id"
`))
	require.ErrorContains(t, err, "telegram token is required")
}

func TestNormalizeWebhookModeRequiresURL(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.RunMode = RunModeWebhook
	err := Normalize(cfg)
	require.ErrorContains(t, err, "webhook.url is required")
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.RunMode = "polling"
	cfg.Google.CredentialsFile = "sa.json"
	cfg.Google.SpreadsheetID = "sheet-id"
	cfg.Google.DriveDisabled = true
	require.NoError(t, Normalize(cfg))
	require.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeDriveParentRequiredUnlessDisabled(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Google.CredentialsFile = "sa.json"
	cfg.Google.SpreadsheetID = "sheet-id"

	err := Normalize(cfg)
	require.ErrorContains(t, err, "drive_parent_folder_id")

	cfg.Google.DriveDisabled = true
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRejectsUnknownExcludeUpdate(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Google.CredentialsFile = "sa.json"
	cfg.Google.SpreadsheetID = "sheet-id"
	cfg.Google.DriveDisabled = true
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "inline_query"}

	err := Normalize(cfg)
	require.ErrorContains(t, err, "rate_limit.exclude_updates")
}

func TestNormalizeCanonicalizesExcludeUpdates(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Google.CredentialsFile = "sa.json"
	cfg.Google.SpreadsheetID = "sheet-id"
	cfg.Google.DriveDisabled = true
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "MESSAGE"}

	require.NoError(t, Normalize(cfg))
	require.Equal(t, []string{UpdateCallback, UpdateMessage}, cfg.RateLimit.ExcludeUpdates)
}
