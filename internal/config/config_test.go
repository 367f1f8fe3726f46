package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const minimal = `TEAM_ID: "123"
CAMPAIGN:
  start: "2025-09-14"
  end: "2025-10-13"
  target: 30
NOTIFY:
  discord:
    webhooks:
      - id: "1"
        token: "t"
`

func write(t *testing.T, body string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(f, []byte(body), 0o644))
	return f
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	c, err := Load(write(t, minimal))
	require.NoError(t, err)
	require.Equal(t, "2025", c.Campaign.Edition)
	require.Equal(t, "Asia/Taipei", c.Campaign.Timezone)
	require.Equal(t, MarkerFile, c.Marker.Backend)
	require.Equal(t, EmptyRosterDone, c.EmptyRoster)
	require.Equal(t, "user_post_status.md", c.Snapshot.Path)
	require.Equal(t, 25*time.Second, c.HTTP.Timeout)
	require.NotEmpty(t, c.HTTP.UserAgent)
	require.NotEmpty(t, c.LogFormat)

	cm, err := c.CampaignModel()
	require.NoError(t, err)
	require.Equal(t, 30, cm.Target)
	require.Equal(t, 14, cm.Start.Day())
}

func TestConfig_MissingRequired(t *testing.T) {
	_, err := Load(write(t, "CAMPAIGN:\n  start: \"2025-09-14\"\n  end: \"2025-10-13\"\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "TEAM_ID")
}

func TestConfig_DestinationOnlyRequiredForNotify(t *testing.T) {
	c, err := Load(write(t, "TEAM_ID: \"1\"\nCAMPAIGN:\n  start: \"2025-09-14\"\n  end: \"2025-10-13\"\n"))
	require.NoError(t, err)
	require.ErrorContains(t, c.RequireDestination(), "at least one")

	c, err = Load(write(t, minimal))
	require.NoError(t, err)
	require.NoError(t, c.RequireDestination())
}

func TestConfig_StartAfterEnd(t *testing.T) {
	body := `TEAM_ID: "1"
CAMPAIGN: {start: "2025-10-14", end: "2025-09-14"}
NOTIFY: {telegram: {token: "x", chat_ids: ["-100"]}}
`
	_, err := Load(write(t, body))
	require.ErrorContains(t, err, "must not be after")
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("IRONMAN_TEAM_ID", "999")
	t.Setenv("DISCORD_WEBHOOK_ID", "env-id")
	t.Setenv("DISCORD_WEBHOOK_TOKEN", "env-token")
	t.Setenv("DISCORD_ADMIN_ID", "42")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot")
	t.Setenv("TELEGRAM_CHAT_IDS", " -1001, @channel ,")

	c, err := Load(write(t, minimal))
	require.NoError(t, err)
	require.Equal(t, "999", c.TeamID)
	require.Equal(t, "42", c.Notify.AdminID)
	require.Equal(t, []Webhook{{ID: "env-id", Token: "env-token"}}, c.Notify.Discord.Webhooks)
	require.Equal(t, []string{"-1001", "@channel"}, c.Notify.Telegram.ChatIDs)
}

func TestConfig_InvalidEnums(t *testing.T) {
	body := minimal + "EMPTY_ROSTER: maybe\nMARKER: {backend: redis}\nCONCURRENCY: -1\n"
	_, err := Load(write(t, body))
	require.Error(t, err)
	for _, want := range []string{"EMPTY_ROSTER", "MARKER.backend", "CONCURRENCY"} {
		require.Contains(t, err.Error(), want)
	}
}

func TestConfig_TelegramChatIDs(t *testing.T) {
	c := Config{TeamID: "1", Campaign: Campaign{Start: "2025-09-14", End: "2025-09-15"}}
	c.Notify.Telegram = Telegram{Token: "x", ChatIDs: []string{"not-a-number"}}
	require.ErrorContains(t, c.Validate(), "invalid chat id")
}
