package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbeacon/internal/channel"
)

func TestDefaults_SetsExpectedValues(t *testing.T) {
	t.Parallel()

	cfg := Defaults()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8430, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Engine.DispatchTimeout)
	assert.Equal(t, 262144, cfg.Engine.MaxSessionOutput)
	assert.Equal(t, 90, cfg.Database.RetentionDays)
}

func TestLoadFromFile_ParsesYAML(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 9000
  log_level: "debug"
  mock_receiver: true

engine:
  default_channel: "feishu"
  fine_grained: true
  dispatch_timeout: 15s

channels:
  feishu:
    endpoint: "https://example.com/flow/hook"
    schema: rich_card
  pusher:
    endpoint: "https://push.example.com/push"
    schema: generic_push
    token: "tok-abc"
    channel: "ops"
`

	tmpFile := filepath.Join(t.TempDir(), "taskbeacon.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.True(t, cfg.Server.MockReceiver)
	assert.Equal(t, "feishu", cfg.Engine.DefaultChannel)
	assert.True(t, cfg.Engine.FineGrained)
	assert.Equal(t, 15*time.Second, cfg.Engine.DispatchTimeout)

	require.Len(t, cfg.Channels, 2)
	feishu := cfg.Channels["feishu"]
	assert.Equal(t, "feishu", feishu.Name, "validation should backfill the name")
	assert.Equal(t, channel.SchemaRichCard, feishu.Schema)
	assert.Equal(t, channel.MarkerCodeZero, feishu.SuccessMarker, "marker defaulted by schema")

	pusher := cfg.Channels["pusher"]
	assert.Equal(t, channel.MarkerSuccessBool, pusher.SuccessMarker)
	assert.Equal(t, "tok-abc", pusher.Token)
}

func TestLoadFromFile_RejectsUnknownDefaultChannel(t *testing.T) {
	t.Parallel()

	content := `
engine:
  default_channel: "ghost"
`
	tmpFile := filepath.Join(t.TempDir(), "taskbeacon.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := LoadFromFile(tmpFile)
	assert.Error(t, err)
}

func TestLoadFromFile_RejectsChannelWithoutEndpoint(t *testing.T) {
	t.Parallel()

	content := `
channels:
  broken:
    schema: plain_text
`
	tmpFile := filepath.Join(t.TempDir(), "taskbeacon.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := LoadFromFile(tmpFile)
	assert.Error(t, err)
}

func TestLoadFromFile_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8430, cfg.Server.Port)
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	content := `
channels:
  feishu:
    endpoint: "https://example.com/hook/${HOOK_ID}"
`
	t.Setenv("HOOK_ID", "abc123")

	tmpFile := filepath.Join(t.TempDir(), "taskbeacon.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook/abc123", cfg.Channels["feishu"].Endpoint)
}
