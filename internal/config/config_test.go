package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "zeroclaw", cfg.Agent.Binary)
	assert.Equal(t, "config.toml", cfg.Agent.ConfigFile)
	assert.Equal(t, "bailian", cfg.Agent.Onboard.Provider)
	assert.Equal(t, "qwen3-max-2026-01-23", cfg.Agent.Onboard.Model)
	assert.Equal(t, "sqlite", cfg.Agent.Onboard.Memory)
	assert.Equal(t, 18789, cfg.Gateway.Port)
	assert.False(t, cfg.Gateway.RequirePairing)
	assert.Equal(t, "service", cfg.Gateway.Mode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.Style)
	assert.False(t, cfg.Journal.Disabled)
}

func TestGatewayBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:18789", GatewayConfig{}.BaseURL())
	assert.Equal(t, "http://localhost:9000", GatewayConfig{Port: 9000}.BaseURL())
	assert.Equal(t, "https://gw.local", GatewayConfig{Port: 9000, URL: "https://gw.local/"}.BaseURL())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 18789, cfg.Gateway.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
agent:
  home: /opt/zeroclaw
  configFile: openclaw.json
  onboard:
    provider: openrouter
    model: some-model
resources:
  dir: /Applications/Claw.app/Contents/Resources
gateway:
  port: 9999
  requirePairing: true
  mode: background
  readyTimeout: 30
logging:
  level: debug
  style: json
hooks:
  initComplete:
    - command: "echo done"
      timeout: 2000
journal:
  disabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "zeroclaw", cfg.Agent.Binary)
	assert.Equal(t, "/opt/zeroclaw", cfg.Agent.Home)
	assert.Equal(t, "openclaw.json", cfg.Agent.ConfigFile)
	assert.Equal(t, "openrouter", cfg.Agent.Onboard.Provider)
	assert.Equal(t, "some-model", cfg.Agent.Onboard.Model)
	assert.Equal(t, "sqlite", cfg.Agent.Onboard.Memory)
	assert.Equal(t, "/Applications/Claw.app/Contents/Resources", cfg.Resources.Dir)
	assert.Equal(t, 9999, cfg.Gateway.Port)
	assert.True(t, cfg.Gateway.RequirePairing)
	assert.Equal(t, "background", cfg.Gateway.Mode)
	assert.Equal(t, 30, cfg.Gateway.ReadyTimeout)
	assert.Equal(t, 500, cfg.Gateway.PollInterval)
	assert.Equal(t, "http://localhost:9999", cfg.Gateway.BaseURL())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Style)
	require.Len(t, cfg.Hooks.InitComplete, 1)
	assert.Equal(t, "echo done", cfg.Hooks.InitComplete[0].Command)
	assert.Equal(t, 2000, cfg.Hooks.InitComplete[0].Timeout)
	assert.True(t, cfg.Journal.Disabled)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLAWDOCK_GATEWAY_PORT", "12345")
	t.Setenv("CLAWDOCK_GATEWAY_MODE", "BACKGROUND")
	t.Setenv("CLAWDOCK_LOG_LEVEL", "TRACE")
	t.Setenv("CLAWDOCK_AGENT_HOME", "/srv/agent")
	t.Setenv("CLAWDOCK_RESOURCES", "/srv/resources")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Gateway.Port)
	assert.Equal(t, "background", cfg.Gateway.Mode)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "/srv/agent", cfg.Agent.Home)
	assert.Equal(t, "/srv/resources", cfg.Resources.Dir)
}

func TestLoadEnvOverrideInvalidPortIgnored(t *testing.T) {
	t.Setenv("CLAWDOCK_GATEWAY_PORT", "not-a-port")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 18789, cfg.Gateway.Port)
}

func TestLoadEnvOverrideZeroPortFailsValidation(t *testing.T) {
	t.Setenv("CLAWDOCK_GATEWAY_PORT", "0")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Gateway.Port)

	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "gateway.port", issues[0].Path)
}

func TestLoadExpandsGatewayToken(t *testing.T) {
	t.Setenv("CLAW_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  token: ${CLAW_TOKEN}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Gateway.Token)
}

func TestExpandEnvVars_UnsetLeftAlone(t *testing.T) {
	assert.Equal(t, "${CLAWDOCK_SURELY_UNSET_VAR}", expandEnvVars("${CLAWDOCK_SURELY_UNSET_VAR}"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/agent")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "agent"), got)

	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = ExpandHome("~other/path")
	require.NoError(t, err)
	assert.Equal(t, "~other/path", got)
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	raw := map[string]any{
		"gateway": map[string]any{
			"port": 9999,
		},
	}

	require.NoError(t, SaveRaw(path, raw))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"gateway", "port"})
	assert.True(t, ok)
	assert.Equal(t, 9999, val)
}

func TestLoadRaw_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Empty(t, raw)
}

func TestLoadRaw_Missing(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
