package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	issues := Validate(&cfg)
	assert.Empty(t, issues)
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Defaults()

	cfg.Gateway.Port = -1
	issues := Validate(&cfg)
	assert.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Path, "gateway.port")

	cfg.Gateway.Port = 70000
	issues = Validate(&cfg)
	assert.NotEmpty(t, issues)

	cfg.Gateway.Port = 0
	issues = Validate(&cfg)
	require.NotEmpty(t, issues)
	assert.Equal(t, "gateway.port", issues[0].Path)
	assert.Contains(t, issues[0].Message, "1-65535")
}

func TestValidate_ValidPort(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Port = 1
	assert.Empty(t, Validate(&cfg))

	cfg.Gateway.Port = 65535
	assert.Empty(t, Validate(&cfg))

	cfg.Gateway.Port = 8080
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_InvalidMode(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Mode = "daemon"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "gateway.mode", issues[0].Path)
}

func TestValidate_ValidModes(t *testing.T) {
	for _, mode := range []string{"service", "background", ""} {
		cfg := Defaults()
		cfg.Gateway.Mode = mode
		assert.Empty(t, Validate(&cfg), "mode %q should be valid", mode)
	}
}

func TestValidate_GatewayURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"http://localhost:18789", true},
		{"https://gw.example.com", true},
		{"", true},
		{"localhost:18789", false},
		{"ftp://localhost", false},
		{"http://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := Defaults()
			cfg.Gateway.URL = tt.url
			issues := Validate(&cfg)
			if tt.valid {
				assert.Empty(t, issues)
			} else {
				require.Len(t, issues, 1)
				assert.Equal(t, "gateway.url", issues[0].Path)
			}
		})
	}
}

func TestValidate_NegativeDurations(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.ReadyTimeout = -1
	cfg.Gateway.PollInterval = -5

	issues := Validate(&cfg)
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.ElementsMatch(t, []string{"gateway.readyTimeout", "gateway.pollInterval"}, paths)
}

func TestValidate_AgentBinaryMustBeBareName(t *testing.T) {
	cfg := Defaults()
	cfg.Agent.Binary = "/usr/local/bin/zeroclaw"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "agent.binary", issues[0].Path)
}

func TestValidate_AgentConfigFileRelative(t *testing.T) {
	cfg := Defaults()
	cfg.Agent.ConfigFile = "/etc/zeroclaw.toml"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "agent.configFile", issues[0].Path)
}

func TestValidate_OnboardMemory(t *testing.T) {
	cfg := Defaults()
	cfg.Agent.Onboard.Memory = "redis"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "agent.onboard.memory", issues[0].Path)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "logging.level", issues[0].Path)
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"} {
		cfg := Defaults()
		cfg.Logging.Level = level
		assert.Empty(t, Validate(&cfg), "level %q should be valid", level)
	}
}

func TestValidate_InvalidLogStyle(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Style = "compact"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "logging.style", issues[0].Path)
}

func TestValidate_Hooks(t *testing.T) {
	cfg := Defaults()
	cfg.Hooks.InitComplete = []HookEntry{{Command: "notify-send ready"}, {Command: ""}}
	cfg.Hooks.GatewayStarted = []HookEntry{{Command: "true", Timeout: -1}}

	issues := Validate(&cfg)
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.ElementsMatch(t, []string{
		"hooks.initComplete[1].command",
		"hooks.gatewayStarted[0].timeout",
	}, paths)
}

func TestValidationIssue_String(t *testing.T) {
	issue := ValidationIssue{Path: "gateway.port", Message: "bad"}
	assert.Equal(t, "gateway.port: bad", issue.String())
}
