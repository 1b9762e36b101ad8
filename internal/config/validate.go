package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Agent validation
	if cfg.Agent.Binary != "" && filepath.Base(cfg.Agent.Binary) != cfg.Agent.Binary {
		issues = append(issues, ValidationIssue{
			Path:    "agent.binary",
			Message: fmt.Sprintf("must be a bare executable name, got %q", cfg.Agent.Binary),
		})
	}

	if cfg.Agent.ConfigFile != "" && filepath.IsAbs(cfg.Agent.ConfigFile) {
		issues = append(issues, ValidationIssue{
			Path:    "agent.configFile",
			Message: "must be relative to agent.home",
		})
	}

	validMemory := []string{"sqlite", "markdown", "none"}
	if cfg.Agent.Onboard.Memory != "" && !slices.Contains(validMemory, cfg.Agent.Onboard.Memory) {
		issues = append(issues, ValidationIssue{
			Path:    "agent.onboard.memory",
			Message: fmt.Sprintf("must be one of %v, got %q", validMemory, cfg.Agent.Onboard.Memory),
		})
	}

	// Gateway validation
	if cfg.Gateway.Port < 1 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 1-65535, got %d", cfg.Gateway.Port),
		})
	}

	validModes := []string{"service", "background"}
	if cfg.Gateway.Mode != "" && !slices.Contains(validModes, cfg.Gateway.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validModes, cfg.Gateway.Mode),
		})
	}

	if cfg.Gateway.URL != "" {
		u, err := url.Parse(cfg.Gateway.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, ValidationIssue{
				Path:    "gateway.url",
				Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.Gateway.URL),
			})
		}
	}

	if cfg.Gateway.ReadyTimeout < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.readyTimeout",
			Message: "must not be negative",
		})
	}
	if cfg.Gateway.PollInterval < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.pollInterval",
			Message: "must not be negative",
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validStyles := []string{"pretty", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	// Hooks validation
	hookSets := map[string][]HookEntry{
		"hooks.initComplete":   cfg.Hooks.InitComplete,
		"hooks.initFailed":     cfg.Hooks.InitFailed,
		"hooks.gatewayStarted": cfg.Hooks.GatewayStarted,
	}
	for _, key := range []string{"hooks.initComplete", "hooks.initFailed", "hooks.gatewayStarted"} {
		for i, h := range hookSets[key] {
			if h.Command == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", key, i),
					Message: "command is required",
				})
			}
			if h.Timeout < 0 {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].timeout", key, i),
					Message: "must not be negative",
				})
			}
		}
	}

	return issues
}
