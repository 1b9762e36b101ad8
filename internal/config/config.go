package config

import (
	"fmt"
	"strings"
)

// Defaults for the bundled agent.
const (
	DefaultAgentBinary     = "zeroclaw"
	DefaultAgentConfigFile = "config.toml"
	DefaultGatewayPort     = 18789
	DefaultOnboardProvider = "bailian"
	DefaultOnboardModel    = "qwen3-max-2026-01-23"
	DefaultOnboardMemory   = "sqlite"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Agent: AgentConfig{
			Binary:     DefaultAgentBinary,
			ConfigFile: DefaultAgentConfigFile,
			Onboard: OnboardConfig{
				Provider: DefaultOnboardProvider,
				Model:    DefaultOnboardModel,
				Memory:   DefaultOnboardMemory,
			},
		},
		Gateway: GatewayConfig{
			Port:         DefaultGatewayPort,
			Mode:         "service",
			ReadyTimeout: 15,
			PollInterval: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}

// BaseURL returns the gateway's HTTP address, derived from Port when URL is unset.
func (g GatewayConfig) BaseURL() string {
	if g.URL != "" {
		return strings.TrimRight(g.URL, "/")
	}
	port := g.Port
	if port == 0 {
		port = DefaultGatewayPort
	}
	return fmt.Sprintf("http://localhost:%d", port)
}
