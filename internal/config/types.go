package config

// Config is the root configuration for clawdock.
type Config struct {
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Resources ResourcesConfig `yaml:"resources,omitempty"`
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Hooks     HooksConfig     `yaml:"hooks,omitempty"`
	Journal   JournalConfig   `yaml:"journal,omitempty"`
}

// AgentConfig describes the externally distributed agent binary.
type AgentConfig struct {
	Binary     string        `yaml:"binary,omitempty"`     // executable name, e.g. "zeroclaw"
	Home       string        `yaml:"home,omitempty"`       // agent root, default ~/.zeroclaw
	ConfigFile string        `yaml:"configFile,omitempty"` // relative to Home: "config.toml" or "openclaw.json"
	Onboard    OnboardConfig `yaml:"onboard,omitempty"`
}

// OnboardConfig holds the fixed arguments passed to `<agent> onboard`.
type OnboardConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Memory   string `yaml:"memory,omitempty"` // "sqlite" | "markdown" | "none"
}

// ResourcesConfig points at the bundle shipped next to the desktop app.
type ResourcesConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// GatewayConfig controls how the agent's gateway is patched, started and reached.
type GatewayConfig struct {
	Port           int    `yaml:"port,omitempty"`
	RequirePairing bool   `yaml:"requirePairing,omitempty"`
	Mode           string `yaml:"mode,omitempty"` // "service" | "background"
	URL            string `yaml:"url,omitempty"`
	Token          string `yaml:"token,omitempty"`
	ReadyTimeout   int    `yaml:"readyTimeout,omitempty"` // seconds
	PollInterval   int    `yaml:"pollInterval,omitempty"` // milliseconds
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
	File  string `yaml:"file,omitempty"`
}

// HooksConfig defines shell commands run on lifecycle events.
type HooksConfig struct {
	InitComplete   []HookEntry `yaml:"initComplete,omitempty"`
	InitFailed     []HookEntry `yaml:"initFailed,omitempty"`
	GatewayStarted []HookEntry `yaml:"gatewayStarted,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}

// JournalConfig controls the local event journal.
type JournalConfig struct {
	Disabled bool `yaml:"disabled,omitempty"`
}
