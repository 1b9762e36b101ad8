package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultBaseDir      = ".clawdock"
	defaultAgentBaseDir = ".zeroclaw"
)

// ErrNoHome is returned when the user's home directory cannot be determined.
var ErrNoHome = errors.New("cannot determine home directory")

// Paths holds resolved filesystem paths for clawdock's own data.
type Paths struct {
	Base    string // ~/.clawdock
	Config  string // ~/.clawdock/config.yaml
	Env     string // ~/.clawdock/.env
	Logs    string // ~/.clawdock/logs
	Data    string // ~/.clawdock/data
	Journal string // ~/.clawdock/data/clawdock.db
}

// ResolvePaths computes all standard paths from the home directory.
// If CLAWDOCK_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("CLAWDOCK_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return Paths{}, ErrNoHome
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	data := filepath.Join(base, "data")
	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Env:     filepath.Join(base, ".env"),
		Logs:    filepath.Join(base, "logs"),
		Data:    data,
		Journal: filepath.Join(data, "clawdock.db"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Logs, p.Data}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// AgentPaths holds the well-known locations owned by the agent binary.
type AgentPaths struct {
	Root      string // ~/.zeroclaw
	Bin       string // ~/.zeroclaw/bin/zeroclaw
	Config    string // ~/.zeroclaw/config.toml
	Workspace string // ~/.zeroclaw/workspace
	Memory    string // ~/.zeroclaw/workspace/MEMORY.md
	User      string // ~/.zeroclaw/workspace/USER.md
	Soul      string // ~/.zeroclaw/workspace/SOUL.md
	Skills    string // ~/.zeroclaw/workspace/skills
}

// ResolveAgentPaths computes the agent layout from cfg. An empty Home
// resolves to ~/.zeroclaw.
func ResolveAgentPaths(cfg AgentConfig) (AgentPaths, error) {
	root := cfg.Home
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return AgentPaths{}, ErrNoHome
		}
		root = filepath.Join(home, defaultAgentBaseDir)
	} else {
		var err error
		if root, err = ExpandHome(root); err != nil {
			return AgentPaths{}, err
		}
	}

	binary := cfg.Binary
	if binary == "" {
		binary = DefaultAgentBinary
	}
	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = DefaultAgentConfigFile
	}

	return NewAgentPaths(root, binary, configFile), nil
}

// NewAgentPaths lays out the agent tree under root.
func NewAgentPaths(root, binary, configFile string) AgentPaths {
	ws := filepath.Join(root, "workspace")
	return AgentPaths{
		Root:      root,
		Bin:       filepath.Join(root, "bin", ExecutableName(binary)),
		Config:    filepath.Join(root, configFile),
		Workspace: ws,
		Memory:    filepath.Join(ws, "MEMORY.md"),
		User:      filepath.Join(ws, "USER.md"),
		Soul:      filepath.Join(ws, "SOUL.md"),
		Skills:    filepath.Join(ws, "skills"),
	}
}

// Templates returns the workspace template files by name.
func (a AgentPaths) Templates() []string {
	return []string{a.Memory, a.User, a.Soul}
}

// ResourcePaths describes the bundle shipped with the desktop app.
type ResourcePaths struct {
	Dir       string // <resources>
	Bin       string // <resources>/bin/zeroclaw
	Workspace string // <resources>/workspace
	Skills    string // <resources>/workspace/skills
}

// ResolveResourcePaths lays out the bundle under dir. An empty dir resolves
// to the "resources" directory next to the running executable.
func ResolveResourcePaths(dir, binary string) (ResourcePaths, error) {
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return ResourcePaths{}, err
		}
		dir = filepath.Join(filepath.Dir(exe), "resources")
	} else {
		var err error
		if dir, err = ExpandHome(dir); err != nil {
			return ResourcePaths{}, err
		}
	}
	if binary == "" {
		binary = DefaultAgentBinary
	}

	ws := filepath.Join(dir, "workspace")
	return ResourcePaths{
		Dir:       dir,
		Bin:       filepath.Join(dir, "bin", ExecutableName(binary)),
		Workspace: ws,
		Skills:    filepath.Join(ws, "skills"),
	}, nil
}

// ExecutableName appends ".exe" on Windows.
func ExecutableName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

// blockedKeys are keys that must never appear in config paths.
var blockedKeys = map[string]bool{
	"__proto__":   true,
	"prototype":   true,
	"constructor": true,
}

// ParseConfigPath splits a dot-separated config path into segments.
// Returns an error if any segment is blocked or empty.
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: "config path contains empty segment"}
		}
		if blockedKeys[p] {
			return nil, &ConfigError{Message: "config path contains blocked key: " + p}
		}
	}
	return parts, nil
}

// GetValueAtPath traverses a nested map using the given path segments.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	current := any(root)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetValueAtPath sets a value in a nested map, creating intermediate maps as needed.
func SetValueAtPath(root map[string]any, path []string, value any) {
	current := root
	for _, key := range path[:len(path)-1] {
		next, ok := current[key]
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		m, ok := next.(map[string]any)
		if !ok {
			m = map[string]any{}
			current[key] = m
		}
		current = m
	}
	current[path[len(path)-1]] = value
}

// UnsetValueAtPath removes a value at the given path. Returns true if removed.
func UnsetValueAtPath(root map[string]any, path []string) bool {
	current := root
	for _, key := range path[:len(path)-1] {
		next, ok := current[key]
		if !ok {
			return false
		}
		m, ok := next.(map[string]any)
		if !ok {
			return false
		}
		current = m
	}
	last := path[len(path)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}
