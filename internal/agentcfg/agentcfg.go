// Package agentcfg reads and patches the gateway section of the agent's own
// configuration file. Only the targeted fields are touched; everything else,
// including comments and layout, is preserved byte for byte.
package agentcfg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPort is the port the desktop shell expects the gateway on.
const DefaultPort = 18789

// GatewaySettings are the gateway fields clawdock manages.
type GatewaySettings struct {
	Port           int  `mapstructure:"port"`
	RequirePairing bool `mapstructure:"require_pairing"`
}

// DefaultSettings returns the settings applied on first run.
func DefaultSettings() GatewaySettings {
	return GatewaySettings{Port: DefaultPort}
}

// PatchGateway patches the config at path, choosing the format by extension.
// Returns true if the file was rewritten.
func PatchGateway(path string, s GatewaySettings) (bool, error) {
	if isJSON(path) {
		return PatchGatewayJSON(path, s)
	}
	return PatchGatewayTOML(path, s)
}

// ReadGateway reads the current gateway settings from the config at path.
// found is false when the file or its gateway section is absent.
func ReadGateway(path string) (s GatewaySettings, found bool, err error) {
	if isJSON(path) {
		return ReadGatewayJSON(path)
	}
	return ReadGatewayTOML(path)
}

func isJSON(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || ext == ".jsonc"
}

// readIfExists returns (nil, nil) for a missing file.
func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// writeKeepingMode rewrites an existing file without touching its permissions.
func writeKeepingMode(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
