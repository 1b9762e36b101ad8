package agent

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Resolve locates the agent binary. The copy installed by clawdock wins;
// otherwise the system PATH is searched for name.
func Resolve(installed, name string) (string, bool) {
	if installed != "" {
		if info, err := os.Stat(installed); err == nil && !info.IsDir() {
			return installed, true
		}
	}

	if name == "" {
		return "", false
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p, true
}
