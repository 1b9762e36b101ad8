package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/soyeahso/clawdock/internal/config"
)

const defaultCommandTimeout = 10 * time.Second

// CommandHandler runs a shell command for each event. The JSON payload is
// written to the command's stdin and the event name is exported as
// CLAWDOCK_EVENT.
func CommandHandler(entry config.HookEntry) Handler {
	timeout := defaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		body, err := json.Marshal(p)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := shellCommand(ctx, entry.Command)
		cmd.Env = append(cmd.Environ(), "CLAWDOCK_EVENT="+p.Event)
		cmd.Stdin = bytes.NewReader(body)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("hook %q timed out after %s", entry.Command, timeout)
			}
			return fmt.Errorf("hook %q: %w: %s", entry.Command, err, strings.TrimSpace(stderr.String()))
		}
		return nil
	}
}

// RegisterCommands wires the hooks section of the config into m.
func RegisterCommands(m *Manager, cfg config.HooksConfig) {
	register := func(event string, entries []config.HookEntry) {
		for i, e := range entries {
			m.On(event, fmt.Sprintf("config:%s[%d]", event, i), CommandHandler(e))
		}
	}
	register(EventInitComplete, cfg.InitComplete)
	register(EventInitFailed, cfg.InitFailed)
	register(EventGatewayStarted, cfg.GatewayStarted)
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}
