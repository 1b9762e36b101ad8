// Package bootstrap installs and configures the agent on first run.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/soyeahso/clawdock/internal/agent"
	"github.com/soyeahso/clawdock/internal/agentcfg"
	"github.com/soyeahso/clawdock/internal/config"
	"github.com/soyeahso/clawdock/internal/fsutil"
	"github.com/soyeahso/clawdock/internal/hooks"
	"github.com/soyeahso/clawdock/internal/logging"
)

// CompletedMessage is returned by a successful Initialize.
const CompletedMessage = "zeroclaw initialization completed"

// Options configures a Bootstrapper.
type Options struct {
	Agent     config.AgentPaths
	Resources config.ResourcePaths
	Onboard   agent.OnboardOptions
	Gateway   agentcfg.GatewaySettings
}

// Bootstrapper runs the idempotent install/onboard/seed/patch sequence.
type Bootstrapper struct {
	opts  Options
	hooks hooks.Emitter
	log   *logging.Logger
	base  *logging.Logger
}

// New creates a Bootstrapper. emitter may be nil.
func New(opts Options, emitter hooks.Emitter, log *logging.Logger) *Bootstrapper {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &Bootstrapper{
		opts:  opts,
		hooks: emitter,
		log:   log.Sub("bootstrap"),
		base:  log,
	}
}

// CheckInitialized reports whether the agent config file exists.
func (b *Bootstrapper) CheckInitialized() (bool, error) {
	_, err := os.Stat(b.opts.Agent.Config)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", b.opts.Agent.Config, err)
}

// Initialize installs the bundled binary, onboards the agent when no config
// exists, seeds the workspace from the bundle and patches the gateway
// section. Every step is skipped when its target is already in place, so
// repeated calls only fill in what is missing.
func (b *Bootstrapper) Initialize(ctx context.Context) (string, error) {
	b.hooks.Emit(ctx, hooks.EventInitStart, map[string]any{"root": b.opts.Agent.Root})

	if err := b.initialize(ctx); err != nil {
		b.log.Error().Err(err).Msg("initialization failed")
		b.hooks.Emit(ctx, hooks.EventInitFailed, map[string]any{"error": err.Error()})
		return "", err
	}

	b.log.Info().Str("root", b.opts.Agent.Root).Msg("initialization completed")
	b.hooks.Emit(ctx, hooks.EventInitComplete, map[string]any{"message": CompletedMessage})
	return CompletedMessage, nil
}

func (b *Bootstrapper) initialize(ctx context.Context) error {
	a, res := b.opts.Agent, b.opts.Resources

	if fsutil.Exists(res.Bin) {
		installed, err := fsutil.InstallBinary(res.Bin, a.Bin)
		if err != nil {
			return err
		}
		if installed {
			b.log.Info().Str("dst", a.Bin).Msg("binary installed")
			b.hooks.Emit(ctx, hooks.EventBinaryInstalled, map[string]any{"src": res.Bin, "dst": a.Bin})
		}
	}

	if fsutil.Exists(a.Bin) {
		if err := b.onboard(ctx); err != nil {
			return err
		}
	}

	if err := b.seedWorkspace(ctx); err != nil {
		return err
	}

	patched, err := agentcfg.PatchGateway(a.Config, b.opts.Gateway)
	if err != nil {
		return fmt.Errorf("patching %s: %w", a.Config, err)
	}
	if patched {
		b.log.Info().Str("config", a.Config).Int("port", b.opts.Gateway.Port).Msg("gateway config patched")
		b.hooks.Emit(ctx, hooks.EventConfigPatched, map[string]any{
			"config":          a.Config,
			"port":            b.opts.Gateway.Port,
			"require_pairing": b.opts.Gateway.RequirePairing,
		})
	}
	return nil
}

func (b *Bootstrapper) onboard(ctx context.Context) error {
	cfgPath := b.opts.Agent.Config
	if fsutil.Exists(cfgPath) {
		b.log.Debug().Str("config", cfgPath).Msg("config exists, skipping onboard")
		return nil
	}

	b.log.Info().Msg("running onboard")
	r := agent.NewRunner(b.opts.Agent.Bin, b.base)
	if home, ok := agentHome(b.opts.Agent.Root); ok {
		r = r.WithEnv("HOME=" + home)
	}
	if _, err := r.Onboard(ctx, b.opts.Onboard); err != nil {
		return err
	}

	if runtime.GOOS != "windows" && fsutil.Exists(cfgPath) {
		if err := os.Chmod(cfgPath, 0o600); err != nil {
			return fmt.Errorf("setting config permissions: %w", err)
		}
	}

	b.hooks.Emit(ctx, hooks.EventOnboarded, map[string]any{
		"provider": b.opts.Onboard.Provider,
		"model":    b.opts.Onboard.Model,
		"memory":   b.opts.Onboard.Memory,
	})
	return nil
}

// seedWorkspace copies bundled templates that are missing and, on first
// install only, the bundled skills tree.
func (b *Bootstrapper) seedWorkspace(ctx context.Context) error {
	a, res := b.opts.Agent, b.opts.Resources
	if !fsutil.IsDir(res.Workspace) {
		return nil
	}

	var copied []string
	for _, dst := range a.Templates() {
		src := filepath.Join(res.Workspace, filepath.Base(dst))
		if !fsutil.Exists(src) {
			continue
		}
		ok, err := fsutil.CopyFileIfNotExists(src, dst)
		if err != nil {
			return err
		}
		if ok {
			copied = append(copied, filepath.Base(dst))
		}
	}

	if fsutil.IsDir(res.Skills) && !fsutil.Exists(a.Skills) {
		if err := fsutil.CopyDirRecursive(res.Skills, a.Skills); err != nil {
			return err
		}
		copied = append(copied, "skills/")
	}

	if len(copied) > 0 {
		b.log.Info().Strs("files", copied).Msg("workspace seeded")
		b.hooks.Emit(ctx, hooks.EventWorkspaceSeeded, map[string]any{"files": copied})
	}
	return nil
}

// agentHome returns the $HOME under which the agent creates root. Roots
// that do not use the agent's default directory name keep the inherited HOME.
func agentHome(root string) (string, bool) {
	if filepath.Base(root) != ".zeroclaw" {
		return "", false
	}
	return filepath.Dir(root), true
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, map[string]any) {}
