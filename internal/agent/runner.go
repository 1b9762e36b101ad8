// Package agent invokes the externally installed agent binary. The binary is
// opaque: clawdock only passes fixed argument vectors and reads exit status.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/soyeahso/clawdock/internal/logging"
)

// OnboardOptions are passed to `<agent> onboard`.
type OnboardOptions struct {
	Provider string
	Model    string
	Memory   string
}

// Args returns the onboard argument vector.
func (o OnboardOptions) Args() []string {
	return []string{"onboard", "--provider", o.Provider, "--model", o.Model, "--memory", o.Memory}
}

// Output is the captured result of a finished invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CommandError reports a non-zero exit from the agent binary.
type CommandError struct {
	Bin      string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed (exit %d)", filepath.Base(e.Bin), strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// waitDelay bounds how long Run waits for output pipes held open by
// grandchildren after the agent itself has exited or been killed.
const waitDelay = 2 * time.Second

// Runner wraps one agent binary.
type Runner struct {
	bin string
	env []string
	log *logging.Logger
}

// NewRunner creates a Runner for the binary at bin.
func NewRunner(bin string, log *logging.Logger) *Runner {
	return &Runner{bin: bin, log: log.Sub("agent")}
}

// WithEnv returns a copy of r that appends env to the inherited environment.
func (r *Runner) WithEnv(env ...string) *Runner {
	cp := *r
	cp.env = append(append([]string(nil), r.env...), env...)
	return &cp
}

// Bin returns the binary path.
func (r *Runner) Bin() string { return r.bin }

// Onboard generates the agent's config, workspace and templates.
func (r *Runner) Onboard(ctx context.Context, opts OnboardOptions) (Output, error) {
	return r.Run(ctx, opts.Args()...)
}

// ServiceInstall registers the gateway as a user service. The agent treats
// repeated installs as a no-op.
func (r *Runner) ServiceInstall(ctx context.Context) (Output, error) {
	return r.Run(ctx, "service", "install")
}

// ServiceStart launches `service start` without waiting for it to finish.
func (r *Runner) ServiceStart() error {
	return r.Spawn("service", "start")
}

// ServiceStatus reports whether the gateway service is running.
func (r *Runner) ServiceStatus(ctx context.Context) (bool, error) {
	return r.probe(ctx, "service", "status")
}

// GatewayStatus reports whether a background gateway is running.
func (r *Runner) GatewayStatus(ctx context.Context) (bool, error) {
	return r.probe(ctx, "gateway", "status")
}

// GatewayBackground starts the gateway detached from the caller.
func (r *Runner) GatewayBackground(ctx context.Context) (Output, error) {
	return r.Run(ctx, "gateway", "--background")
}

// Run executes the binary with args and waits for it. A non-zero exit
// yields a *CommandError alongside the captured output.
func (r *Runner) Run(ctx context.Context, args ...string) (Output, error) {
	r.log.Debug().Str("bin", r.bin).Strs("args", args).Msg("running")

	cmd := exec.CommandContext(ctx, r.bin, args...)
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("running %s %s: %w", filepath.Base(r.bin), strings.Join(args, " "), ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			r.logOutput(args, out)
			return out, &CommandError{Bin: r.bin, Args: args, ExitCode: out.ExitCode, Stderr: out.Stderr}
		}
		r.log.Error().Err(err).Strs("args", args).Msg("failed to execute")
		return out, fmt.Errorf("failed to run %s %s: %w", filepath.Base(r.bin), strings.Join(args, " "), err)
	}

	r.logOutput(args, out)
	return out, nil
}

// Spawn starts the binary with args and returns once it is running. The
// child is reaped in the background.
func (r *Runner) Spawn(args ...string) error {
	r.log.Debug().Str("bin", r.bin).Strs("args", args).Msg("spawning")

	cmd := exec.Command(r.bin, args...)
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}
	if err := cmd.Start(); err != nil {
		r.log.Error().Err(err).Strs("args", args).Msg("failed to spawn")
		return fmt.Errorf("failed to run %s %s: %w", filepath.Base(r.bin), strings.Join(args, " "), err)
	}

	pid := cmd.Process.Pid
	go func() {
		err := cmd.Wait()
		ev := r.log.Debug().Int("pid", pid).Strs("args", args)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("spawned process exited")
	}()

	r.log.Info().Int("pid", pid).Strs("args", args).Msg("spawned")
	return nil
}

// probe runs a status subcommand: exit 0 means running, any other exit
// means not running. Only a spawn failure is an error.
func (r *Runner) probe(ctx context.Context, args ...string) (bool, error) {
	_, err := r.Run(ctx, args...)
	if err == nil {
		return true, nil
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return false, nil
	}
	return false, err
}

func (r *Runner) logOutput(args []string, out Output) {
	r.log.Info().
		Strs("args", args).
		Int("exit", out.ExitCode).
		Dur("duration", out.Duration).
		Msg("command finished")
	if s := strings.TrimSpace(out.Stdout); s != "" {
		r.log.Debug().Strs("args", args).Str("stdout", s).Msg("command stdout")
	}
	if s := strings.TrimSpace(out.Stderr); s != "" {
		r.log.Warn().Strs("args", args).Str("stderr", s).Msg("command stderr")
	}
}
