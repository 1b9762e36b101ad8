// Package gateway starts, probes and talks to the agent's gateway.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/soyeahso/clawdock/internal/agent"
	"github.com/soyeahso/clawdock/internal/hooks"
	"github.com/soyeahso/clawdock/internal/logging"
)

// Gateway run modes.
const (
	ModeService    = "service"
	ModeBackground = "background"
)

// Start results that are not errors.
const (
	MsgBinaryNotFound = "zeroclaw binary not found, skipping startup"
	MsgStarted        = "zeroclaw gateway started"
)

// ErrBinaryNotFound stops Watch when there is nothing to start.
var ErrBinaryNotFound = errors.New("zeroclaw binary not found")

// ErrNotReady is returned by WaitReady when the gateway does not come up in time.
var ErrNotReady = errors.New("gateway did not become ready")

// SupervisorOptions configures a Supervisor.
type SupervisorOptions struct {
	Installed string // path of the binary installed by clawdock
	Binary    string // name looked up on PATH when Installed is missing
	Mode      string // ModeService or ModeBackground
}

// Supervisor drives the gateway through the agent binary.
type Supervisor struct {
	opts  SupervisorOptions
	hooks hooks.Emitter
	base  *logging.Logger
	log   *logging.Logger
}

// NewSupervisor creates a Supervisor. emitter may be nil.
func NewSupervisor(opts SupervisorOptions, emitter hooks.Emitter, log *logging.Logger) *Supervisor {
	if opts.Mode == "" {
		opts.Mode = ModeService
	}
	return &Supervisor{opts: opts, hooks: emitter, base: log, log: log.Sub("gateway")}
}

func (s *Supervisor) runner() (*agent.Runner, bool) {
	bin, ok := agent.Resolve(s.opts.Installed, s.opts.Binary)
	if !ok {
		return nil, false
	}
	s.log.Debug().Str("bin", bin).Msg("resolved agent binary")
	return agent.NewRunner(bin, s.base), true
}

func (s *Supervisor) emit(ctx context.Context, event string, data map[string]any) {
	if s.hooks != nil {
		s.hooks.Emit(ctx, event, data)
	}
}

// Status reports whether the gateway is running. A missing binary means
// not running.
func (s *Supervisor) Status(ctx context.Context) (bool, error) {
	r, ok := s.runner()
	if !ok {
		s.log.Debug().Msg("agent binary not found, reporting stopped")
		return false, nil
	}
	if s.opts.Mode == ModeBackground {
		return r.GatewayStatus(ctx)
	}
	return r.ServiceStatus(ctx)
}

// Start launches the gateway. A missing binary is not an error: the
// returned message says startup was skipped.
func (s *Supervisor) Start(ctx context.Context) (string, error) {
	r, ok := s.runner()
	if !ok {
		s.log.Warn().Msg(MsgBinaryNotFound)
		return MsgBinaryNotFound, nil
	}

	s.emit(ctx, hooks.EventGatewayStart, map[string]any{"mode": s.opts.Mode, "bin": r.Bin()})
	if err := s.start(ctx, r); err != nil {
		s.log.Error().Err(err).Msg("gateway start failed")
		s.emit(ctx, hooks.EventGatewayFailed, map[string]any{"mode": s.opts.Mode, "error": err.Error()})
		return "", err
	}

	s.log.Info().Str("mode", s.opts.Mode).Msg(MsgStarted)
	s.emit(ctx, hooks.EventGatewayStarted, map[string]any{"mode": s.opts.Mode})
	return MsgStarted, nil
}

func (s *Supervisor) start(ctx context.Context, r *agent.Runner) error {
	if s.opts.Mode == ModeBackground {
		_, err := r.GatewayBackground(ctx)
		return err
	}

	// A non-zero install exit usually means "already installed".
	if _, err := r.ServiceInstall(ctx); err != nil {
		var ce *agent.CommandError
		if !errors.As(err, &ce) {
			return fmt.Errorf("failed to install service: %w", err)
		}
		s.log.Warn().Err(err).Msg("service install failed, starting anyway")
	}
	return r.ServiceStart()
}

// WaitReady polls Status, at most once per interval, until the gateway
// reports running or timeout elapses.
func (s *Supervisor) WaitReady(ctx context.Context, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w after %s", ErrNotReady, timeout)
		}
		running, err := s.Status(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w after %s", ErrNotReady, timeout)
			}
			return err
		}
		if running {
			return nil
		}
	}
}

// Watch keeps the gateway running until ctx is canceled, checking every
// interval and starting it whenever it is down. Start failures are logged
// and retried on the next tick.
func (s *Supervisor) Watch(ctx context.Context, interval time.Duration) error {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		// Wait only fails once ctx is done or its deadline falls inside the interval.
		if limiter.Wait(ctx) != nil {
			return nil
		}

		running, err := s.Status(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("status probe failed")
			continue
		}
		if running {
			continue
		}

		s.log.Info().Msg("gateway down, starting")
		msg, err := s.Start(ctx)
		if err != nil {
			continue
		}
		if msg == MsgBinaryNotFound {
			return ErrBinaryNotFound
		}
	}
}
