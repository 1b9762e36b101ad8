package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/soyeahso/clawdock/internal/agent"
	"github.com/soyeahso/clawdock/internal/agentcfg"
	"github.com/soyeahso/clawdock/internal/bootstrap"
	"github.com/soyeahso/clawdock/internal/config"
	"github.com/soyeahso/clawdock/internal/gateway"
	"github.com/soyeahso/clawdock/internal/hooks"
	"github.com/soyeahso/clawdock/internal/store"
)

// requireConfig returns the loaded config, failing on parse or validation errors.
func requireConfig() (config.Config, error) {
	if cfgErr != nil {
		return cfg, cfgErr
	}
	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// app bundles the components a command needs. close must be called.
type app struct {
	cfg       config.Config
	agent     config.AgentPaths
	resources config.ResourcePaths
	hooks     *hooks.Manager
	journal   *store.Journal
	db        *store.DB
}

func newApp() (*app, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}

	ap, err := config.ResolveAgentPaths(c.Agent)
	if err != nil {
		return nil, err
	}
	rp, err := config.ResolveResourcePaths(c.Resources.Dir, c.Agent.Binary)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: c, agent: ap, resources: rp, hooks: hooks.NewManager(log)}
	hooks.RegisterCommands(a.hooks, c.Hooks)

	if !c.Journal.Disabled {
		if err := paths.EnsureDirs(); err != nil {
			log.Warn().Err(err).Msg("journal unavailable")
			return a, nil
		}
		db, err := store.Open(paths.Journal, log)
		if err != nil {
			// The journal is a record, not a dependency.
			log.Warn().Err(err).Msg("journal unavailable")
		} else {
			a.db = db
			a.journal = store.NewJournal(db)
			a.hooks.OnAll("journal", a.journal.Handler())
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) supervisor() *gateway.Supervisor {
	return gateway.NewSupervisor(gateway.SupervisorOptions{
		Installed: a.agent.Bin,
		Binary:    config.ExecutableName(a.cfg.Agent.Binary),
		Mode:      a.cfg.Gateway.Mode,
	}, a.hooks, log)
}

func (a *app) bootstrapper() *bootstrap.Bootstrapper {
	return bootstrap.New(bootstrap.Options{
		Agent:     a.agent,
		Resources: a.resources,
		Onboard: agent.OnboardOptions{
			Provider: a.cfg.Agent.Onboard.Provider,
			Model:    a.cfg.Agent.Onboard.Model,
			Memory:   a.cfg.Agent.Onboard.Memory,
		},
		Gateway: gatewaySettings(a.cfg),
	}, a.hooks, log)
}

func (a *app) client() *gateway.Client {
	return gateway.NewClient(a.cfg.Gateway.BaseURL(), a.cfg.Gateway.Token)
}

// waitReady blocks until the gateway reports running, using the configured
// timeout and poll interval.
func (a *app) waitReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = time.Duration(a.cfg.Gateway.ReadyTimeout) * time.Second
	}
	interval := time.Duration(a.cfg.Gateway.PollInterval) * time.Millisecond
	return a.supervisor().WaitReady(ctx, timeout, interval)
}

func gatewaySettings(c config.Config) agentcfg.GatewaySettings {
	return agentcfg.GatewaySettings{Port: c.Gateway.Port, RequirePairing: c.Gateway.RequirePairing}
}
