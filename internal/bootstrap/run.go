package bootstrap

import "context"

// Status is a stage of the first-run flow.
type Status string

const (
	StatusChecking        Status = "checking"
	StatusInitializing    Status = "initializing"
	StatusStartingGateway Status = "starting_gateway"
	StatusSuccess         Status = "success"
	StatusError           Status = "error"
)

// State is a progress snapshot reported while Run executes.
type State struct {
	Status   Status
	Progress int // 0-100
	Message  string
	Err      error
}

// ReadyMessage is the final message when the agent was already initialized.
const ReadyMessage = "ready"

// Reporter receives every State transition.
type Reporter func(State)

// GatewayStarter starts the agent's gateway.
type GatewayStarter interface {
	Start(ctx context.Context) (string, error)
}

// Run checks whether the agent is initialized, initializes it if not, and
// then starts the gateway. A gateway failure is logged and does not fail
// the run. The final State is returned; its Err is set only on
// initialization failure.
func (b *Bootstrapper) Run(ctx context.Context, gw GatewayStarter, report Reporter) State {
	if report == nil {
		report = func(State) {}
	}
	set := func(s State) State {
		b.log.Debug().Str("status", string(s.Status)).Int("progress", s.Progress).Msg(s.Message)
		report(s)
		return s
	}

	set(State{Status: StatusChecking, Progress: 10, Message: "checking initialization status"})

	initialized, err := b.CheckInitialized()
	if err != nil {
		b.log.Warn().Err(err).Msg("initialization check failed, assuming uninitialized")
	}
	if initialized {
		return set(State{Status: StatusSuccess, Progress: 100, Message: ReadyMessage})
	}

	set(State{Status: StatusInitializing, Progress: 30, Message: "initializing configuration"})
	if _, err := b.Initialize(ctx); err != nil {
		return set(State{Status: StatusError, Progress: 30, Message: "initialization failed", Err: err})
	}

	set(State{Status: StatusStartingGateway, Progress: 80, Message: "starting gateway"})
	if gw != nil {
		if msg, err := gw.Start(ctx); err != nil {
			b.log.Warn().Err(err).Msg("gateway startup failed (non-critical)")
		} else {
			b.log.Info().Msg(msg)
		}
	}

	return set(State{Status: StatusSuccess, Progress: 100, Message: "initialization complete"})
}
