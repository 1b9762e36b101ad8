package cli

import (
	"fmt"

	"github.com/soyeahso/clawdock/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		noGateway bool
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Install and configure the agent, then start its gateway",
		Long: "Checks whether the agent is configured. If not, installs the bundled binary, " +
			"runs onboarding, seeds the workspace and patches the gateway section, then starts " +
			"the gateway. Safe to run repeatedly.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			report := func(s bootstrap.State) {
				fmt.Fprintf(out, "[%3d%%] %s\n", s.Progress, s.Message)
			}

			var gw bootstrap.GatewayStarter
			if !noGateway {
				gw = a.supervisor()
			}

			final := a.bootstrapper().Run(cmd.Context(), gw, report)
			if final.Err != nil {
				return final.Err
			}

			if wait && gw != nil && final.Message != bootstrap.ReadyMessage {
				if err := a.waitReady(cmd.Context(), 0); err != nil {
					return err
				}
				fmt.Fprintln(out, "gateway is running")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGateway, "no-gateway", false, "do not start the gateway after initializing")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the gateway to report running")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the agent has been initialized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ok, err := a.bootstrapper().CheckInitialized()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}
