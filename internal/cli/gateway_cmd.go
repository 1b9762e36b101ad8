package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Start or query the agent's gateway",
	}

	cmd.AddCommand(newGatewayStatusCmd())
	cmd.AddCommand(newGatewayStartCmd())
	cmd.AddCommand(newGatewayWaitCmd())
	cmd.AddCommand(newGatewayWatchCmd())
	return cmd
}

func newGatewayStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print whether the gateway is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			running, err := a.supervisor().Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), runningLabel(running))
			return nil
		},
	}
}

func newGatewayStartCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			msg, err := a.supervisor().Start(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)

			if wait {
				if err := a.waitReady(cmd.Context(), 0); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "gateway is running")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the gateway to report running")
	return cmd
}

func newGatewayWaitCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the gateway reports running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.waitReady(cmd.Context(), timeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "gateway is running")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait (default gateway.readyTimeout)")
	return cmd
}

func newGatewayWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the gateway running, restarting it when it stops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if interval <= 0 {
				interval = 10 * time.Second
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Re-exec when clawdock itself is upgraded underneath the watcher.
			go autorestart.RestartOnChange()

			log.Info().Dur("interval", interval).Str("mode", a.cfg.Gateway.Mode).Msg("watching gateway")
			return a.supervisor().Watch(ctx, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "how often to check the gateway")
	return cmd
}

func runningLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
