package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/clawdock/internal/agent"
	"github.com/soyeahso/clawdock/internal/agentcfg"
	"github.com/soyeahso/clawdock/internal/config"
	"github.com/soyeahso/clawdock/internal/version"
	"github.com/spf13/cobra"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorDanger  = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Width(10).Foreground(colorMuted)
	okStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	badStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarning)
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show agent, gateway and configuration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("clawdock %s (commit %s)", version.Version, version.Commit)))
			fmt.Fprintln(out)

			row(out, "Config", paths.Config)
			if cfgErr != nil {
				row(out, "", badStyle.Render("error loading: "+cfgErr.Error()))
				return nil
			}
			if issues := config.Validate(&cfg); len(issues) > 0 {
				row(out, "", warnStyle.Render(fmt.Sprintf("%d validation issue(s)", len(issues))))
				for _, issue := range issues {
					row(out, "", "  - "+issue.String())
				}
				return nil
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintln(out)
			if bin, ok := agent.Resolve(a.agent.Bin, config.ExecutableName(a.cfg.Agent.Binary)); ok {
				row(out, "Binary", okStyle.Render(bin))
			} else {
				row(out, "Binary", badStyle.Render("not found"))
			}

			initialized, err := a.bootstrapper().CheckInitialized()
			switch {
			case err != nil:
				row(out, "Agent", badStyle.Render(err.Error()))
			case initialized:
				row(out, "Agent", okStyle.Render("initialized")+" "+a.agent.Config)
			default:
				row(out, "Agent", warnStyle.Render("not initialized")+" (run `clawdock init`)")
			}

			if s, found, err := agentcfg.ReadGateway(a.agent.Config); err != nil {
				row(out, "Patch", badStyle.Render(err.Error()))
			} else if found {
				want := gatewaySettings(a.cfg)
				line := fmt.Sprintf("port=%d require_pairing=%v", s.Port, s.RequirePairing)
				if s != want {
					line = warnStyle.Render(line) + " (run `clawdock config patch-gateway`)"
				}
				row(out, "Patch", line)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			running, err := a.supervisor().Status(ctx)
			state := badStyle.Render(runningLabel(running))
			if running {
				state = okStyle.Render(runningLabel(running))
			}
			if err != nil {
				state = badStyle.Render(err.Error())
			}
			row(out, "Gateway", fmt.Sprintf("%s mode=%s", state, a.cfg.Gateway.Mode))

			client := a.client()
			if err := client.Health(ctx); err != nil {
				row(out, "HTTP", badStyle.Render(client.BaseURL()+" "+err.Error()))
			} else {
				row(out, "HTTP", okStyle.Render(client.BaseURL()+" healthy"))
			}

			return nil
		},
	}
}

func row(w io.Writer, label, value string) {
	fmt.Fprintln(w, strings.TrimRight(labelStyle.Render(label)+" "+value, " "))
}
