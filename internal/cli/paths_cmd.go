package cli

import (
	"fmt"

	"github.com/soyeahso/clawdock/internal/config"
	"github.com/spf13/cobra"
)

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the directories and files clawdock uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, err := config.ResolveAgentPaths(cfg.Agent)
			if err != nil {
				return err
			}
			rp, err := config.ResolveResourcePaths(cfg.Resources.Dir, cfg.Agent.Binary)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][2]string{
				{"config", paths.Config},
				{"env", paths.Env},
				{"logs", paths.Logs},
				{"journal", paths.Journal},
				{"agent.root", ap.Root},
				{"agent.bin", ap.Bin},
				{"agent.config", ap.Config},
				{"agent.workspace", ap.Workspace},
				{"resources", rp.Dir},
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%-16s %s\n", r[0], r[1])
			}
			return nil
		},
	}
}
