package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		kind  string
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent lifecycle events from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.journal == nil {
				return errors.New("journal is disabled or unavailable")
			}
			out := cmd.OutOrStdout()

			if prune > 0 {
				n, err := a.journal.Prune(cmd.Context(), time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d event(s)\n", n)
				return nil
			}

			entries, err := a.journal.Recent(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "no events recorded")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-17s", e.CreatedAt.Local().Format(time.DateTime), e.Kind)
				if len(e.Data) > 0 {
					data, _ := json.Marshal(e.Data)
					line += "  " + string(data)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")
	cmd.Flags().StringVar(&kind, "kind", "", "only show events of this kind (e.g. init_failed)")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete events older than this instead of listing")
	return cmd
}
