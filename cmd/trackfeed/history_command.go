package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent discovery runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				runs, err := eng.store.RunHistory(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.RunAt.Local().Format("2006-01-02 15:04"),
						strconv.Itoa(run.ArtistsTracked),
						strconv.Itoa(run.ReleasesFound),
						strconv.Itoa(run.MissingArtists),
						strconv.Itoa(run.LookbackDays),
						strconv.FormatInt(run.APICalls, 10),
						run.Duration.Truncate(10 * time.Millisecond).String(),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(historyColumns, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
