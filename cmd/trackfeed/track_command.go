package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"trackfeed/internal/tracker"
)

func newTrackCommand(ctx *commandContext) *cobra.Command {
	var days int
	var forceRefresh bool
	var maxPerArtist int
	var workers int
	var output string

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Discover new releases from tracked artists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				lock := flock.New(eng.cfg.LockPath())
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !locked {
					return fmt.Errorf("another trackfeed run is already in progress (lock %s)", eng.cfg.LockPath())
				}
				defer lock.Unlock()

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				artistIDs, err := eng.store.ArtistIDs(runCtx)
				if err != nil {
					return err
				}
				if len(artistIDs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No artists tracked yet. Add some with `trackfeed artists import-txt` or `trackfeed artists import-playlist`.")
					return nil
				}

				lookback := days
				if lookback <= 0 {
					lookback = eng.cfg.Tracker.LookbackDays
				}
				perArtist := maxPerArtist
				if perArtist == 0 {
					perArtist = eng.cfg.Tracker.MaxPerArtist
				}
				cutoff := time.Now().UTC().AddDate(0, 0, -lookback)

				result, err := eng.tracker.Discover(runCtx, artistIDs, cutoff, tracker.Options{
					ForceRefresh: forceRefresh,
					MaxPerArtist: perArtist,
					Workers:      workers,
				})
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), result, output)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Lookback window in days (default from config)")
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Ignore cached results and refetch every artist")
	cmd.Flags().IntVar(&maxPerArtist, "max-per-artist", 0, "Cap releases per artist by popularity (-1 disables the configured cap)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent artist fetches (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "auto", "Output format: auto, table, tsv, csv, or json")

	return cmd
}
