package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trackfeed/internal/importer"
)

func newArtistsCommand(ctx *commandContext) *cobra.Command {
	artistsCmd := &cobra.Command{
		Use:   "artists",
		Short: "Manage the tracked artist set",
	}

	artistsCmd.AddCommand(newArtistsListCommand(ctx))
	artistsCmd.AddCommand(newArtistsImportTxtCommand(ctx))
	artistsCmd.AddCommand(newArtistsImportPlaylistCommand(ctx))
	artistsCmd.AddCommand(newArtistsRemoveCommand(ctx))
	artistsCmd.AddCommand(newArtistsExportCommand(ctx))
	artistsCmd.AddCommand(newArtistsImportJSONCommand(ctx))

	return artistsCmd
}

func newArtistsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked artists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				artists, err := eng.store.ListArtists(cmd.Context())
				if err != nil {
					return err
				}
				if len(artists) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No artists tracked.")
					return nil
				}
				rows := make([][]string, 0, len(artists))
				for _, artist := range artists {
					added := ""
					if !artist.AddedAt.IsZero() {
						added = artist.AddedAt.Format("2006-01-02")
					}
					rows = append(rows, []string{artist.Name, artist.ID, added})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(artistColumns, rows))
				return nil
			})
		},
	}
}

func newArtistsImportTxtCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import-txt <file>",
		Short: "Import artists from a text file (one name, id, URI, or link per line; - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				var reader io.Reader
				if args[0] == "-" {
					reader = cmd.InOrStdin()
				} else {
					file, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("open artist list: %w", err)
					}
					defer file.Close()
					reader = file
				}
				summary, err := eng.importer.ImportText(cmd.Context(), reader)
				if err != nil {
					return err
				}
				printImportSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func newArtistsImportPlaylistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import-playlist <playlist>",
		Short: "Import every artist appearing on a playlist (id, URI, or link)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				summary, err := eng.importer.ImportPlaylist(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printImportSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func newArtistsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <artist>",
		Short: "Stop tracking an artist (id, URI, link, or tracked name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				id, ok := importer.ParseArtistRef(args[0])
				if !ok {
					var err error
					id, err = findTrackedByName(cmd, eng, args[0])
					if err != nil {
						return err
					}
				}
				removed, err := eng.store.RemoveArtist(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Artist %s was not tracked.\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", id)
				return nil
			})
		},
	}
}

func newArtistsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked artists as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				var writer io.Writer = cmd.OutOrStdout()
				if outPath != "" {
					file, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					defer file.Close()
					writer = file
				}
				return eng.importer.ExportJSON(cmd.Context(), writer)
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "f", "", "Write to a file instead of stdout")
	return cmd
}

func newArtistsImportJSONCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import-json <file>",
		Short: "Restore artists from a JSON export (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine) error {
				var reader io.Reader
				if args[0] == "-" {
					reader = cmd.InOrStdin()
				} else {
					file, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("open export file: %w", err)
					}
					defer file.Close()
					reader = file
				}
				summary, err := eng.importer.ImportJSON(cmd.Context(), reader)
				if err != nil {
					return err
				}
				printImportSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

// findTrackedByName matches a reference against tracked artist names,
// case-insensitively. Exactly one match is required.
func findTrackedByName(cmd *cobra.Command, eng *engine, name string) (string, error) {
	artists, err := eng.store.ListArtists(cmd.Context())
	if err != nil {
		return "", err
	}
	var matches []string
	for _, artist := range artists {
		if strings.EqualFold(artist.Name, name) {
			matches = append(matches, artist.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no tracked artist named %q", name)
	default:
		return "", fmt.Errorf("%d tracked artists named %q; remove by id instead", len(matches), name)
	}
}

func printImportSummary(w io.Writer, summary importer.Summary) {
	fmt.Fprintf(w, "Added %d, skipped %d already tracked.\n", summary.Added, summary.Skipped)
	if len(summary.Failed) > 0 {
		fmt.Fprintf(w, "Could not resolve %d:\n", len(summary.Failed))
		for _, ref := range summary.Failed {
			fmt.Fprintf(w, "  %s\n", ref)
		}
	}
}
