package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var mapCmd = &cobra.Command{
	Use:   "map [LABEL...]",
	Short: "Print the choropleth data of a level",
	Long:  "Expands the path and prints the aggregate, thresholds and legend the map would render for it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		uc, err := explorer(ctx)
		if err != nil {
			return err
		}
		s, err := openSession(ctx, uc, args)
		if err != nil {
			return err
		}
		m, err := uc.MapView(ctx, s.ID)
		if err != nil {
			return err
		}

		v := m.View
		printf(cmd, "level: %s  zoom: %d  center: %.4f,%.4f  source: %s\n",
			v.Level, v.Zoom, v.Center.Lat, v.Center.Lon, v.Source)
		if m.LatestDate != "" {
			printf(cmd, "latest date: %s\n", m.LatestDate)
		}
		printf(cmd, "thresholds: %v\n\n", v.Thresholds)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOUNT\tBUCKET\tCOLOR")
		for _, f := range v.Features {
			name := f.Name
			if f.Highlighted {
				name += " *"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, f.Count, f.Bucket, f.Color)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		printf(cmd, "\n")
		for _, e := range v.Legend {
			printf(cmd, "%s  %s\n", e.Color, e.Label)
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(mapCmd) }
