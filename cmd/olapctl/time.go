package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hotspot-olap/internal/usecase/dto"
)

var timePath []string

var timeCmd = &cobra.Command{
	Use:   "time [LEVEL=VALUE...]",
	Short: "Walk the cascading time filter",
	Long: `Opens the year list and applies the selections in order, printing the options of every level.
Example: olapctl time --path JAWA tahun=2024 semester=2 bulan=Agustus`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		uc, err := explorer(ctx)
		if err != nil {
			return err
		}
		s, err := openSession(ctx, uc, timePath)
		if err != nil {
			return err
		}

		state, err := uc.OpenTime(ctx, s.ID, dto.OpenTimeRequest{Level: "tahun", Node: uint64(s.Focus)})
		if err != nil {
			return eris.Wrap(err, "open year")
		}
		for _, arg := range args {
			level, value, ok := strings.Cut(arg, "=")
			if !ok {
				return eris.Errorf("expected LEVEL=VALUE, got %q", arg)
			}
			state, err = uc.SetTime(ctx, s.ID, level, dto.SetTimeRequest{Value: value})
			if err != nil {
				return eris.Wrapf(err, "set %s", level)
			}
		}

		printf(cmd, "scope: %s\n\n", strings.Join(state.Scope, " / "))
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tSTATUS\tVALUE\tOPTIONS")
		for _, slot := range state.Slots {
			labels := make([]string, 0, len(slot.Options))
			for _, o := range slot.Options {
				labels = append(labels, o.Label)
			}
			detail := strings.Join(labels, ", ")
			if slot.Error != "" {
				detail = "error: " + slot.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", slot.Level.Key(), slot.Status, slot.Value, detail)
		}
		return w.Flush()
	},
}

func init() {
	timeCmd.Flags().StringSliceVar(&timePath, "path", nil, "location labels scoping the options")
	rootCmd.AddCommand(timeCmd)
}
