package main

import (
	"bufio"
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [NAME...]",
	Short: "Show how names are matched between sources",
	Long:  "Prints the normalized form of each name; reads one name per line from stdin when no arguments are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		norm, err := normalizer()
		if err != nil {
			return err
		}

		names := args
		if len(names) == 0 {
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				names = append(names, sc.Text())
			}
			if err := sc.Err(); err != nil {
				return eris.Wrap(err, "read names")
			}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, norm.Normalize(name))
		}
		return w.Flush()
	},
}

func init() { rootCmd.AddCommand(normalizeCmd) }
