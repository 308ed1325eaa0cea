package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hotspot-olap/internal/domain"
)

var treeCmd = &cobra.Command{
	Use:   "tree [LABEL...]",
	Short: "Print the drill-down tree",
	Long:  "Loads the islands under the filters and expands the given path of labels, e.g. olapctl tree JAWA \"JAWA TENGAH\".",
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

		printTree(cmd, s.Tree, 0, s.Focus)
		return nil
	},
}

func init() { rootCmd.AddCommand(treeCmd) }

func printTree(cmd *cobra.Command, nodes []domain.DrillNode, depth int, focus domain.NodeID) {
	for _, n := range nodes {
		marker := "+"
		if n.Expanded {
			marker = "-"
		}
		if n.Level == domain.LevelVillage {
			marker = " "
		}
		suffix := ""
		if n.ID == focus {
			suffix = "  <"
		}
		printf(cmd, "%s%s [%d] %s %d%s\n", strings.Repeat("  ", depth), marker, n.ID, n.Label, n.Total, suffix)
		if n.Expanded {
			printTree(cmd, n.Children, depth+1, focus)
		}
	}
}
