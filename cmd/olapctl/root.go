package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/config"
	"github.com/hotspot-olap/internal/infrastructure/olapapi"
	"github.com/hotspot-olap/internal/olap"
	"github.com/hotspot-olap/internal/pkg/logger"
	"github.com/hotspot-olap/internal/repository/boundary"
	"github.com/hotspot-olap/internal/usecase"
	"github.com/hotspot-olap/internal/usecase/dto"
)

var (
	cfg *config.Config
	log *zap.Logger

	flagAPI     string
	flagAliases string
	flagFilters dto.FiltersRequest
)

var rootCmd = &cobra.Command{
	Use:   "olapctl",
	Short: "Terminal explorer for the hotspot dimension service",
	Long:  "Drills the location hierarchy, prints map aggregates and walks the cascading time filter against a live /api/query upstream.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if flagAPI != "" {
			c.OlapAPI.BaseURL = flagAPI
		}
		if flagAliases != "" {
			c.Normalizer.AliasFile = flagAliases
		}
		cfg = c

		l, err := logger.NewService(cfg.Log.Level, "olapctl")
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPI, "api", "", "dimension service base URL (overrides OLAP_API_URL)")
	pf.StringVar(&flagAliases, "aliases", "", "alias YAML file (overrides ALIAS_FILE)")
	pf.StringVar(&flagFilters.Tahun, "tahun", "", "year filter")
	pf.StringVar(&flagFilters.Semester, "semester", "", "semester filter")
	pf.StringVar(&flagFilters.Kuartal, "kuartal", "", "quarter filter")
	pf.StringVar(&flagFilters.Bulan, "bulan", "", "month filter")
	pf.StringVar(&flagFilters.Hari, "hari", "", "weekday filter")
	pf.StringVar(&flagFilters.Confidence, "confidence", "", "confidence filter")
	pf.StringVar(&flagFilters.Satellite, "satelite", "", "satellite filter")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func normalizer() (*olap.Normalizer, error) {
	normCfg, err := olap.LoadNormalizerConfig(cfg.Normalizer.AliasFile)
	if err != nil {
		return nil, eris.Wrap(err, "load aliases")
	}
	return olap.NewNormalizer(normCfg), nil
}

// explorer wires the use case straight to the upstream, without cache or sessions janitor.
func explorer(ctx context.Context) (*usecase.ExplorerUseCase, error) {
	if cfg.OlapAPI.BaseURL == "" {
		return nil, eris.New("dimension service URL is not set, use --api or OLAP_API_URL")
	}
	norm, err := normalizer()
	if err != nil {
		return nil, err
	}

	client := olapapi.NewClient(&cfg.OlapAPI, log)
	boundaries := boundary.NewRepository(&cfg.Boundary, log)
	if _, err := boundaries.Load(ctx); err != nil {
		return nil, eris.Wrap(err, "load boundaries")
	}

	return usecase.NewExplorerUseCase(client, client, boundaries, norm, log, usecase.ExplorerOptions{
		CollapseSiblings: cfg.Explorer.CollapseSiblings,
		ShowEmpty:        cfg.Explorer.ShowEmpty,
	}), nil
}

func openSession(ctx context.Context, uc *usecase.ExplorerUseCase, path []string) (*dto.SessionResponse, error) {
	s, err := uc.CreateSession(ctx, dto.CreateSessionRequest{Filters: flagFilters, Path: path})
	if err != nil {
		return nil, eris.Wrapf(err, "open %v", path)
	}
	return s, nil
}

func printf(cmd *cobra.Command, format string, a ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
