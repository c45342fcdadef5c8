package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskwave/internal/config"
	"riskwave/internal/exchange"
	"riskwave/internal/feed"
	"riskwave/internal/metrics"
	"riskwave/internal/pipeline"
	"riskwave/internal/report"
	"riskwave/internal/stages/data"
	"riskwave/internal/stages/execution"
	"riskwave/internal/stages/position"
	"riskwave/internal/stages/risk"
	"riskwave/internal/stages/signal"
	"riskwave/internal/store"
)

// NewRunCmd builds the "run" subcommand: load config, construct the
// exchange registry, event source, and six-stage pipeline, and drive a
// single backtest to completion.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest to completion and print its report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd.Context())
		},
	}
	return cmd
}

func runBacktest(ctx context.Context) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	source, err := buildSource(cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, m, log)
	}

	p := pipeline.New(
		data.New(registry, log),
		signal.NewPassthroughSignal(),
		risk.New(registry, log),
		execution.NewEntryStage(registry, log),
		position.New(log),
		execution.NewExitStage(registry, log),
	)

	bt := pipeline.NewBacktest(source, p, log, m)
	results, err := bt.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest run: %w", err)
	}

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store.Path, log)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		defer st.Close()

		id, err := st.Save(results)
		if err != nil {
			return fmt.Errorf("store save: %w", err)
		}
		log.Info("saved backtest result", zap.String("id", id))
	}

	fmt.Println(report.Summarize(results).String())
	return nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildRegistry(cfg *config.Config) (*exchange.Registry, error) {
	var presets []exchange.Preset
	for _, name := range cfg.Presets {
		p, ok := exchange.PresetByName(name)
		if !ok {
			return nil, fmt.Errorf("config: unknown exchange preset %q", name)
		}
		presets = append(presets, p)
	}
	return exchange.NewRegistryFromPresets(presets, cfg.InitialBalances), nil
}

func buildSource(cfg *config.Config, log *zap.Logger) (pipeline.EventSource, error) {
	switch cfg.Feed.Kind {
	case "csv":
		return feed.NewCSVSource(cfg.Feed.Path), nil
	case "websocket":
		return feed.NewWebSocketSource(cfg.Feed.URL, log), nil
	default:
		return nil, fmt.Errorf("config: unknown feed kind %q", cfg.Feed.Kind)
	}
}

func serveMetrics(addr string, m *metrics.Metrics, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	log.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}
