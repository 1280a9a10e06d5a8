// Command chartdemo streams a synthetic market feed through the chart
// engine.
//
//	chartdemo render --frames 30 --out frames/
//	chartdemo serve --addr :9090
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/chart"
	"github.com/gogpu/chart/axis"
	"github.com/gogpu/chart/config"
)

// version is reported as the telemetry instrumentation version.
const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chartdemo",
		Short:         "Stream a synthetic feed through the chart engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	root.AddCommand(newRenderCmd(), newServeCmd())
	return root
}

// loadConfig reads the configuration, installs the engine logger and
// fills in the demo series when none are configured.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	chart.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	if len(cfg.Series) == 0 {
		cfg.Series = []config.SeriesConfig{
			{ID: seriesRate, Kind: "line", Label: "trade rate", Bucket: 1, Window: 120},
			{ID: seriesVolume, Kind: "volume", Label: "volume", Bucket: 2, Window: 120},
			{ID: seriesDelta, Kind: "heatmap", Label: "price delta", Bucket: 2, Window: 120},
		}
	}
	return cfg, nil
}

// newEngine builds an engine from cfg. Axis labels are measured with Go
// Regular, the face the raster backend draws them with.
func newEngine(cfg config.Config, opts ...chart.Option) (*chart.Engine, error) {
	m, err := axis.NewGoRegularMeasurer()
	if err != nil {
		return nil, err
	}
	base := append(cfg.EngineOptions(), chart.WithMeasurer(m))
	e, err := chart.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	for _, s := range cfg.SeriesConfigs() {
		if err := e.AddSeries(s); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}
