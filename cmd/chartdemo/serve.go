package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/chart"
	"github.com/gogpu/chart/recording/backends/raster"
	"github.com/gogpu/chart/telemetry"
)

type serveFlags struct {
	addr      string
	producers int
	rate      float64
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine continuously and expose metrics and the latest frame",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":9090", "listen address")
	cmd.Flags().IntVar(&f.producers, "producers", 2, "concurrent feed producers")
	cmd.Flags().Float64Var(&f.rate, "rate", 200, "trades per second per producer")
	return cmd
}

func runServe(ctx context.Context, f serveFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	sink, err := telemetry.NewPrometheusSink(telemetry.PrometheusConfig{Registry: reg})
	if err != nil {
		return err
	}
	defer sink.Close()

	// Hosts that install a global MeterProvider receive the same stats
	// through OpenTelemetry.
	otelSink, err := telemetry.NewOTelSink(telemetry.OTelConfig{Version: version})
	if err != nil {
		return err
	}
	defer otelSink.Close()

	e, err := newEngine(cfg, chart.WithAutoTick(true), chart.WithTelemetry(telemetry.Multi{sink, otelSink}))
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := newSnapshotter(e, cfg.Viewport.DPR)
	if err != nil {
		return err
	}
	defer snap.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/frame.png", snap)
	srv := &http.Server{Addr: f.addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	for i := range f.producers {
		fd := newFeed(e, f.rate, uint64(i+1), time.Now)
		g.Go(func() error { return fd.run(gctx) })
	}
	g.Go(func() error {
		chart.Logger().Info("chartdemo: serving", "addr", f.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return e.Err()
}

// snapshotter serves the most recent frame as PNG.
type snapshotter struct {
	engine *chart.Engine

	mu      sync.Mutex
	backend *raster.Backend
}

func newSnapshotter(e *chart.Engine, dpr float64) (*snapshotter, error) {
	b, err := raster.NewBackend(raster.WithScale(dpr))
	if err != nil {
		return nil, err
	}
	return &snapshotter{engine: e, backend: b}, nil
}

func (s *snapshotter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	rec := s.engine.LastFrame()
	if rec == nil {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := rec.Playback(s.backend); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := s.backend.WriteTo(w); err != nil {
		chart.Logger().Warn("chartdemo: write frame", "err", err)
	}
}

func (s *snapshotter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
