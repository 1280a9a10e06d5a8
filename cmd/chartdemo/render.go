package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/chart"
	"github.com/gogpu/chart/recording/backends/raster"
)

type renderFlags struct {
	frames    int
	interval  time.Duration
	out       string
	producers int
	rate      float64
}

func newRenderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render PNG frames of a synthetic feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), f)
		},
	}
	cmd.Flags().IntVar(&f.frames, "frames", 30, "number of frames to write")
	cmd.Flags().DurationVar(&f.interval, "interval", 100*time.Millisecond, "time between frames")
	cmd.Flags().StringVar(&f.out, "out", "frames", "output directory")
	cmd.Flags().IntVar(&f.producers, "producers", 2, "concurrent feed producers")
	cmd.Flags().Float64Var(&f.rate, "rate", 200, "trades per second per producer")
	return cmd
}

func runRender(ctx context.Context, f renderFlags) error {
	if f.frames <= 0 || f.producers <= 0 || !(f.rate > 0) {
		return fmt.Errorf("chartdemo: frames, producers and rate must be positive")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.out, 0o755); err != nil {
		return err
	}
	backend, err := raster.NewBackend(raster.WithScale(cfg.Viewport.DPR))
	if err != nil {
		return err
	}
	defer backend.Close()

	e, err := newEngine(cfg, chart.WithAutoTick(false), chart.WithBackend(backend))
	if err != nil {
		return err
	}
	defer e.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for i := range f.producers {
		fd := newFeed(e, f.rate, uint64(i+1), time.Now)
		g.Go(func() error { return fd.run(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		tick := time.NewTicker(f.interval)
		defer tick.Stop()
		for n := range f.frames {
			select {
			case <-gctx.Done():
				return nil
			case <-tick.C:
			}
			if err := e.Flush(); err != nil {
				return err
			}
			path := filepath.Join(f.out, fmt.Sprintf("frame-%04d.png", n))
			if err := backend.SavePNG(path); err != nil {
				return err
			}
		}
		chart.Logger().Info("chartdemo: render finished", "frames", f.frames, "dir", f.out, "evicted", e.Bus().Evicted())
		return nil
	})
	return g.Wait()
}
