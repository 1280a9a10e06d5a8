package main

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/gogpu/chart"
	"github.com/gogpu/chart/ingest"
	"github.com/gogpu/chart/scale"
)

// Demo series IDs.
const (
	seriesRate   = 1
	seriesVolume = 2
	seriesDelta  = 3
)

// feed generates a random-walk trade stream.
type feed struct {
	engine  *chart.Engine
	limiter *rate.Limiter
	rng     *rand.Rand
	now     func() time.Time
	price   float64
}

func newFeed(e *chart.Engine, perSecond float64, seed uint64, now func() time.Time) *feed {
	return &feed{
		engine:  e,
		limiter: rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond/10))),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:     now,
		price:   100,
	}
}

// next returns the next trade of the walk at time ts.
func (f *feed) next(ts float64) ingest.Trade {
	f.price *= math.Exp(f.rng.NormFloat64() * 0.002)
	side := ingest.SideBuy
	if f.rng.IntN(2) == 0 {
		side = ingest.SideSell
	}
	return ingest.Trade{
		Time:     ts,
		Price:    f.price,
		Quantity: 1 + f.rng.ExpFloat64()*4,
		Side:     side,
	}
}

// run writes trades until ctx is done. Each trade lands on the volume and
// heatmap series and counts toward the rate series.
func (f *feed) run(ctx context.Context) error {
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		ts := scale.Seconds(f.now())
		t := f.next(ts)
		vol, delta := t, t
		vol.SeriesID, delta.SeriesID = seriesVolume, seriesDelta
		if err := chart.Write(f.engine, []ingest.Trade{vol, delta}); err != nil {
			return err
		}
		if err := chart.Write(f.engine, []ingest.Sample{{SeriesID: seriesRate, Time: ts, Value: 1}}); err != nil {
			return err
		}
	}
}
