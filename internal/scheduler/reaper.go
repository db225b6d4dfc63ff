// Package scheduler runs the background jobs of the metering service. Its
// one standing job is the session reaper, which force-closes running meters
// whose driver app went silent.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/transpolabs/transpo/internal/config"
	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
)

type Reaper struct {
	log      *zap.Logger
	meter    meterdomain.Service
	interval time.Duration
	after    time.Duration

	stop chan struct{}
	done chan struct{}
}

type ReaperParam struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Meter meterdomain.Service
}

func NewReaper(p ReaperParam) *Reaper {
	return &Reaper{
		log:      p.Log.Named("scheduler.reaper"),
		meter:    p.Meter,
		interval: p.Cfg.Meter.ReapInterval,
		after:    p.Cfg.Meter.StaleSessionAfter,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run loops until Close. Every tick sweeps the live sessions once; a sweep
// that reaps nothing is the steady state and stays silent.
func (r *Reaper) Run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("session reaper started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_after", r.after))

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := r.meter.ReapStale(ctx, r.after)
			cancel()
			if err != nil {
				r.log.Error("reap sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				r.log.Info("reap sweep finished", zap.Int("reaped", n))
			}
		}
	}
}

func (r *Reaper) Close() {
	close(r.stop)
	<-r.done
}

var Module = fx.Module("scheduler",
	fx.Provide(NewReaper),
	fx.Invoke(func(lc fx.Lifecycle, r *Reaper) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go r.Run()
				return nil
			},
			OnStop: func(context.Context) error {
				r.Close()
				return nil
			},
		})
	}),
)
