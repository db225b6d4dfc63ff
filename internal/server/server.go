// Package server exposes the metering service over HTTP: the driver-facing
// taxi endpoints, rider fare polling, the estimator and the rate-card
// administration surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/clock"
	"github.com/transpolabs/transpo/internal/config"
	"github.com/transpolabs/transpo/internal/estimate"
	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
	"github.com/transpolabs/transpo/internal/observability"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

type Server struct {
	log      *zap.Logger
	db       *gorm.DB
	clock    clock.Clock
	adminKey string
	region   string

	meterSvc    meterdomain.Service
	rateSvc     ratedomain.Service
	estimateSvc estimate.Service
	metrics     *observability.Metrics
}

type ServerParam struct {
	fx.In

	Log      *zap.Logger
	DB       *gorm.DB
	Cfg      config.Config
	Clock    clock.Clock
	Meter    meterdomain.Service
	Rates    ratedomain.Service
	Estimate estimate.Service
	Metrics  *observability.Metrics
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		db:          p.DB,
		clock:       p.Clock,
		adminKey:    p.Cfg.AdminAPIKey,
		region:      p.Cfg.Meter.Region,
		meterSvc:    p.Meter,
		rateSvc:     p.Rates,
		estimateSvc: p.Estimate,
		metrics:     p.Metrics,
	}
}

// NewEngine builds the router. Split from the lifecycle hook so handler
// tests can mount the full route table against httptest.
func NewEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.RequestMetrics())

	r.GET("/healthz", s.Healthz)
	r.GET("/readyz", s.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	taxi := r.Group("/taxi")
	{
		taxi.GET("/rates", s.GetRates)
		taxi.POST("/estimate", s.EstimateFare)

		// Rider polling; the meter id is the only credential, like the
		// visible meter display in the cab.
		taxi.GET("/meter/:id/live", s.GetLiveFare)

		driver := taxi.Group("", s.DriverAuthRequired())
		{
			driver.POST("/meter/start", s.StartMeter)
			driver.POST("/meter/:id/update", s.UpdateMeter)
			driver.POST("/meter/:id/stop", s.StopMeter)
			driver.GET("/meter/:id", s.GetMeter)
			driver.GET("/history", s.GetHistory)
		}
	}

	admin := r.Group("/admin", s.AdminKeyRequired())
	{
		admin.POST("/rate-cards", s.CreateRateCard)
		admin.GET("/rate-cards", s.ListRateCards)
		admin.GET("/rate-cards/:id", s.GetRateCard)
		admin.PATCH("/rate-cards/:id", s.UpdateRateCard)
		admin.POST("/rate-cards/:id/activate", s.ActivateRateCard)
		admin.POST("/rate-cards/:id/lock", s.LockRateCard)
	}

	return r
}

var Module = fx.Module("server",
	fx.Provide(NewServer, NewEngine),
	fx.Invoke(startHTTP),
)

type httpParam struct {
	fx.In

	Lc     fx.Lifecycle
	Log    *zap.Logger
	Cfg    config.Config
	Engine *gin.Engine
}

func startHTTP(p httpParam) {
	srv := &http.Server{
		Addr:              p.Cfg.HTTPAddr,
		Handler:           p.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Log.Info("http server listening", zap.String("addr", p.Cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
