package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/swiftbulk/campaign-gateway/internal/config"
	"github.com/swiftbulk/campaign-gateway/internal/http/middleware"
	"github.com/swiftbulk/campaign-gateway/internal/metrics"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
	campaignSvc "github.com/swiftbulk/campaign-gateway/internal/service/campaign"
)

type Server struct{ e *echo.Echo }

// NewServer wires repositories, the campaign service and routes. The
// ClickHouse handle may be nil when analytics is disabled.
func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	operatorsRepo := repository.NewOperatorsRepository(mysqlDB)
	campaignsRepo := repository.NewCampaignsRepository(mysqlDB)
	recipientsRepo := repository.NewRecipientsRepository(mysqlDB)

	// services
	svc := campaignSvc.New(mysqlDB, campaignsRepo, recipientsRepo)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(operatorsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:op:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/campaigns", createCampaignHandler(svc, cfg.Upload.MaxBytes))
	v1.GET("/campaigns", listCampaignsHandler(svc))
	v1.GET("/campaigns/:id", getCampaignHandler(svc))
	v1.PATCH("/campaigns/:id", updateCampaignHandler(svc))
	v1.POST("/campaigns/:id/start", transitionHandler(svc.Start, "queued"))
	v1.POST("/campaigns/:id/resume", transitionHandler(svc.Resume, "queued"))
	v1.POST("/campaigns/:id/stop", transitionHandler(svc.Stop, "stopped"))
	v1.GET("/campaigns/:id/report.csv", campaignReportHandler(svc))

	if clickhouseDB != nil {
		deliveriesRepo := repository.NewDeliveriesRepository(clickhouseDB)
		v1.GET("/reports/deliveries", listDeliveriesHandler(deliveriesRepo))
	}

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
