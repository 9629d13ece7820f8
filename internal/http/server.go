package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmehdipour/segment-reports/internal/config"
	"github.com/jmehdipour/segment-reports/internal/http/middleware"
	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/jmehdipour/segment-reports/internal/metrics"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server previews generated reports from the output directory.
type Server struct{ e *echo.Echo }

// NewServer wires the preview routes. rdb may be nil, in which case the
// segment lookup answers 503.
func NewServer(cfg config.Config, reg *prometheus.Registry, rdb redis.Cmdable) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(logLevel(cfg.Preview.LogLevel))
	e.Use(echoMid.Recover(), middleware.RequestCounter(metrics.PreviewRequests))

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// routes
	api := e.Group("/api")
	api.GET("/reports", listReportsHandler(cfg.Preview.Dir))
	api.GET("/segments/:report", latestSegmentsHandler(rdb, cfg.Redis.KeyPrefix))

	e.Static("/", cfg.Preview.Dir)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	logger.Log.Info("preview: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

func logLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "info":
		return log.INFO
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.WARN
	}
}
