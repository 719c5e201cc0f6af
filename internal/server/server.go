// Package server exposes the ledger over HTTP for the web UI.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/config"
	"github.com/Vivianhuwz/cobrancayb/internal/importer"
	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
	"github.com/Vivianhuwz/cobrancayb/internal/syncer"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Provide(func(svc receivabledomain.Service, log *zap.Logger) *importer.Importer {
		return importer.New(svc, log)
	}),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// requestLogger emits one structured line per request after it finishes.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	svc      receivabledomain.Service
	sched    *syncer.Scheduler
	importer *importer.Importer
}

type ServerParams struct {
	fx.In

	Engine   *gin.Engine
	Cfg      config.Config
	Svc      receivabledomain.Service
	Sched    *syncer.Scheduler
	Importer *importer.Importer
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:   p.Engine,
		cfg:      p.Cfg,
		svc:      p.Svc,
		sched:    p.Sched,
		importer: p.Importer,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/records", s.ListRecords)
	api.POST("/records", s.CreateRecord)
	api.GET("/records/summary", s.RecordsSummary)
	api.PUT("/records/:id", s.UpdateRecord)
	api.POST("/records/:id/payments", s.AddPayment)
	api.PATCH("/records/:id/archive", s.SetArchived)
	api.DELETE("/records/:id", s.DeleteRecord)

	api.POST("/sync/push", s.SyncPush)
	api.POST("/sync/pull", s.SyncPull)
	api.GET("/sync/status", s.SyncStatus)
	api.POST("/sync/enable", s.SyncEnable)

	api.GET("/integrity/violations", s.ListViolations)
	api.POST("/import", s.ImportRecords)
}
