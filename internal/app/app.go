// Package app wires configuration, storage, and the HTTP surfaces into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freedomgate/portal/internal/config"
	"github.com/freedomgate/portal/internal/db"
	adminapi "github.com/freedomgate/portal/internal/http/api/admin"
	"github.com/freedomgate/portal/internal/http/api/front"
	"github.com/freedomgate/portal/internal/ratelimit"
	"github.com/freedomgate/portal/internal/subscription"
)

// shutdownGrace bounds how long in-flight requests may run after a stop signal.
const shutdownGrace = 10 * time.Second

// NewEngine builds the gin engine with all routes registered.
func NewEngine(conn *gorm.DB, cfg config.Config) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	limiter := ratelimit.NewManager(cfg.RateLimit, nil)
	front.RegisterFrontRoutes(engine, conn, cfg, limiter)
	adminapi.RegisterAdminRoutes(engine, conn, cfg, limiter)
	return engine
}

// RunServer opens the database, migrates, and serves until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	subscription.NewSweeper(conn).Start(sweepCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: NewEngine(conn, cfg),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// requestLogger emits one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}).Info("request")
	}
}
