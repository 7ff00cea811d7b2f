package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/config"
	httpx "github.com/tanbro/sipxrtc-demo-trtc-web/internal/http"
)

const shutdownTimeout = 10 * time.Second

// Run wires the container, serves HTTP and shuts down on SIGINT/SIGTERM
func Run(cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	r := httpx.BuildRouter(httpx.RouterConfig{
		ApplicationRoot:  cfg.ApplicationRoot,
		IndexTemplate:    c.IndexTemplate(),
		CORSEnabled:      cfg.CORSEnabled,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	}, logger, c.Sessions, c.CallHandlers, c.PageHandlers)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
