package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/app"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/config"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("app", zap.Error(err))
	}
}
