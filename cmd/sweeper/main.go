package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/config"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/logger"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/repository"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/security"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/service"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, closeStore, err := repository.NewSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize session store", "error", err)
	}
	defer closeStore()

	codec := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := security.NewBcryptHasher(cfg.Session.BcryptCost)

	sessionService := service.NewSessionService(codec, store, hasher, cfg.Session.TTL, logger)
	sweeper := service.NewSweeper(sessionService, cfg.Sweeper.Interval, logger.With("component", "sweeper"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting session sweeper",
			"store", cfg.Session.Store,
			"interval", cfg.Sweeper.Interval.String())
		sweeper.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
