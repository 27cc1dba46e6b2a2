package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"zenith/internal/app"
	"zenith/internal/config"
	"zenith/internal/scheduler"
	"zenith/internal/serverapp"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	path := os.Getenv("ZENITH_CONFIG")
	if path == "" {
		path = "zenith.yml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.ApplyEnv(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	a, err := app.Build(ctx, cfg, nil, logger)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}
	defer a.Close()

	runner, err := scheduler.New(scheduler.Options{
		Engine:           a.Engine,
		Store:            a.Store,
		TickInterval:     cfg.Runtime.TickInterval,
		AutosaveInterval: cfg.Runtime.AutosaveInterval,
		RolloverCron:     cfg.Runtime.RolloverCron,
		Logger:           logger,
	})
	if err != nil {
		log.Fatalf("build scheduler: %v", err)
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:        cfg,
		Engine:        a.Engine,
		Telemetry:     a.Telemetry,
		StaticDir:     "static",
		UseDiskStatic: serverapp.UseDiskStaticByEnv(),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("listening on http://localhost%s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := <-done; err != nil {
		log.Printf("final save: %v", err)
	}
}
