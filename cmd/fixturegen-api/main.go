package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmrzaf/fixturegen/internal/api"
	"github.com/mmrzaf/fixturegen/internal/app"
	"github.com/mmrzaf/fixturegen/internal/config"
	"github.com/mmrzaf/fixturegen/internal/logging"
)

func main() {
	configFile := flag.String("config", "", "Config file (yaml or json)")
	bindAddr := flag.String("bind", "", "Bind address (overrides bind_addr)")
	logLevel := flag.String("log-level", "", "Log level (overrides log_level)")
	flag.Parse()

	var opts []config.Option
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		logging.NewLogger("error").Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "config"})
		os.Exit(1)
	}
	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr).WithComponent("api_main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.NewService(ctx, cfg, logger)
	if err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "init_service"})
		os.Exit(1)
	}
	for _, c := range svc.Collisions() {
		logger.Warnw("startup.fixture_overridden", map[string]any{"fixture": c.Name, "previous": c.Previous, "file": c.File})
	}

	mux := http.NewServeMux()
	api.NewHandler(svc).Routes(mux)

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.LoggingMiddleware(logger.WithComponent("http"), mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("startup.listening", map[string]any{
		"bind":   cfg.BindAddr,
		"target": cfg.Target.Kind,
		"dsn":    app.RedactDSN(cfg.Target.Kind, cfg.Target.DSN),
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "listen"})
		_ = svc.Close()
		os.Exit(1)
	}

	if err := svc.Close(); err != nil {
		logger.Warnw("shutdown.close_failed", map[string]any{"error": err.Error()})
	}
	logger.Infow("shutdown.complete", nil)
}
