package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-catchmail/internal/api"
	"github.com/welldanyogia/webrana-catchmail/internal/config"
	"github.com/welldanyogia/webrana-catchmail/internal/database"
	"github.com/welldanyogia/webrana-catchmail/internal/logger"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
	smtpserver "github.com/welldanyogia/webrana-catchmail/internal/smtp"
	"github.com/welldanyogia/webrana-catchmail/internal/web"
	"github.com/welldanyogia/webrana-catchmail/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(os.Stdout, cfg.LogLevel())
	slog.SetDefault(log)
	security := logger.NewSecurityLogger(log.Handler())

	log.Info("Starting catchmail server...")
	cfg.LogConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", slog.Any("error", err))
		}
	}()

	if err := database.InitSchema(ctx, db); err != nil {
		return err
	}

	repo := repository.NewEmailRepository(db)

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	retention := services.NewRetentionService(repo, services.RetentionConfig{
		RetentionMinutes: cfg.RetentionMinutes,
		Logger:           log,
	})
	intake := services.NewIntakeService(repo, retention, hub, services.IntakeConfig{
		TargetEmail: cfg.TargetEmail,
		Logger:      log,
	})
	inbox := services.NewInboxService(repo, cfg.TargetEmail)

	scheduler := services.NewRetentionScheduler(retention, services.RetentionSchedulerConfig{
		Interval: cfg.CleanupInterval,
	}, log)
	scheduler.Start()
	defer scheduler.Stop()

	renderer, err := web.NewRenderer(cfg.DisplayName, cfg.Location)
	if err != nil {
		return err
	}

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Inbox:          inbox,
		Intake:         intake,
		Sweeper:        retention,
		Hub:            hub,
		Renderer:       renderer,
		Logger:         log,
		Security:       security,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		AppEnv:         cfg.AppEnv,
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
		Done:           ctx.Done(),
	})

	smtpCfg, err := smtpserver.LoadServerConfigFromEnv(fmt.Sprintf(":%d", cfg.SMTPPort))
	if err != nil {
		return err
	}
	backend := smtpserver.NewBackend(&smtpserver.BackendConfig{
		Intake:   intake,
		Security: security,
		Logger:   log,
	})
	smtpSrv := smtpserver.NewSecureServer(backend, smtpCfg)

	errCh := make(chan error, 2)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		log.Info("HTTP server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		log.Info("SMTP server listening",
			slog.String("addr", smtpCfg.Addr),
			slog.String("domain", smtpCfg.Domain),
			slog.Bool("starttls", smtpCfg.TLSConfig != nil))
		if err := smtpSrv.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			errCh <- fmt.Errorf("smtp server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case runErr = <-errCh:
		log.Error("server failed, shutting down", slog.Any("error", runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", slog.Any("error", err))
	}
	if err := smtpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("SMTP shutdown incomplete", slog.Any("error", err))
	}

	log.Info("Server stopped")
	return runErr
}
