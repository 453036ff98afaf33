package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"registrar-portal/backend/internal/auth"
	"registrar-portal/backend/internal/config"
	"registrar-portal/backend/internal/httpapi"
	"registrar-portal/backend/internal/logging"
	"registrar-portal/backend/internal/mailer"
	"registrar-portal/backend/internal/qrcode"
	"registrar-portal/backend/internal/store"
	"registrar-portal/backend/internal/store/memory"
	"registrar-portal/backend/internal/store/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st    store.Store
		state store.StateStore
	)
	if cfg.DatabaseURL != "" {
		if cfg.AutoMigrate {
			if err := postgres.Migrate(rootCtx, cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info(rootCtx, "database migrations applied")
		}
		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("init postgres store: %w", err)
		}
		defer pg.Close()
		st = pg
		if cfg.StateBackend == "postgres" {
			state = pg
		}
		log.Info(rootCtx, "using postgres store", "state_backend", cfg.StateBackend)
	} else {
		mem := memory.NewStore()
		st = mem
		state = mem
		log.Warn(rootCtx, "no database configured, using memory store")
	}
	if state == nil {
		state = memory.NewStore()
	}

	var mail mailer.Mailer
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	} else {
		mail = mailer.LogMailer{Log: log}
		log.Warn(rootCtx, "smtp credentials missing, mail is logged only")
	}

	var qrStore qrcode.Storage
	if cfg.QRS3.Enabled() {
		s3Store, err := qrcode.NewS3Storage(rootCtx, qrcode.S3Options{
			Bucket:    cfg.QRS3.Bucket,
			Region:    cfg.QRS3.Region,
			Endpoint:  cfg.QRS3.Endpoint,
			AccessKey: cfg.QRS3.AccessKey,
			SecretKey: cfg.QRS3.SecretKey,
		})
		if err != nil {
			return fmt.Errorf("init qr bucket: %w", err)
		}
		qrStore = s3Store
	} else {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
		qrStore = qrcode.LocalStorage{Dir: cfg.UploadDir}
	}

	if cfg.JWTSecret == "" {
		log.Warn(rootCtx, "JWT_SECRET not set, tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, auth.TokenTTL)
	if err != nil {
		return err
	}

	svc, err := auth.NewService(auth.Options{
		Store:               st,
		State:               state,
		Mailer:              mail,
		Tokens:              tokens,
		QR:                  qrcode.NewGenerator(cfg.FrontendBaseURL, qrStore),
		Log:                 log,
		ResetLockoutOnLogin: cfg.ResetLockoutOnLogin,
	})
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, svc, log)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sweeper := &auth.Sweeper{
		State:     state,
		Interval:  cfg.SweepInterval(),
		Retention: cfg.LockoutRetention(),
		Log:       log,
	}

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		return sweeper.Run(ctx)
	})
	g.Go(func() error {
		log.Info(ctx, "backend listening", "addr", cfg.ListenAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info(context.Background(), "shutdown requested")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctxShutdown)
	})

	return g.Wait()
}
