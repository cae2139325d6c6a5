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

	"flightshots/internal/app"
	"flightshots/internal/config"
	"flightshots/internal/i18n"
	"flightshots/internal/metrics"
	"flightshots/internal/scheduler"
	"flightshots/internal/server"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "flightshots",
		Short:        "Aviation photography community server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:       "reset <photos|feedback|config|all>",
		Short:     "Clear stored data",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"photos", "feedback", "config", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return reset(cmd.Context(), args[0])
		},
	})

	return root
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func setup(ctx context.Context) (*config.Config, *logrus.Logger, *app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	if err := i18n.Load(log); err != nil {
		return nil, nil, nil, fmt.Errorf("load locales: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return cfg, log, a, nil
}

func reset(ctx context.Context, arg string) error {
	scope, err := app.ParseResetScope(arg)
	if err != nil {
		return err
	}
	_, log, a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Reset(ctx, scope); err != nil {
		return err
	}
	log.WithField("scope", scope).Info("reset complete")
	return nil
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	m := metrics.New()

	sweeper, err := scheduler.Start(ctx, cfg.SessionSweepSchedule, a.Users, log, func(n int) {
		m.SessionsSwept.Add(float64(n))
	})
	if err != nil {
		return fmt.Errorf("start session sweeper: %w", err)
	}
	defer sweeper.Stop()

	handler := server.NewRouter(a, server.Options{
		JWTSecret:       cfg.JWTSecret,
		LoginRatePerSec: cfg.LoginRatePerSec,
		LoginBurst:      cfg.LoginBurst,
		StaticDir:       "static",
	}, m)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":    addr,
		"storage": cfg.StorageDriver,
	}).Info("server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
