// Command demoapi serves the in-memory grocery API for local development.
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

	"github.com/common-nighthawk/go-figure"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshcart/storefront/internal/demoapi"
	"github.com/freshcart/storefront/internal/infrastructure/config"
	"github.com/freshcart/storefront/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "demoapi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadDemo()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "demoapi"})

	store, err := demoapi.NewStore(bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	srv := demoapi.NewServer(store, demoapi.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
		OTPCode:  cfg.OTPCode,
		Log:      logger.Component(log, "demoapi"),
	})

	figure.NewFigure("demo api", "cybermedium", true).Print()
	fmt.Println()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Echo(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).
			Str("user", demoapi.DemoUserEmail).
			Str("admin", demoapi.DemoAdminEmail).
			Msg("demo api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("demo api stopped")
	return nil
}
