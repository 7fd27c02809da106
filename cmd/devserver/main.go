// Package main serves the in-memory FamilyCart backend for local
// development. Users are seeded through signup and every OTP is
// fakeapi.DefaultOTP.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atinyakov/familycart/internal/config"
	"github.com/atinyakov/familycart/internal/fakeapi"
	"github.com/atinyakov/familycart/internal/logger"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.ParseServer()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	store := fakeapi.NewStore()
	router := fakeapi.NewRouter(store, zapLogger)

	server := &http.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("failed to shut down server", zap.Error(err))
		}
	}()

	zapLogger.Info("starting dev server",
		zap.String("addr", options.Addr),
		zap.String("base_path", fakeapi.BasePath),
		zap.String("otp", store.OTP),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
