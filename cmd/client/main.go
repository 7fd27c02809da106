// Package main runs the FamilyCart interactive client.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/client/notify"
	"github.com/atinyakov/familycart/internal/client/screens"
	"github.com/atinyakov/familycart/internal/client/session"
	"github.com/atinyakov/familycart/internal/client/shell"
	"github.com/atinyakov/familycart/internal/client/storage"
	"github.com/atinyakov/familycart/internal/config"
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
	options := config.Parse()

	fmt.Printf("FamilyCart %s (%s)\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := storage.Open(ctx, options.StoreDSN, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot open state store", zap.String("store", options.StoreDSN), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			zapLogger.Error("failed to close state store", zap.Error(err))
		}
	}()
	tokens := storage.NewTokenStore(kv)

	httpClient, err := api.NewHTTPClient(options.CAFile)
	if err != nil {
		zapLogger.Fatal("cannot build http client", zap.Error(err))
	}

	deps := screens.Deps{
		API:     api.New(httpClient, options.APIURL, options.APIBasePath, zapLogger),
		Tokens:  tokens,
		Session: session.New(kv, tokens),
		Notify:  notify.New(options.NotifyTTL),
		Log:     zapLogger,
	}

	zapLogger.Debug("starting shell", zap.String("api", options.APIURL))
	if err := shell.New(deps, os.Stdin, os.Stdout).Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}
