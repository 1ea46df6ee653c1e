// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tollgate/tollgate/internal/auth"
	authpg "github.com/tollgate/tollgate/internal/auth/postgres"
	"github.com/tollgate/tollgate/internal/config"
	"github.com/tollgate/tollgate/internal/httpapi"
	"github.com/tollgate/tollgate/internal/logging"
	"github.com/tollgate/tollgate/internal/observability"
	"github.com/tollgate/tollgate/internal/store"
	"github.com/tollgate/tollgate/internal/xdg"
	"github.com/tollgate/tollgate/pkg/errutil"
)

// shutdownTimeout bounds graceful shutdown of both HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API server",
		Long: `Start the authentication API server together with the
metrics/health endpoint. Shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: runServe,
	}

	cmd.Flags().String("server.addr", "", "API listen address")
	cmd.Flags().String("server.metrics_addr", "", "metrics/health HTTP address (empty = default)")
	cmd.Flags().String("server.tls_cert", "", "TLS certificate file for the API listener")
	cmd.Flags().String("server.tls_key", "", "TLS key file for the API listener")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigFile()
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("tollgate", cmd.Root().Version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	logger.Info("starting tollgate",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Server.MetricsAddr,
		"log_format", cfg.Log.Format,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	users := authpg.NewUserRepository(db.Pool())
	hasher := auth.NewArgon2idHasher()

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		AccessSecret:  []byte(cfg.Tokens.AccessSecret),
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshSecret: []byte(cfg.Tokens.RefreshSecret),
		RefreshTTL:    cfg.Tokens.RefreshTTL,
	})
	if err != nil {
		return err
	}

	creds, err := auth.NewCredentialServiceWithLogger(users, hasher, logger)
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionServiceWithLogger(creds, codec, logger)
	if err != nil {
		return err
	}
	resolver, err := auth.NewResolver(codec, users)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	obsServer := observability.NewServer(cfg.Server.MetricsAddr, ready.Load)

	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}

	apiServer, err := httpapi.NewServer(cfg.Server.Addr, creds, sessions, resolver, obsServer.Metrics(), logger)
	if err != nil {
		return err
	}
	if cfg.Server.TLSCert != "" {
		apiServer.EnableTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
	}

	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(stopCtx) //nolint:errcheck // startup error takes precedence
		return oops.Code("API_START_FAILED").Wrap(err)
	}

	ready.Store(true)

	// Block until a signal arrives or either server fails.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			errutil.LogError(logger, "api server failed", serveErr)
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			errutil.LogError(logger, "observability server failed", serveErr)
		}
	}

	ready.Store(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(stopCtx); err != nil {
		errutil.LogError(logger, "api server shutdown failed", err)
	}
	if err := obsServer.Stop(stopCtx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}

	logger.Info("tollgate stopped")
	return nil
}
