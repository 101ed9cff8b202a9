// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Command server runs the Lectern HTTP server under a suture supervisor
// tree. Configuration is loaded from defaults, an optional YAML file,
// and LECTERN_-prefixed environment variables.
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

	"github.com/dgraph-io/badger/v4"

	"github.com/lectern-app/lectern/internal/api"
	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/authz"
	"github.com/lectern-app/lectern/internal/config"
	"github.com/lectern-app/lectern/internal/logging"
	"github.com/lectern-app/lectern/internal/store"
	"github.com/lectern-app/lectern/internal/supervisor"
	"github.com/lectern-app/lectern/internal/supervisor/services"
)

// Build information, set at link time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	api.Version = version

	logging.Info().
		Str("version", version).
		Str("commit", commit).
		Str("environment", cfg.Server.Environment).
		Msg("Lectern starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Authorization: casbin grant store, role assignments from the local
	// accounts, the per-session resolver, and the guard on top.
	grants, err := authz.NewCasbinGrantStore(&authz.CasbinConfig{
		ModelPath:  cfg.Authz.ModelPath,
		PolicyPath: cfg.Authz.PolicyPath,
	})
	if err != nil {
		return fmt.Errorf("create grant store: %w", err)
	}
	for _, user := range cfg.Security.Users {
		for _, role := range user.Roles {
			if err := grants.AssignRole(user.ID, role, user.CongregationID); err != nil {
				return fmt.Errorf("assign role %q to %s: %w", role, user.Username, err)
			}
		}
	}

	resolver := authz.NewResolver(grants, &authz.ResolverConfig{
		FetchTimeout:    cfg.Authz.FetchTimeout,
		BreakerEnabled:  cfg.Authz.BreakerEnabled,
		BreakerFailures: cfg.Authz.BreakerFailures,
		BreakerTimeout:  cfg.Authz.BreakerTimeout,
	})
	guard := authz.NewGuard(resolver)

	// Authentication.
	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL)
	if err != nil {
		return fmt.Errorf("create token manager: %w", err)
	}
	users := make([]auth.User, 0, len(cfg.Security.Users))
	for _, u := range cfg.Security.Users {
		users = append(users, auth.User{
			ID:             u.ID,
			Username:       u.Username,
			CongregationID: u.CongregationID,
			PasswordHash:   u.PasswordHash,
		})
	}
	credentials := auth.NewCredentialStore(users)
	loginLimiter := auth.NewLoginLimiter(
		cfg.Security.LoginAttempts,
		cfg.Security.LoginWindow,
		cfg.Security.LoginAttempts,
	)
	defer loginLimiter.Stop()

	// Audit pipeline.
	auditStore, badgerStore, closeAudit, err := openAuditStore(cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	recorder := audit.NewRecorder(auditStore, &audit.RecorderConfig{
		Enabled:         cfg.Audit.Enabled,
		RetentionDays:   cfg.Audit.RetentionDays,
		CleanupInterval: cfg.Audit.CleanupInterval,
	})

	// Domain stores.
	handler := api.NewHandler(api.Dependencies{
		Config:       cfg,
		Guard:        guard,
		Resolver:     resolver,
		Tokens:       tokens,
		Credentials:  credentials,
		LoginLimiter: loginLimiter,
		Publishers:   store.NewMemoryPublisherStore(),
		Speakers:     store.NewMemorySpeakerStore(),
		Exceptions:   store.NewMemoryMeetingExceptionStore(),
		Recorder:     recorder,
	})
	router := api.NewRouter(handler, auth.NewMiddleware(tokens))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// Supervision.
	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	if cfg.Audit.Enabled {
		tree.AddStorageService(services.NewAuditRetentionService(
			auditStore, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval))
	}
	if badgerStore != nil {
		tree.AddStorageService(services.NewBadgerGCService(badgerStore, 10*time.Minute))
	}

	logging.Info().
		Str("addr", server.Addr).
		Str("audit_store", cfg.Audit.Store).
		Msg("Serving")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Lectern stopped")
	return nil
}

// openAuditStore builds the configured audit store. The returned close
// function is a no-op for the memory store.
func openAuditStore(cfg *config.Config) (audit.Store, *audit.BadgerStore, func(), error) {
	if cfg.Audit.Store == "memory" {
		return audit.NewMemoryStore(0), nil, func() {}, nil
	}

	opts := badger.DefaultOptions(cfg.Audit.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open audit database at %s: %w", cfg.Audit.Path, err)
	}

	badgerStore := audit.NewBadgerStore(db)
	closeFn := func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close audit database")
		}
	}
	return badgerStore, badgerStore, closeFn, nil
}
