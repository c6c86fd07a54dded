package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/pageflow/internal/api"
	"github.com/gyaneshwarpardhi/pageflow/internal/config"
	"github.com/gyaneshwarpardhi/pageflow/internal/engine"
	"github.com/gyaneshwarpardhi/pageflow/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the navigation HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return runServe(cmd, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, addr string) error {
	// ── Load survey ──────────────────────────────────────────────────────────
	loader, g, err := loadSurvey(cmd)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	for _, w := range config.Lint(cfg) {
		slog.Warn("survey lint", "warning", w)
	}
	slog.Info("survey loaded", "survey", cfg.Survey.ID, "pages", g.Len(), "max_depth", g.FindMaxDepth())

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()
	eng := engine.New(poolCtx, g, cfg.Engine)

	// ── Sessions ──────────────────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()
	sessions := session.NewManager(store, eng)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	eng.Follow(loader)
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(eng, loader, sessions),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr, "session_backend", cfg.Session.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	select {
	case err := <-errC:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown", "err", err)
	}
	cancelPool()
	eng.Shutdown()
	slog.Info("goodbye")
	return nil
}

// openStore returns the session store selected by conf and its closer.
func openStore(ctx context.Context, conf config.SessionConf) (session.Store, func(), error) {
	switch conf.Backend {
	case "redis":
		rs := session.NewRedisStore(conf.RedisAddr, conf.RedisPassword, conf.RedisDB,
			session.WithTTL(conf.TTL),
			session.WithPrefix(conf.KeyPrefix),
		)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", conf.RedisAddr, err)
		}
		return rs, func() { _ = rs.Close() }, nil
	case "", "memory":
		return session.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", conf.Backend)
}
