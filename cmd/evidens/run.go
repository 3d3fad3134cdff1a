package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/config"
	"github.com/dev-Pau/evidens/internal/contentapi"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/identity"
	"github.com/dev-Pau/evidens/internal/localstore"
	"github.com/dev-Pau/evidens/internal/log"
	"github.com/dev-Pau/evidens/internal/tui"
)

// localUserID is the signed-in user of the embedded backend
const localUserID = "local-user"

func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setupLogger falls back to a null logger if the log file can't be opened
func setupLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	logger, closer, err := log.Setup(&cfg.Logging)
	if err != nil {
		return log.NullLogger(), io.NopCloser(nil)
	}
	return logger, closer
}

// backend is the content service plus whatever must be closed on exit
type backend struct {
	service  domain.ContentService
	identity domain.Identity
	close    func() error
}

func openBackend(cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend.Type {
	case config.BackendRemote:
		user, err := identity.FromToken(cfg.Server.Token)
		if err != nil {
			return nil, fmt.Errorf("invalid token, run setup again: %w", err)
		}
		if user.Expired(time.Now()) {
			return nil, fmt.Errorf("token expired, run setup again: %w", domain.ErrAuthFailed)
		}
		client := contentapi.NewClient(cfg.Server.URL, cfg.Server.Token, cfg.Sync.RequestTimeout, logger)
		return &backend{service: client, identity: user, close: func() error { return nil }}, nil

	case config.BackendLocal:
		store, err := localstore.Open(cfg.Backend.DBPath, localUserID, logger)
		if err != nil {
			return nil, err
		}
		if _, err := store.SeedDemo(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed local store: %w", err)
		}
		return &backend{service: store, identity: identity.Static(localUserID), close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
}

// serveMetrics exposes the prometheus registry until ctx is done
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "error", err)
		}
	}()
}

func run(dir string) error {
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	logger, closer := setupLogger(cfg)
	defer closer.Close()
	slog.SetDefault(logger)

	logger.Info("starting evidens", "version", Version, "backend", cfg.Backend.Type)

	if !cfg.IsConfigured() {
		return fmt.Errorf("not configured, run `evidens setup` first")
	}

	be, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Enabled {
		serveMetrics(ctx, cfg.Metrics.Addr, logger)
	}

	model := tui.NewModel(ctx, bus.New(logger), be.service, be.identity, tui.Settings{
		PageSize:          cfg.Sync.PageSize,
		PrefetchThreshold: cfg.Sync.PrefetchThreshold,
		RequestTimeout:    cfg.Sync.RequestTimeout,
		DefaultTab:        cfg.UI.DefaultTab,
	}, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
