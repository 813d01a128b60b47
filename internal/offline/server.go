package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures the offline shell server.
type ServerConfig struct {
	Addr         string        `env:"BOXBREATH_ADDR" envDefault:"127.0.0.1:8080"`
	Origin       string        `env:"BOXBREATH_ORIGIN"`
	CacheDB      string        `env:"BOXBREATH_CACHE_DB"`
	CacheName    string        `env:"BOXBREATH_CACHE_NAME" envDefault:"box-breathing-cache-v3"`
	FetchTimeout time.Duration `env:"BOXBREATH_FETCH_TIMEOUT" envDefault:"10s"`
}

// LoadServerConfig reads the server configuration from the environment.
func LoadServerConfig() (ServerConfig, error) {
	var config ServerConfig
	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("parse env: %w", err)
	}
	return config, nil
}

// DefaultCacheDB returns the cache database path under the user cache dir.
func DefaultCacheDB(appName string) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(cacheDir, appName, "offline.db"), nil
}

// Serve installs and activates the offline cache, then serves the shell on
// config.Addr until ctx is cancelled. A failed install is logged, not fatal:
// a previously installed cache of the same version keeps serving.
func Serve(ctx context.Context, config ServerConfig, logger *slog.Logger) error {
	if config.Origin == "" {
		return errors.New("serve: origin is required")
	}
	origin, err := url.Parse(config.Origin)
	if err != nil {
		return fmt.Errorf("serve: parse origin: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(config.CacheDB), 0o755); err != nil {
		return fmt.Errorf("serve: create cache directory: %w", err)
	}

	store, err := NewSQLiteStore(config.CacheDB, logger)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer store.Close()

	worker := NewWorker(Config{CacheName: config.CacheName, Origin: origin}, store,
		&http.Client{Timeout: config.FetchTimeout}, logger)

	if err := worker.Install(ctx); err != nil {
		logger.Error("offline cache install failed", "error", err)
	}
	if err := worker.Activate(ctx); err != nil {
		logger.Warn("offline cache not active, passing requests to network", "error", err)
	}

	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return fmt.Errorf("serve: listen on %s: %w", config.Addr, err)
	}
	server := &http.Server{
		Handler:           worker,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving offline shell", "addr", listener.Addr().String(), "origin", origin.String())
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: shutdown: %w", err)
		}
		return nil
	}
}
