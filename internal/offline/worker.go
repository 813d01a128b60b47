// Package offline keeps the application shell available without a network.
// A Worker pre-fetches the shell into a versioned cache on install, drops
// stale versions on activate and then answers requests cache-first.
package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotInstalled is returned by Activate when the current cache version has
// never been installed.
var ErrNotInstalled = errors.New("offline cache not installed")

// DefaultCacheName is the current cache version. Bump it when the shell changes.
const DefaultCacheName = "box-breathing-cache-v3"

// DefaultAssets lists everything the application needs to run offline.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/script.js",
	"/manifest.json",
	"/icons/icon-192x192.png",
	"/icons/icon-512x512.png",
}

// Fetcher performs network requests. *http.Client satisfies it.
type Fetcher interface {
	Do(request *http.Request) (*http.Response, error)
}

// CacheStore persists named caches.
type CacheStore interface {
	PutAll(ctx context.Context, cacheName string, entries []Entry) error
	Match(ctx context.Context, cacheName, key string) (Entry, error)
	CacheNames(ctx context.Context) ([]string, error)
	DeleteCache(ctx context.Context, cacheName string) error
}

// Config contains the cache version and the shell to keep offline.
type Config struct {
	CacheName string
	Origin    *url.URL
	Assets    []string
	EntryPage string
}

// Worker serves the application shell cache-first.
type Worker struct {
	mu      sync.RWMutex
	config  Config
	store   CacheStore
	network Fetcher
	logger  *slog.Logger
	active  bool
}

// NewWorker creates a Worker. Empty config fields take the defaults.
func NewWorker(config Config, store CacheStore, network Fetcher, logger *slog.Logger) *Worker {
	if config.CacheName == "" {
		config.CacheName = DefaultCacheName
	}
	if len(config.Assets) == 0 {
		config.Assets = DefaultAssets
	}
	if config.EntryPage == "" {
		config.EntryPage = "/"
	}
	if network == nil {
		network = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		config:  config,
		store:   store,
		network: network,
		logger:  logger,
	}
}

// Install fetches every asset from the network, bypassing HTTP caches, and
// stores them in the current cache. Nothing is stored if any asset fails.
func (worker *Worker) Install(ctx context.Context) error {
	worker.logger.Info("installing offline cache", "cache", worker.config.CacheName, "assets", len(worker.config.Assets))

	entries := make([]Entry, 0, len(worker.config.Assets))
	for _, asset := range worker.config.Assets {
		entry, err := worker.fetchAsset(ctx, asset)
		if err != nil {
			return fmt.Errorf("install %s: %w", worker.config.CacheName, err)
		}
		entries = append(entries, entry)
	}

	if err := worker.store.PutAll(ctx, worker.config.CacheName, entries); err != nil {
		return fmt.Errorf("install %s: %w", worker.config.CacheName, err)
	}
	worker.logger.Info("offline cache installed", "cache", worker.config.CacheName)
	return nil
}

// Activate deletes every cache whose name is not the current version and
// starts answering requests from the cache.
func (worker *Worker) Activate(ctx context.Context) error {
	names, err := worker.store.CacheNames(ctx)
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}

	installed := false
	for _, name := range names {
		if name == worker.config.CacheName {
			installed = true
		}
	}
	if !installed {
		return ErrNotInstalled
	}

	for _, name := range names {
		if name == worker.config.CacheName {
			continue
		}
		worker.logger.Info("deleting stale cache", "cache", name)
		if err := worker.store.DeleteCache(ctx, name); err != nil {
			return fmt.Errorf("activate: %w", err)
		}
	}

	worker.mu.Lock()
	worker.active = true
	worker.mu.Unlock()
	worker.logger.Info("offline cache active", "cache", worker.config.CacheName)
	return nil
}

// Active reports whether requests are answered from the cache.
func (worker *Worker) Active() bool {
	worker.mu.RLock()
	defer worker.mu.RUnlock()
	return worker.active
}

// ServeHTTP answers GET requests from the cache when possible. Navigation
// requests that miss fall back to the cached entry page whatever their query
// string. Everything else goes to the network; if that fails too a synthetic
// 503 is returned.
func (worker *Worker) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet || !worker.Active() {
		worker.forward(writer, request)
		return
	}

	ctx := request.Context()
	if entry, ok := worker.match(ctx, cacheKey(request.URL)); ok {
		writeEntry(writer, entry)
		return
	}

	if isNavigation(request) {
		for _, key := range []string{request.URL.EscapedPath(), worker.config.EntryPage} {
			if entry, ok := worker.match(ctx, key); ok {
				writeEntry(writer, entry)
				return
			}
		}
	}

	worker.forward(writer, request)
}

func (worker *Worker) match(ctx context.Context, key string) (Entry, bool) {
	entry, err := worker.store.Match(ctx, worker.config.CacheName, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			worker.logger.Warn("cache lookup failed", "key", key, "error", err)
		}
		return Entry{}, false
	}
	return entry, true
}

func (worker *Worker) fetchAsset(ctx context.Context, asset string) (Entry, error) {
	target, err := worker.resolve(asset)
	if err != nil {
		return Entry{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Entry{}, fmt.Errorf("build request for %s: %w", asset, err)
	}
	request.Header.Set("Cache-Control", "no-cache")
	request.Header.Set("Pragma", "no-cache")

	response, err := worker.network.Do(request)
	if err != nil {
		return Entry{}, fmt.Errorf("fetch %s: %w", asset, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return Entry{}, fmt.Errorf("fetch %s: unexpected status %d", asset, response.StatusCode)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", asset, err)
	}

	return Entry{
		Key:    cacheKey(target),
		Status: response.StatusCode,
		Header: cacheableHeader(response.Header),
		Body:   body,
	}, nil
}

func (worker *Worker) forward(writer http.ResponseWriter, request *http.Request) {
	target, err := worker.resolve(request.URL.RequestURI())
	if err != nil {
		writeNetworkError(writer)
		return
	}

	outbound, err := http.NewRequestWithContext(request.Context(), request.Method, target.String(), request.Body)
	if err != nil {
		writeNetworkError(writer)
		return
	}
	outbound.Header = request.Header.Clone()

	response, err := worker.network.Do(outbound)
	if err != nil {
		worker.logger.Warn("network fetch failed", "url", target.String(), "error", err)
		writeNetworkError(writer)
		return
	}
	defer response.Body.Close()

	for name, values := range response.Header {
		for _, value := range values {
			writer.Header().Add(name, value)
		}
	}
	writer.WriteHeader(response.StatusCode)
	if _, err := io.Copy(writer, response.Body); err != nil {
		worker.logger.Debug("copy network response", "url", target.String(), "error", err)
	}
}

func (worker *Worker) resolve(reference string) (*url.URL, error) {
	if worker.config.Origin == nil {
		return nil, errors.New("no origin configured")
	}
	parsed, err := url.Parse(reference)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", reference, err)
	}
	return worker.config.Origin.ResolveReference(parsed), nil
}

// cacheKey identifies a request by path and query, ignoring scheme and host.
func cacheKey(target *url.URL) string {
	key := target.EscapedPath()
	if key == "" {
		key = "/"
	}
	if target.RawQuery != "" {
		key += "?" + target.RawQuery
	}
	return key
}

func isNavigation(request *http.Request) bool {
	if mode := request.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(request.Header.Get("Accept"), "text/html")
}

var hopHeaders = []string{"Connection", "Keep-Alive", "Transfer-Encoding", "Set-Cookie", "Date"}

func cacheableHeader(header http.Header) http.Header {
	clone := header.Clone()
	for _, name := range hopHeaders {
		clone.Del(name)
	}
	return clone
}

func writeEntry(writer http.ResponseWriter, entry Entry) {
	for name, values := range entry.Header {
		for _, value := range values {
			writer.Header().Add(name, value)
		}
	}
	writer.Header().Set("X-Boxbreath-Cache", "hit")
	writer.WriteHeader(entry.Status)
	_, _ = io.Copy(writer, bytes.NewReader(entry.Body))
}

func writeNetworkError(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(http.StatusServiceUnavailable)
	_, _ = io.WriteString(writer, "network error\n")
}
