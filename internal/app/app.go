// Package app wires configuration into a ready service for the binaries.
package app

import (
	"fmt"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/catalog"
	"github.com/olegrjumin/privacyparrot/internal/config"
	"github.com/olegrjumin/privacyparrot/internal/explain"
	"github.com/olegrjumin/privacyparrot/internal/httpclient"
	"github.com/olegrjumin/privacyparrot/internal/logging"
	"github.com/olegrjumin/privacyparrot/internal/service"
	"github.com/olegrjumin/privacyparrot/internal/source"
)

// App holds the wired components
type App struct {
	Service *service.Service
	Store   *explain.Store
	Catalog *catalog.Catalog

	pool *source.BrowserPool
}

// New builds the service described by cfg
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	store, err := explain.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load explanations: %w", err)
	}

	prefixes := make([]string, 0, len(analysis.DefaultRestrictedPrefixes)+len(cfg.RestrictedPrefixes))
	prefixes = append(prefixes, analysis.DefaultRestrictedPrefixes...)
	prefixes = append(prefixes, cfg.RestrictedPrefixes...)
	engine := analysis.NewEngine(cat, analysis.WithRestrictedPrefixes(prefixes))

	a := &App{Store: store, Catalog: cat}

	var src source.Source
	if cfg.UseBrowser {
		a.pool = source.NewBrowserPool(cfg.BrowserPoolSize, cfg.DefaultUserAgent)
		src = source.NewBrowser(a.pool, cfg.BrowserTimeout)
	} else {
		client := httpclient.NewClient(httpclient.Options{
			MaxRedirects: cfg.MaxRedirects,
			MaxBodyBytes: cfg.MaxBodyBytes,
			UserAgent:    cfg.DefaultUserAgent,
		})
		src = source.NewFetcher(client, cfg.FetchTimeout)
	}

	a.Service = service.New(engine, src, store, logger, service.Options{CacheSize: cfg.CacheSize})
	logger.Info("Service ready",
		"source", src.Name(),
		"cache_size", cfg.CacheSize,
		"restricted_prefixes", len(prefixes),
		"catalog", catalogName(cfg.CatalogPath),
	)
	return a, nil
}

// Close releases browser processes, if any were started
func (a *App) Close() error {
	if a.pool != nil {
		return a.pool.Close()
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func catalogName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
