package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/badge"
	"github.com/olegrjumin/privacyparrot/internal/explain"
	"github.com/olegrjumin/privacyparrot/internal/graph"
	"github.com/olegrjumin/privacyparrot/internal/logging"
	"github.com/olegrjumin/privacyparrot/internal/page"
	"github.com/olegrjumin/privacyparrot/internal/source"
)

var (
	// ErrMissingURL is returned when a request names no page
	ErrMissingURL = errors.New("url is required")

	// ErrNoSource is returned when a page must be fetched but no source is configured
	ErrNoSource = errors.New("no snapshot source configured")
)

// Request asks for the analysis of one page
type Request struct {
	URL     string
	HTML    string // Page markup supplied by the caller; skips the source when set
	Cookies string // Cookie string accompanying HTML
	PageID  string // Memo key; defaults to URL
	Reload  bool   // Drop the memoized result first, as a page reload does
}

// key returns the memo key of the request
func (r Request) key() string {
	if r.PageID != "" {
		return r.PageID
	}
	return strings.TrimSpace(r.URL)
}

// Options configures a Service
type Options struct {
	CacheSize int // Memoized results kept; 0 disables the memo
}

// Service provides the business logic layer for page analysis
// It sits between the transport layers and the analysis engine
type Service struct {
	engine  *analysis.Engine
	source  source.Source
	store   *explain.Store
	graphs  *graph.Builder
	logger  *logging.Logger
	results *resultCache
	group   singleflight.Group
}

// New creates a new Service instance. src may be nil when every request
// carries its own HTML.
func New(engine *analysis.Engine, src source.Source, store *explain.Store, logger *logging.Logger, opts Options) *Service {
	return &Service{
		engine:  engine,
		source:  src,
		store:   store,
		graphs:  graph.NewBuilder(store),
		logger:  logger,
		results: newResultCache(opts.CacheSize),
	}
}

// SourceName names the snapshot source in use
func (s *Service) SourceName() string {
	if s.source == nil {
		return "none"
	}
	return s.source.Name()
}

// Cached returns the number of memoized results
func (s *Service) Cached() int {
	return s.results.len()
}

// Analyze returns the analysis of a page, computing it at most once per
// page key until the key is invalidated. Concurrent requests for the same key
// share one computation.
func (s *Service) Analyze(ctx context.Context, req Request) (*analysis.Result, error) {
	log := s.logger.FromContext(ctx)

	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrMissingURL
	}
	if err := s.engine.CheckRestricted(req.URL); err != nil {
		log.Info("Refused restricted page", "url", req.URL)
		return nil, err
	}

	key := req.key()
	if req.Reload {
		s.Invalidate(key)
	}
	if result, ok := s.results.get(key); ok {
		log.Info("Analysis served from memo", "page", key, "risk", result.RiskLevel)
		return result, nil
	}

	// The shared analysis outlives any single caller; each caller still
	// stops waiting when its own context ends.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.analyze(context.WithoutCancel(ctx), req)
	})

	select {
	case <-ctx.Done():
		log.Info("Caller stopped waiting for analysis", "page", key, "error", ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Info("Analysis shared with concurrent request", "page", key)
		}
		return res.Val.(*analysis.Result), nil
	}
}

// analyze snapshots the page, runs the engine and memoizes the result
func (s *Service) analyze(ctx context.Context, req Request) (*analysis.Result, error) {
	log := s.logger.FromContext(ctx)
	start := time.Now()
	gen := s.results.current()

	snap, err := s.snapshot(ctx, req)
	if err != nil {
		log.Error("Snapshot failed", "url", req.URL, "source", s.sourceFor(req), "error", err)
		return nil, err
	}

	result, err := s.engine.Analyze(snap)
	if err != nil {
		log.Error("Analysis failed", "url", req.URL, "error", err)
		return nil, err
	}

	if !s.results.put(req.key(), result, gen) {
		log.Info("Analysis not memoized", "page", req.key())
	}

	log.Info("Analysis completed",
		"url", req.URL,
		"source", s.sourceFor(req),
		"risk", result.RiskLevel,
		"score", result.Score,
		"trackers", len(result.Trackers),
		"companies", len(result.DataSharing.DataCompanies),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (s *Service) snapshot(ctx context.Context, req Request) (*page.Snapshot, error) {
	if req.HTML != "" {
		return source.Static(req.URL, req.HTML, req.Cookies)
	}
	if s.source == nil {
		return nil, ErrNoSource
	}
	return s.source.Snapshot(ctx, req.URL)
}

func (s *Service) sourceFor(req Request) string {
	if req.HTML != "" {
		return "supplied"
	}
	return s.SourceName()
}

// Invalidate forgets the memoized result of a page. An analysis of the page
// already in flight is detached so later requests start a fresh one, and its
// result is not memoized.
func (s *Service) Invalidate(key string) bool {
	s.group.Forget(key)
	return s.results.remove(key)
}

// Badge returns the toolbar badge for a risk level
func (s *Service) Badge(level analysis.Level) (badge.Badge, error) {
	return badge.For(level)
}

// ExplainDataType looks up the explanation of a collected data type
func (s *Service) ExplainDataType(name string) explain.Lookup {
	return s.store.DataType(name)
}

// ExplainTracker looks up the explanation of a tracker
func (s *Service) ExplainTracker(name, trackerType string) explain.Lookup {
	return s.store.Tracker(name, trackerType)
}

// Graph builds the data-sharing graph of a result
func (s *Service) Graph(result *analysis.Result) *graph.Graph {
	return s.graphs.Build(result)
}
