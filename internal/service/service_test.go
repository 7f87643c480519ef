package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/catalog"
	"github.com/olegrjumin/privacyparrot/internal/explain"
	"github.com/olegrjumin/privacyparrot/internal/logging"
	"github.com/olegrjumin/privacyparrot/internal/page"
	"github.com/olegrjumin/privacyparrot/internal/source"
)

const trackedPage = `<html><head><title>News</title>
<script src="https://www.googletagmanager.com/gtag/js?id=G-1"></script>
<script src="https://connect.facebook.net/en_US/fbevents.js"></script>
</head><body><form><input type="email" name="email"></form></body></html>`

// fakeSource serves fixed markup and counts snapshots
type fakeSource struct {
	html    string
	cookies string
	err     error
	calls   atomic.Int32
	gate    chan struct{} // when set, Snapshot waits for it to close
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Snapshot(ctx context.Context, pageURL string) (*page.Snapshot, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return page.FromHTML(pageURL, f.html, f.cookies)
}

func newService(src source.Source, cacheSize int) *Service {
	engine := analysis.NewEngine(catalog.MustDefault())
	return New(engine, src, explain.MustDefault(), logging.Discard(), Options{CacheSize: cacheSize})
}

func TestAnalyze_FetchesAndMemoizes(t *testing.T) {
	src := &fakeSource{html: trackedPage, cookies: "ad_id=1; visitor=2; theme=dark"}
	svc := newService(src, 10)

	first, err := svc.Analyze(context.Background(), Request{URL: "https://news.example/"})
	require.NoError(t, err)
	assert.Len(t, first.Trackers, 2)
	assert.Equal(t, 2, first.Cookies.Tracking)

	second, err := svc.Analyze(context.Background(), Request{URL: "https://news.example/"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, svc.Cached())
}

func TestAnalyze_ReloadAndInvalidate(t *testing.T) {
	src := &fakeSource{html: trackedPage}
	svc := newService(src, 10)
	req := Request{URL: "https://news.example/", PageID: "tab-7"}

	_, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	req.Reload = true
	_, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	assert.True(t, svc.Invalidate("tab-7"))
	assert.False(t, svc.Invalidate("tab-7"))
	assert.Zero(t, svc.Cached())
}

func TestAnalyze_SuppliedHTML(t *testing.T) {
	svc := newService(nil, 10)

	result, err := svc.Analyze(context.Background(), Request{
		URL:  "https://login.example/",
		HTML: `<form><input type="password"></form><a href="/privacy">Privacy Policy</a><p>We comply with GDPR.</p>`,
	})
	require.NoError(t, err)
	assert.Equal(t, analysis.LevelLow, result.RiskLevel)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, "none", svc.SourceName())
}

func TestAnalyze_Errors(t *testing.T) {
	fetchErr := &source.SourceError{Op: "fetch", URL: "https://down.example/", Kind: source.KindNetwork, Err: errors.New("connection refused")}

	testCases := []struct {
		name      string
		src       source.Source
		req       Request
		target    error
		kind      string
		status    int
		retryable bool
	}{
		{
			name:   "missing url",
			src:    &fakeSource{},
			req:    Request{},
			target: ErrMissingURL,
			kind:   KindInvalidRequest,
			status: http.StatusBadRequest,
		},
		{
			name:   "restricted page",
			src:    &fakeSource{},
			req:    Request{URL: "chrome://settings"},
			target: analysis.ErrRestrictedPage,
			kind:   KindRestricted,
			status: http.StatusForbidden,
		},
		{
			name:   "no source",
			src:    nil,
			req:    Request{URL: "https://example.com/"},
			target: ErrNoSource,
			kind:   KindUnavailable,
			status: http.StatusServiceUnavailable,
		},
		{
			name:      "fetch failure",
			src:       &fakeSource{err: fetchErr},
			req:       Request{URL: "https://down.example/"},
			target:    fetchErr,
			kind:      source.KindNetwork,
			status:    http.StatusBadGateway,
			retryable: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(tc.src, 10)
			_, err := svc.Analyze(context.Background(), tc.req)
			require.ErrorIs(t, err, tc.target)

			info := Classify(err)
			assert.Equal(t, tc.kind, info.Kind)
			assert.Equal(t, tc.status, info.Status)
			assert.Equal(t, tc.retryable, info.Retryable)
			assert.Zero(t, svc.Cached())
		})
	}
}

func TestAnalyze_RestrictedSkipsSource(t *testing.T) {
	src := &fakeSource{html: trackedPage}
	svc := newService(src, 10)

	_, err := svc.Analyze(context.Background(), Request{URL: "https://chrome.google.com/webstore/detail/x"})
	assert.ErrorIs(t, err, analysis.ErrRestrictedPage)
	assert.Zero(t, src.calls.Load())
}

func TestAnalyze_ConcurrentRequestsShareOneSnapshot(t *testing.T) {
	src := &fakeSource{html: trackedPage, gate: make(chan struct{})}
	svc := newService(src, 10)

	const callers = 5
	results := make([]*analysis.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.Analyze(context.Background(), Request{URL: "https://news.example/"})
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	// let every caller reach the shared call before the snapshot completes
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestAnalyze_CacheDisabled(t *testing.T) {
	src := &fakeSource{html: trackedPage}
	svc := newService(src, 0)

	for i := 0; i < 2; i++ {
		_, err := svc.Analyze(context.Background(), Request{URL: "https://news.example/"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestAnalyze_CanceledCallerDoesNotFailSharedAnalysis(t *testing.T) {
	src := &fakeSource{html: trackedPage, gate: make(chan struct{})}
	svc := newService(src, 10)
	req := Request{URL: "https://news.example/"}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(firstCtx, req)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		result *analysis.Result
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		r, err := svc.Analyze(context.Background(), req)
		second <- outcome{r, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.result.Trackers, 2)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, svc.Cached())
}

func TestInvalidate_DuringAnalysis(t *testing.T) {
	src := &fakeSource{html: trackedPage, gate: make(chan struct{})}
	svc := newService(src, 10)
	req := Request{URL: "https://news.example/"}

	errs := make(chan error, 2)
	analyze := func() {
		_, err := svc.Analyze(context.Background(), req)
		errs <- err
	}

	go analyze()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	assert.False(t, svc.Invalidate(req.URL))

	// requests after the invalidation start their own analysis
	go analyze()
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, time.Millisecond)

	close(src.gate)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	// only the analysis started after the invalidation is memoized
	assert.Equal(t, 1, svc.Cached())
	assert.True(t, svc.Invalidate(req.URL))
	assert.Zero(t, svc.Cached())
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newResultCache(2)
	a, b, d := &analysis.Result{Score: 1}, &analysis.Result{Score: 2}, &analysis.Result{Score: 3}

	gen := c.current()
	assert.True(t, c.put("a", a, gen))
	assert.True(t, c.put("b", b, gen))
	_, _ = c.get("a")
	assert.True(t, c.put("d", d, gen))

	_, ok := c.get("b")
	assert.False(t, ok)
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, c.len())
}

func TestResultCache_Generations(t *testing.T) {
	testCases := []struct {
		name    string
		size    int
		remove  bool
		wantPut bool
	}{
		{name: "current generation", size: 2, wantPut: true},
		{name: "removal since start", size: 2, remove: true, wantPut: false},
		{name: "disabled", size: 0, wantPut: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newResultCache(tc.size)
			gen := c.current()
			if tc.remove {
				c.remove("other")
			}

			assert.Equal(t, tc.wantPut, c.put("page", &analysis.Result{}, gen))
			_, ok := c.get("page")
			assert.Equal(t, tc.wantPut, ok)
		})
	}
}

func TestHelpers(t *testing.T) {
	svc := newService(nil, 1)

	b, err := svc.Badge(analysis.LevelHigh)
	require.NoError(t, err)
	assert.Equal(t, "!!", b.Text)

	assert.Equal(t, explain.TierExact, svc.ExplainDataType("Email").Tier)
	assert.Equal(t, explain.TierType, svc.ExplainTracker("MediaMath", "Advertising").Tier)
	assert.True(t, svc.Graph(&analysis.Result{}).Empty)
}

func TestAnalyzeStreaming(t *testing.T) {
	svc := newService(&fakeSource{html: trackedPage}, 10)

	var stages []string
	var last StreamEvent
	for evt := range svc.AnalyzeStreaming(context.Background(), Request{URL: "https://news.example/"}) {
		stages = append(stages, evt.Stage)
		last = evt
	}

	assert.Equal(t, []string{StageStart, StageSnapshot, StageComplete}, stages)
	result, ok := last.Data.(*analysis.Result)
	require.True(t, ok)
	assert.Len(t, result.Trackers, 2)

	// memoized pages complete straight away
	stages = nil
	for evt := range svc.AnalyzeStreaming(context.Background(), Request{URL: "https://news.example/"}) {
		stages = append(stages, evt.Stage)
	}
	assert.Equal(t, []string{StageStart, StageComplete}, stages)
}

func TestAnalyzeStreaming_Error(t *testing.T) {
	svc := newService(&fakeSource{}, 10)

	var last StreamEvent
	for evt := range svc.AnalyzeStreaming(context.Background(), Request{URL: "chrome://newtab"}) {
		last = evt
	}

	assert.Equal(t, StageError, last.Stage)
	assert.Equal(t, "Privacy analysis is not available on Chrome system pages.", last.Message)
	assert.Equal(t, KindRestricted, last.Data.(ErrorInfo).Kind)
}

func TestUserMessage(t *testing.T) {
	err := &analysis.AnalysisError{Cause: errors.New("boom")}
	assert.Equal(t, "Error analyzing page: boom", UserMessage(err))
	assert.Equal(t, "url is required", UserMessage(ErrMissingURL))
	assert.Equal(t, RestrictedPageMessage, UserMessage(analysis.ErrRestrictedPage))
	assert.Equal(t, RestrictedPageMessage, UserMessage(fmt.Errorf("analyze: %w", analysis.ErrRestrictedPage)))
	assert.Equal(t, "restricted page", analysis.ErrRestrictedPage.Error())
}
