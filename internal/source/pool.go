package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// maxInstanceErrors is the number of failed renders before a browser is replaced
const maxInstanceErrors = 3

// BrowserInstance is one headless browser process in the pool
type BrowserInstance struct {
	ctx        context.Context
	cancel     context.CancelFunc
	inUse      bool
	healthy    bool
	lastUsed   time.Time
	errorCount int
}

// Context returns the browser context; renders open a tab under it
func (b *BrowserInstance) Context() context.Context {
	return b.ctx
}

// BrowserPool hands out headless browsers, starting them on first use
type BrowserPool struct {
	instances []*BrowserInstance
	mu        sync.Mutex
	size      int
	opts      []chromedp.ExecAllocatorOption
	start     func(opts []chromedp.ExecAllocatorOption) (*BrowserInstance, error)
}

// NewBrowserPool creates a pool of at most size browsers. No browser starts
// until the first Acquire.
func NewBrowserPool(size int, userAgent string) *BrowserPool {
	if size <= 0 {
		size = 2
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(1280, 800),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if path := findChromePath(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	return &BrowserPool{
		instances: make([]*BrowserInstance, 0, size),
		size:      size,
		opts:      opts,
		start:     startInstance,
	}
}

// startInstance launches a browser process and waits until it answers
func startInstance(opts []chromedp.ExecAllocatorOption) (*BrowserInstance, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, err
	}

	return &BrowserInstance{
		ctx: ctx,
		cancel: func() {
			cancel()
			allocCancel()
		},
		healthy:  true,
		lastUsed: time.Now(),
	}, nil
}

// Acquire returns an idle healthy browser, replacing a broken one or starting
// a new one while the pool is below size. It fails fast when all are busy.
func (p *BrowserPool) Acquire(ctx context.Context) (*BrowserInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, instance := range p.instances {
		if !instance.inUse && instance.healthy {
			instance.inUse = true
			instance.lastUsed = time.Now()
			return instance, nil
		}
	}

	for i, instance := range p.instances {
		if instance.inUse || instance.healthy {
			continue
		}
		if instance.cancel != nil {
			instance.cancel()
		}
		fresh, err := p.start(p.opts)
		if err != nil {
			return nil, fmt.Errorf("failed to restart browser: %w", err)
		}
		fresh.inUse = true
		p.instances[i] = fresh
		return fresh, nil
	}

	if len(p.instances) < p.size {
		fresh, err := p.start(p.opts)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fresh.inUse = true
		p.instances = append(p.instances, fresh)
		return fresh, nil
	}

	return nil, ErrBrowserUnavailable
}

// Release returns a browser instance to the pool
func (p *BrowserPool) Release(instance *BrowserInstance) {
	if instance == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	instance.inUse = false
	instance.lastUsed = time.Now()
}

// MarkUnhealthy records a failed render; the instance is replaced after repeated failures
func (p *BrowserPool) MarkUnhealthy(instance *BrowserInstance) {
	if instance == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	instance.errorCount++
	if instance.errorCount >= maxInstanceErrors {
		instance.healthy = false
	}
}

// Close shuts down all browser instances in the pool
func (p *BrowserPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, instance := range p.instances {
		if instance.cancel != nil {
			instance.cancel()
		}
	}

	p.instances = nil
	return nil
}

// Health reports idle and started browsers against the pool limit
func (p *BrowserPool) Health() (available, started, size int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, instance := range p.instances {
		if !instance.inUse && instance.healthy {
			available++
		}
	}
	return available, len(p.instances), p.size
}

func findChromePath() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		return path
	}

	paths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
