package chromedp_reader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/proxy"
)

// Config tunes the browser tabs.
type Config struct {
	Headless        bool
	PageLoadTimeout time.Duration
	SettlePoll      time.Duration
	AcceptLanguage  string
	// RemoteURL attaches to an already running browser over its DevTools
	// websocket instead of launching one.
	RemoteURL string
	// Prewarm allocators created up front.
	Prewarm int
}

// Browser hands out tabs backed by pooled chromedp allocators.
type Browser struct {
	allocatorPool *sync.Pool
	cfg           Config
	proxies       *proxy.Manager
	logger        *zap.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewBrowser creates a browser using chromedp. No Chrome process starts until
// the first page is opened.
func NewBrowser(cfg Config, pm *proxy.Manager, logger *zap.Logger) *Browser {
	if cfg.PageLoadTimeout <= 0 {
		cfg.PageLoadTimeout = 60 * time.Second
	}
	if cfg.SettlePoll <= 0 {
		cfg.SettlePoll = 50 * time.Millisecond
	}
	if pm == nil {
		pm = proxy.NewManager("", "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Browser{cfg: cfg, proxies: pm, logger: logger}
	b.allocatorPool = &sync.Pool{
		New: func() interface{} {
			if cfg.RemoteURL != "" {
				// Never cancelled: that would close the tabs left open for
				// the user along with the connection.
				allocCtx, _ := chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
				return allocCtx
			}
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", cfg.Headless),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)
			if p := pm.GetProxy(); p != "" {
				opts = append(opts, chromedp.ProxyServer(p))
			}
			allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
			b.track(cancel)
			return allocCtx
		},
	}

	// Pre-warm the pool
	for i := 0; i < cfg.Prewarm; i++ {
		allocCtx := b.allocatorPool.Get().(context.Context)
		b.allocatorPool.Put(allocCtx)
	}
	return b
}

func (b *Browser) track(cancel context.CancelFunc) {
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()
}

// Remote reports whether tabs live in a browser this process did not start.
func (b *Browser) Remote() bool {
	return b != nil && b.cfg.RemoteURL != ""
}

// Open navigates a new tab to rawURL and waits for the body. The caller must
// Close the page.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Page, error) {
	allocCtx := b.allocatorPool.Get().(context.Context)
	defer b.allocatorPool.Put(allocCtx)

	tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.logger.Sugar().Debugf))

	// The first Run starts the tab; it must not carry the load timeout or the
	// tab would close with it.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start tab: %w", err)
	}

	page := &Page{ctx: tabCtx, cancel: cancel, poll: b.cfg.SettlePoll}
	loadCtx, stop := page.bind(ctx)
	defer stop()
	loadCtx, cancelLoad := context.WithTimeout(loadCtx, b.cfg.PageLoadTimeout)
	defer cancelLoad()

	start := time.Now()
	err := chromedp.Run(loadCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": b.cfg.AcceptLanguage}),
		emulation.SetUserAgentOverride(b.proxies.GetUserAgent()).WithAcceptLanguage(b.cfg.AcceptLanguage),
		chromedp.Navigate(rawURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Location(&page.location),
	)
	if err != nil {
		cancel()
		b.logger.Warn("failed to open page", zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("open %s: %w", rawURL, err)
	}
	if err := page.setURL(rawURL); err != nil {
		cancel()
		return nil, err
	}
	b.logger.Debug("page opened", zap.String("url", page.location), zap.Duration("elapsed", time.Since(start)))
	return page, nil
}

// Close shuts down every allocator the pool created.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}
