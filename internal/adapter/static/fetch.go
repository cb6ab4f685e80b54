package static

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/user/bookmeta/internal/proxy"
	"github.com/user/bookmeta/internal/repository"
)

// Fetch downloads rawURL without running any scripts. Good enough for pages
// that render server-side; expansion clicks fail with ErrNotInteractive.
func Fetch(ctx context.Context, client *resty.Client, pm *proxy.Manager, rawURL string) (*Page, error) {
	req := client.R().SetContext(ctx)
	if pm != nil {
		req.SetHeader("User-Agent", pm.GetUserAgent())
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode())
	}
	page, err := NewPage(rawURL, resp.String())
	if err != nil {
		return nil, err
	}
	page.interactive = false
	return page, nil
}

// Fetcher opens pages over plain HTTP.
type Fetcher struct {
	client  *resty.Client
	proxies *proxy.Manager
}

var _ repository.PageOpener = (*Fetcher)(nil)

func NewFetcher(timeout time.Duration, pm *proxy.Manager) *Fetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	if pm != nil {
		if p := pm.GetProxy(); p != "" {
			client.SetProxy(p)
		}
	}
	return &Fetcher{client: client, proxies: pm}
}

func (f *Fetcher) Open(ctx context.Context, rawURL string) (repository.PageReader, error) {
	return Fetch(ctx, f.client, f.proxies, rawURL)
}
