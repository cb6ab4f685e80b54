// Package httpprobe measures remote images by decoding only their headers.
package httpprobe

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"

	"github.com/user/bookmeta/internal/proxy"
	"github.com/user/bookmeta/internal/repository"
)

type Prober struct {
	client  *resty.Client
	proxies *proxy.Manager
}

var _ repository.ImageProber = (*Prober)(nil)

// New creates a prober whose requests give up after timeout.
func New(timeout time.Duration, pm *proxy.Manager) *Prober {
	client := resty.New()
	client.SetTimeout(timeout)
	if pm != nil {
		if p := pm.GetProxy(); p != "" {
			client.SetProxy(p)
		}
	}
	return &Prober{client: client, proxies: pm}
}

// Probe returns width*height of the image at url.
func (p *Prober) Probe(ctx context.Context, url string) (int, error) {
	req := p.client.R().SetContext(ctx).SetDoNotParseResponse(true)
	if p.proxies != nil {
		req.SetHeader("User-Agent", p.proxies.GetUserAgent())
	}
	resp, err := req.Get(url)
	if err != nil {
		return 0, err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return 0, fmt.Errorf("probe %s: unexpected status %d", url, resp.StatusCode())
	}
	cfg, _, err := image.DecodeConfig(body)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", url, err)
	}
	return cfg.Width * cfg.Height, nil
}
