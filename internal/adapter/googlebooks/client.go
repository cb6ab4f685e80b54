// Package googlebooks is a client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/metrics"
)

// ErrVolumeNotFound is returned for an id the catalog does not know.
var ErrVolumeNotFound = errors.New("volume not found")

// Client looks volumes up by id. No request is retried.
type Client struct {
	http    *resty.Client
	apiKey  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ repository.CatalogClient = (*Client)(nil)

func New(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: client, apiKey: apiKey, logger: logger, metrics: m}
}

// Volume fetches {base}/volumes/{id}. Any non-2xx answer is an error.
func (c *Client) Volume(ctx context.Context, id string) (*entity.CatalogVolume, error) {
	var vol entity.CatalogVolume
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&vol)
	if c.apiKey != "" {
		req.SetQueryParam("key", c.apiKey)
	}

	start := time.Now()
	resp, err := req.Get("/volumes/{id}")
	if err != nil {
		c.metrics.IncCatalogRequest("error")
		c.logger.Warn("catalog request failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("catalog volume %s: %w", id, err)
	}
	c.metrics.IncCatalogRequest(strconv.Itoa(resp.StatusCode()))
	c.logger.Debug("catalog response", zap.String("id", id), zap.Int("status", resp.StatusCode()), zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("catalog volume %s: %w", id, ErrVolumeNotFound)
	case resp.IsError():
		return nil, fmt.Errorf("catalog volume %s: unexpected status %d", id, resp.StatusCode())
	}
	if vol.ID == "" {
		vol.ID = id
	}
	return &vol, nil
}
