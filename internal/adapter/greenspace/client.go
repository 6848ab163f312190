// Package greenspace fetches postcode green-space coverage from the external
// statistics service.
package greenspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/observability"
)

// Client implements domain.GreenspaceProvider over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a green-space client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup returns the statistics for postcode. Unknown postcodes yield
// domain.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, postcode string) (domain.GreenspaceStats, error) {
	if err := domain.ValidatePostcode(postcode); err != nil {
		return domain.GreenspaceStats{}, err
	}

	u := c.baseURL + "/api/greenspace?" + url.Values{"postcode": {postcode}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.GreenspaceStats{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GreenspaceAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GreenspaceRequests.WithLabelValues("error").Inc()
		return domain.GreenspaceStats{}, fmt.Errorf("greenspace request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.GreenspaceRequests.WithLabelValues("not_found").Inc()
		return domain.GreenspaceStats{}, fmt.Errorf("postcode %s: %w", postcode, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.metrics.GreenspaceRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("greenspace service error", "postcode", postcode, "status", resp.StatusCode)
		return domain.GreenspaceStats{}, fmt.Errorf("greenspace API error: status %d: %s", resp.StatusCode, body)
	}

	var stats domain.GreenspaceStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		c.metrics.GreenspaceRequests.WithLabelValues("error").Inc()
		return domain.GreenspaceStats{}, fmt.Errorf("decode response: %w", err)
	}
	if stats.Postcode == "" {
		stats.Postcode = postcode
	}

	c.metrics.GreenspaceRequests.WithLabelValues("success").Inc()
	return stats, nil
}
