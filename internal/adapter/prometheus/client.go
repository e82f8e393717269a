package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/probeworks/slaq/internal/eval"
	"golang.org/x/sync/semaphore"
)

// Config holds Prometheus client configuration
type Config struct {
	URL            string
	BearerToken    string
	SourceLabel    string
	Timeout        time.Duration
	MaxConcurrency int64
}

// DefaultConfig returns default configuration
func DefaultConfig(prometheusURL string) Config {
	return Config{
		URL:            prometheusURL,
		Timeout:        30 * time.Second,
		MaxConcurrency: 10,
	}
}

// Client executes instant queries against a Prometheus-compatible backend.
//
// The contract is fail-soft: Query always returns a usable (possibly empty)
// row slice. A single bad poll must not crash the evaluation loop, so
// transport errors, non-2xx statuses and malformed bodies all degrade to an
// empty result with a diagnostic log entry carrying the query text.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
	sem    *semaphore.Weighted
}

// NewClient creates a new Prometheus client
func NewClient(config Config, logger *slog.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
		sem:    semaphore.NewWeighted(config.MaxConcurrency),
	}
}

// Query implements eval.Querier. The returned error reports transport or
// backend failure for data-quality accounting; rows is empty in that case
// and also when the backend simply has no matching data.
func (c *Client) Query(ctx context.Context, expr string, window eval.Window, maxResults int) ([]eval.Row, error) {
	if maxResults < 1 {
		maxResults = 1
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.logger.Warn("query slot unavailable",
			slog.String("query", expr),
			slog.Any("error", err))
		return nil, fmt.Errorf("semaphore acquire: %w", err)
	}
	defer c.sem.Release(1)

	resp, err := c.executeQuery(ctx, expr, window.End)
	if err != nil {
		c.logger.Warn("metrics backend query failed",
			slog.String("query", expr),
			slog.Time("window_start", window.Start),
			slog.Time("window_end", window.End),
			slog.Any("error", err))
		return nil, err
	}

	rows := resultRows(resp, maxResults)
	if len(rows) == 0 {
		c.logger.Warn("metrics backend returned no data",
			slog.String("query", expr),
			slog.Time("window_start", window.Start),
			slog.Time("window_end", window.End))
	}
	return rows, nil
}

// executeQuery performs a single instant query evaluated at ts
func (c *Client) executeQuery(ctx context.Context, query string, ts time.Time) (*QueryResponse, error) {
	queryURL := fmt.Sprintf("%s/api/v1/query", strings.TrimSuffix(c.config.URL, "/"))

	params := url.Values{}
	params.Add("query", query)
	params.Add("time", strconv.FormatInt(ts.Unix(), 10))

	fullURL := queryURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.config.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	}
	if c.config.SourceLabel != "" {
		req.Header.Set("X-Scope-Source", c.config.SourceLabel)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	var result QueryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("prometheus error: %s", result.Error)
	}

	return &result, nil
}

// resultRows flattens vector results into rows of label values plus the
// sample value under eval.ValueField, truncated to maxResults.
func resultRows(resp *QueryResponse, maxResults int) []eval.Row {
	if resp == nil || len(resp.Data.Result) == 0 {
		return nil
	}

	results := resp.Data.Result
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	rows := make([]eval.Row, 0, len(results))
	for _, result := range results {
		row := make(eval.Row, len(result.Metric)+1)
		for k, v := range result.Metric {
			row[k] = v
		}
		row[eval.ValueField] = result.Value.RawValue()
		rows = append(rows, row)
	}

	return rows
}
