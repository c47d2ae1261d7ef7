// Package openfigi resolves ISINs to FIGI identifiers through the OpenFIGI
// v3 mapping API.
package openfigi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/httpclient"
	"github.com/Checker-Finance/refdata/internal/metrics"
	"github.com/Checker-Finance/refdata/internal/rate"
	"github.com/Checker-Finance/refdata/pkg/model"
)

const (
	DefaultBaseURL = "https://api.openfigi.com"
	ServiceName    = "openfigi"
	apiKeyHeader   = "X-OPENFIGI-APIKEY"
)

// Config holds the connection settings. APIKey is optional; without it the
// service applies its anonymous rate limits.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
}

// Client wraps the mapping endpoint.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
}

// NewClient constructs a new OpenFIGI client.
func NewClient(cfg Config, logger *zap.Logger, rateMgr *rate.Manager) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, ServiceName, func(status int, body []byte) error {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("openfigi.client_error",
			zap.Int("status", status),
			zap.String("error", errResp.Error),
			zap.String("message", errResp.Message))

		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("openfigi returned %d: %s", status, msg)
	})
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Query identifies one instrument to map. MIC narrows the search to one
// venue and is optional.
type Query struct {
	ISIN string
	MIC  string
}

// Lookup maps one ISIN. A warning from the service ("No identifier found")
// is an empty result, not an error.
// POST /v3/mapping
func (c *Client) Lookup(ctx context.Context, q Query) ([]model.GlobalIDMapping, error) {
	start := time.Now()
	defer metrics.ObserveDuration(metrics.LookupDuration, start, ServiceName)

	results, err := c.Map(ctx, []MappingJob{{IDType: "ID_ISIN", IDValue: q.ISIN, MICCode: q.MIC}})
	if err != nil {
		metrics.IncLookup(ServiceName, "error")
		return nil, err
	}
	if len(results) == 0 {
		metrics.IncLookup(ServiceName, "empty")
		return nil, nil
	}

	r := results[0]
	switch {
	case r.Error != "":
		metrics.IncLookup(ServiceName, "error")
		return nil, fmt.Errorf("openfigi mapping %s: %s", q.ISIN, r.Error)
	case r.Warning != "" || len(r.Data) == 0:
		metrics.IncLookup(ServiceName, "empty")
		c.logger.Debug("openfigi.no_match",
			zap.String("isin", q.ISIN),
			zap.String("mic", q.MIC),
			zap.String("warning", r.Warning))
		return nil, nil
	}

	out := make([]model.GlobalIDMapping, 0, len(r.Data))
	for _, d := range r.Data {
		out = append(out, d.ToMapping())
	}
	metrics.IncLookup(ServiceName, "hit")
	return out, nil
}

// Map sends a batch of mapping jobs. Results are positionally aligned.
func (c *Client) Map(ctx context.Context, jobs []MappingJob) ([]MappingResult, error) {
	data, err := json.Marshal(jobs)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mapping", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	var out []MappingResult
	if err := c.exec.DoJSON(ctx, req, ServiceName, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LookupGlobalID adapts Lookup to the enrichment interface.
func (c *Client) LookupGlobalID(ctx context.Context, isin, mic string) ([]model.GlobalIDMapping, error) {
	return c.Lookup(ctx, Query{ISIN: isin, MIC: mic})
}
