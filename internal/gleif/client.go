// Package gleif fetches legal-entity records from the GLEIF LEI API.
package gleif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/httpclient"
	"github.com/Checker-Finance/refdata/internal/metrics"
	"github.com/Checker-Finance/refdata/internal/rate"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

const (
	DefaultBaseURL = "https://api.gleif.org"
	ServiceName    = "gleif"
)

var leiPattern = regexp.MustCompile(`^[A-Z0-9]{18}[0-9]{2}$`)

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Client wraps the LEI record endpoint.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	now     func() time.Time
}

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
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, ServiceName, handleError(logger))
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		now:     time.Now,
	}
}

type notFound struct{ status int }

func (e notFound) Error() string { return fmt.Sprintf("gleif returned %d", e.status) }

func handleError(logger *zap.Logger) func(int, []byte) error {
	return func(status int, body []byte) error {
		if status == http.StatusNotFound {
			return notFound{status: status}
		}
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		msg := strings.TrimSpace(string(body))
		if len(errResp.Errors) > 0 {
			msg = errResp.Errors[0].Title
		}
		logger.Warn("gleif.client_error", zap.Int("status", status), zap.String("error", msg))
		return fmt.Errorf("gleif returned %d: %s", status, msg)
	}
}

// Lookup retrieves the entity identified by lei. An unknown LEI yields an
// error matching errs.ErrNotFound.
// GET /api/v1/lei-records/{lei}
func (c *Client) Lookup(ctx context.Context, lei string) (*model.LegalEntityRef, error) {
	lei = strings.ToUpper(strings.TrimSpace(lei))
	if !leiPattern.MatchString(lei) {
		return nil, &errs.ValidationError{Field: "LEI", Value: lei, Reason: "must be 20 alphanumeric characters"}
	}

	start := time.Now()
	defer metrics.ObserveDuration(metrics.LookupDuration, start, ServiceName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/lei-records/"+url.PathEscape(lei), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	var resp LEIRecordResponse
	if err := c.exec.DoJSON(ctx, req, ServiceName, &resp); err != nil {
		var nf notFound
		if errors.As(err, &nf) {
			metrics.IncLookup(ServiceName, "empty")
			return nil, &errs.NotFoundError{Kind: "lei", ID: lei}
		}
		metrics.IncLookup(ServiceName, "error")
		return nil, err
	}
	if resp.Data.Attributes.LEI == "" && resp.Data.ID == "" {
		metrics.IncLookup(ServiceName, "empty")
		return nil, &errs.NotFoundError{Kind: "lei", ID: lei}
	}

	entity := resp.Data.ToLegalEntity(c.now())
	metrics.IncLookup(ServiceName, "hit")
	c.logger.Debug("gleif.entity_resolved", zap.String("lei", lei), zap.String("name", entity.LegalName))
	return &entity, nil
}

// LookupEntity adapts Lookup to the enrichment interface.
func (c *Client) LookupEntity(ctx context.Context, lei string) (*model.LegalEntityRef, error) {
	return c.Lookup(ctx, lei)
}
