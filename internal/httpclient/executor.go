package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/rate"
	"github.com/Checker-Finance/refdata/pkg/errs"
)

// maxRetryAfter caps how long a Retry-After header may delay a retry.
const maxRetryAfter = 5 * time.Second

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Executor handles rate-limited, retrying HTTP execution with JSON decoding.
type Executor struct {
	logger       *zap.Logger
	rateMgr      *rate.Manager
	http         *http.Client
	retryMax     int
	service      string
	errorHandler func(status int, body []byte) error
}

// New creates an Executor. errorHandler is called on non-retryable 4xx
// responses to produce a service-specific error. If nil, a default error is
// returned. A negative retryMax is treated as zero: one attempt, no retries.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	retryMax int,
	service string,
	errorHandler func(status int, body []byte) error,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if retryMax < 0 {
		retryMax = 0
	}
	return &Executor{
		logger:       logger,
		rateMgr:      rateMgr,
		http:         httpClient,
		retryMax:     retryMax,
		service:      service,
		errorHandler: errorHandler,
	}
}

// Service returns the tag used in logs and errors.
func (e *Executor) Service() string { return e.service }

// Do executes req with rate limiting and retries and returns the response
// body of the first non-retryable response. Transport errors, 429 and 5xx
// are retried; once retries are exhausted the error is an
// *errs.ExternalServiceError. Request bodies are rewound through
// req.GetBody before every retry.
func (e *Executor) Do(ctx context.Context, req *http.Request, rateLimitKey string) ([]byte, error) {
	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		if e.rateMgr != nil {
			if err := e.rateMgr.Wait(ctx, rateLimitKey); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
			req.Body = body
		}

		start := time.Now()
		resp, err := e.http.Do(req.WithContext(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr, lastStatus = err, 0
			e.logger.Warn(e.service+".http_failed",
				zap.String("url", req.URL.Redacted()),
				zap.Error(err),
				zap.Int("attempt", attempt))
			if attempt < e.retryMax {
				if err := e.sleep(ctx, Backoff(attempt)); err != nil {
					return nil, err
				}
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		elapsed := time.Since(start)

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			e.logger.Warn(e.service+".server_error",
				zap.Int("status", resp.StatusCode),
				zap.String("url", req.URL.Redacted()),
				zap.Duration("latency", elapsed),
				zap.Int("attempt", attempt))
			lastErr = fmt.Errorf("%s returned %d", e.service, resp.StatusCode)
			lastStatus = resp.StatusCode
			wait := Backoff(attempt)
			if ra := retryAfter(resp.Header.Get("Retry-After")); ra > wait {
				wait = ra
			}
			if attempt < e.retryMax {
				if err := e.sleep(ctx, wait); err != nil {
					return nil, err
				}
			}
			continue
		}

		if readErr != nil {
			return nil, fmt.Errorf("read %s response: %w", e.service, readErr)
		}

		if resp.StatusCode >= 400 {
			if e.errorHandler != nil {
				return nil, e.errorHandler(resp.StatusCode, body)
			}
			return nil, fmt.Errorf("%s returned %d", e.service, resp.StatusCode)
		}

		e.logger.Debug(e.service+".http_success",
			zap.String("url", req.URL.Redacted()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))
		return body, nil
	}

	return nil, &errs.ExternalServiceError{
		Service:  e.service,
		Status:   lastStatus,
		Attempts: e.retryMax + 1,
		Err:      lastErr,
	}
}

// DoJSON executes req through Do, then JSON-decodes the response into out.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, rateLimitKey string, out any) error {
	body, err := e.Do(ctx, req, rateLimitKey)
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			e.logger.Warn(e.service+".decode_failed",
				zap.Error(err),
				zap.String("url", req.URL.Redacted()),
				zap.Int("body_len", len(body)))
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
