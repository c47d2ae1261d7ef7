package httpclient

import (
	"bytes"
	"context"
		"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/rate"
	"github.com/Checker-Finance/refdata/pkg/errs"
)

func newExec(retryMax int, client *http.Client) *Executor {
	return New(zap.NewNop(), nil, client, retryMax, "test", nil)
}

// countingHandler returns a handler whose response alternates based on a call counter.
// For calls <= failCount it returns failStatus; afterwards it returns 200 with body.
func countingHandler(failCount int, failStatus int, successBody []byte) (http.Handler, *atomic.Int32) {
	var n atomic.Int32
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if int(n.Add(1)) <= failCount {
			w.WriteHeader(failStatus)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(successBody)
	}), &n
}

func newRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestDoJSON_DecodesMappingResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"data":[{"figi":"BBG0000000001"}]}]`))
	}))
	defer srv.Close()

	var out []struct {
		Data []struct {
			FIGI string `json:"figi"`
		} `json:"data"`
	}
	require.NoError(t, newExec(2, srv.Client()).DoJSON(context.Background(), newRequest(t, http.MethodGet, srv.URL, nil), "k", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "BBG0000000001", out[0].Data[0].FIGI)
}

func TestDoJSON_RetryableStatuses(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusInternalServerError} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			h, count := countingHandler(1, status, []byte(`{"result":"ok"}`))
			srv := httptest.NewServer(h)
			defer srv.Close()

			var out map[string]string
			require.NoError(t, newExec(2, srv.Client()).DoJSON(context.Background(), newRequest(t, http.MethodGet, srv.URL, nil), "k", &out))
			assert.EqualValues(t, 2, count.Load())
			assert.Equal(t, "ok", out["result"])
		})
	}
}

func TestDoJSON_MappingJobResentOnRetry(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received = append(received, string(b))
		if len(received) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	job := []byte(`[{"idType":"ID_ISIN","idValue":"XS0000000001","micCode":"XVEN"}]`)
	require.NoError(t, newExec(1, srv.Client()).DoJSON(context.Background(), newRequest(t, http.MethodPost, srv.URL, job), "k", nil))
	require.Len(t, received, 2)
	assert.JSONEq(t, string(job), received[1], "retry re-sends the full body")
}

func TestDo_ClientErrorGoesToHandler(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Not Found"}]}`))
	}))
	defer srv.Close()

	var gotStatus int
	var gotBody string
	exec := New(zap.NewNop(), nil, srv.Client(), 3, "gleif", func(status int, body []byte) error {
		gotStatus, gotBody = status, string(body)
		return &errs.NotFoundError{Kind: "lei", ID: "529900T8BM49AURSDO55"}
	})

	_, err := exec.Do(context.Background(), newRequest(t, http.MethodGet, srv.URL, nil), "k")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.EqualValues(t, 1, count.Load(), "4xx is not retried")
	assert.Equal(t, http.StatusNotFound, gotStatus)
	assert.Contains(t, gotBody, "Not Found")
}

func TestDoJSON_ExhaustAllRetries(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newExec(2, srv.Client()).DoJSON(context.Background(), newRequest(t, http.MethodGet, srv.URL, nil), "k", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.EqualValues(t, 3, count.Load(), "retryMax=2 means 3 total attempts")

	var se *errs.ExternalServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "test", se.Service)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "external_service", errs.Kind(err))
}

func TestDoJSON_ZeroRetries(t *testing.T) {
	h, count := countingHandler(5, http.StatusInternalServerError, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	require.Error(t, newExec(0, srv.Client()).DoJSON(context.Background(), newRequest(t, http.MethodGet, srv.URL, nil), "k", nil))
	assert.EqualValues(t, 1, count.Load(), "retryMax=0 means exactly one attempt")
}

func TestDoJSON_NegativeRetriesStillSendsOnce(t *testing.T) {
	h, count := countingHandler(5, http.StatusInternalServerError, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	err := newExec(-1, srv.Client()).DoJSON(context.Background(), newRequest(t, http.MethodGet, srv.URL, nil), "k", nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, count.Load(), "negative retryMax behaves like zero")

	var se *errs.ExternalServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Attempts)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

// ─── 429 is retried ──────────────────────────────────────────────────────────

func TestDoJSON_429Retried(t *testing.T) {
	h, count := countingHandler(1, http.StatusTooManyRequests, []byte(`{"result":"ok"}`))
	srv := httptest.NewServer(h)
	defer srv.Close()

	exec := newExec(1, srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	var out map[string]string
	require.NoError(t, exec.DoJSON(context.Background(), req, "k", &out))
	assert.EqualValues(t, 2, count.Load())
}

// ─── Transport errors become ExternalServiceError ────────────────────────────

func TestDo_TransportErrorExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	exec := newExec(1, &http.Client{})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)

	_, err := exec.Do(context.Background(), req, "k")
	var se *errs.ExternalServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Status)
	assert.Equal(t, 2, se.Attempts)
}

// ─── Cancelled context stops retries ─────────────────────────────────────────

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	var count atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	exec := newExec(5, srv.Client())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	_, err := exec.Do(ctx, req, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, count.Load())
}

// ─── Rate limiter is consulted ───────────────────────────────────────────────

func TestDo_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mgr := rate.NewManager(rate.Config{RequestsPerSecond: 0.01, Burst: 1})
	exec := New(zap.NewNop(), mgr, srv.Client(), 0, "test", nil)

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	_, err := exec.Do(context.Background(), req, "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = exec.Do(ctx, req, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("soon"))
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, maxRetryAfter, retryAfter("3600"))
}

// ─── Custom error handler receives body ──────────────────────────────────────

func TestDoJSON_CustomErrorHandlerCalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"INVALID"}`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), nil, srv.Client(), 2, "test", func(status int, body []byte) error {
		return fmt.Errorf("venue %d: %s", status, body)
	})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL, nil)

	err := exec.DoJSON(context.Background(), req, "k", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "INVALID")
}

// ─── JSON decode error ────────────────────────────────────────────────────────

func TestDoJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not-json"))
	}))
	defer srv.Close()

	exec := newExec(0, srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	var out map[string]string
	err := exec.DoJSON(context.Background(), req, "k", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode failed")
}

// ─── Two 5xx then success (two retries exercised) ────────────────────────────

func TestDoJSON_TwoFailuresThenSuccess(t *testing.T) {
	h, count := countingHandler(2, http.StatusBadGateway, []byte(`{"v":1}`))
	srv := httptest.NewServer(h)
	defer srv.Close()

	exec := newExec(2, srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	var out map[string]int
	require.NoError(t, exec.DoJSON(context.Background(), req, "k", &out))
	assert.EqualValues(t, 3, count.Load(), "expected 3 total attempts")
	assert.Equal(t, 1, out["v"])
}
