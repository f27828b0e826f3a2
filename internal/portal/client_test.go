package portal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(maxRetries int) *Client {
	return NewClient(ClientConfig{
		Timeout:        5 * time.Second,
		MaxRetries:     maxRetries,
		BaseRetryDelay: time.Millisecond,
	}, zap.NewNop())
}

func TestExecuteRetriesRateLimitThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	status, body, err := newTestClient(3).Execute(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body)
	require.EqualValues(t, 3, atomic.LoadInt32(&attempts), "no fourth attempt expected")
}

func TestExecuteRetriesTransportFailureThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			// Drop the connection mid-request to force a transport error.
			conn, _, hijackErr := w.(http.Hijacker).Hijack()
			if hijackErr == nil {
				_ = conn.Close()
			}
			return
		}
		_, _ = io.WriteString(w, "recovered")
	}))
	defer server.Close()

	status, body, err := newTestClient(3).Execute(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "recovered", body)
	require.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestExecuteFailsImmediatelyOnUnexpectedStatus(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := newTestClient(3).Execute(context.Background(), http.MethodGet, server.URL, nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts), "non-429 statuses must not be retried")
}

func TestExecuteSurfacesTransportErrorAfterExhaustion(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := newTestClient(2).Execute(context.Background(), http.MethodGet, server.URL, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 2, transportErr.Attempts)

	var statusErr *StatusError
	require.ErrorAs(t, transportErr.Err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	require.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

func TestExecuteEncodesParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, "KA", r.URL.Query().Get("state"))
		case http.MethodPost:
			require.NoError(t, r.ParseForm())
			require.Equal(t, "KA", r.PostFormValue("state"))
			require.Equal(t, "Reddy", r.PostFormValue("complainant_name"))
		}
		_, _ = io.WriteString(w, "done")
	}))
	defer server.Close()

	client := newTestClient(1)
	_, _, err := client.Execute(context.Background(), http.MethodGet, server.URL, map[string]string{"state": "KA"})
	require.NoError(t, err)

	_, _, err = client.Execute(context.Background(), http.MethodPost, server.URL, map[string]string{
		"state":            "KA",
		"complainant_name": "Reddy",
	})
	require.NoError(t, err)
}

func TestExecuteAbortsBackoffOnCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		BaseRetryDelay: 10 * time.Second,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := client.Execute(ctx, http.MethodGet, server.URL, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Less(t, time.Since(start), 5*time.Second, "backoff must wake on context cancellation")
}
