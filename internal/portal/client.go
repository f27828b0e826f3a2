package portal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/metrics"
)

// Executor is the transport seam consumed by the jurisdiction directory and
// the form emulator.
type Executor interface {
	Execute(ctx context.Context, method, url string, params map[string]string) (int, string, error)
}

// ClientConfig controls portal client behavior. Zero values fall back to
// conservative defaults in NewClient.
type ClientConfig struct {
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	BaseRetryDelay  time.Duration
	MaxConns        int
	MaxConnsPerHost int
}

// Client is the shared retrying HTTP transport for all portal traffic.
// One long-lived instance is created at startup and reused for the life of
// the process.
type Client struct {
	http   *resty.Client
	cfg    ClientConfig
	logger *zap.Logger
}

// NewClient builds a Client with a bounded connection pool. The small pool
// caps double as a crude request-rate limit against the portal.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay <= 0 {
		cfg.BaseRetryDelay = time.Second
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          cfg.MaxConns,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetHeaders(browserHeaders(cfg.UserAgent))

	return &Client{http: httpClient, cfg: cfg, logger: logger}
}

// Execute performs one logical portal request. Transport failures and HTTP
// 429 are retried up to the configured attempt budget with a linearly
// increasing delay; any other non-success status fails immediately. Params
// are encoded as query parameters for GET and as a form body otherwise.
func (c *Client) Execute(ctx context.Context, method, url string, params map[string]string) (int, string, error) {
	maxAttempts := c.cfg.MaxRetries
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req := c.http.R().SetContext(ctx)
		if len(params) > 0 {
			if method == http.MethodGet {
				req.SetQueryParams(params)
			} else {
				req.SetFormData(params)
			}
		}

		resp, err := req.Execute(method, url)
		switch {
		case err != nil:
			lastErr = err
			c.logger.Warn("portal request failed",
				zap.String("method", method),
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		case resp.StatusCode() == http.StatusTooManyRequests:
			lastErr = &StatusError{Method: method, URL: url, Code: resp.StatusCode()}
			metrics.ObservePortalRequest(method, resp.StatusCode())
			c.logger.Warn("portal rate limited",
				zap.String("url", url),
				zap.Int("attempt", attempt),
			)
		case resp.IsSuccess():
			metrics.ObservePortalRequest(method, resp.StatusCode())
			return resp.StatusCode(), resp.String(), nil
		default:
			metrics.ObservePortalRequest(method, resp.StatusCode())
			return resp.StatusCode(), "", &StatusError{Method: method, URL: url, Code: resp.StatusCode()}
		}

		if attempt < maxAttempts {
			metrics.ObserveRetry()
			if err := c.backoff(ctx, attempt); err != nil {
				return 0, "", fmt.Errorf("portal request aborted: %w", err)
			}
		}
	}

	return 0, "", &TransportError{Attempts: maxAttempts, Err: lastErr}
}

// backoff sleeps for baseDelay*attempt, waking early if ctx finishes.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.cfg.BaseRetryDelay * time.Duration(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// browserHeaders mirrors what an ordinary browser sends; the portal serves
// a stripped page to clients it does not recognize.
func browserHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	return map[string]string{
		"User-Agent":                userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}
