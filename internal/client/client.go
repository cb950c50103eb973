package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/metrics"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// maxBodySize caps how much of a response body is read into memory
const maxBodySize = 16 << 20

// Fetcher performs the outbound HTTP requests of the providers
type Fetcher interface {
	// Get performs a GET request and returns the response body.
	Get(ctx context.Context, rawURL string, opts ...RequestOption) ([]byte, error)
	// PostForm performs a form-encoded POST request and returns the response body.
	PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) ([]byte, error)
}

// RequestOption customises a single outbound request
type RequestOption func(*http.Request)

// WithReferer sets the Referer header of the request
func WithReferer(referer string) RequestOption {
	return func(r *http.Request) {
		if referer != "" {
			r.Header.Set("Referer", referer)
		}
	}
}

// WithHeader sets an arbitrary request header
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// client implements the Fetcher interface
type client struct {
	httpClient *http.Client
	retry      retrypolicy.RetryPolicy[[]byte]
}

// NewClient creates a new fetcher with proxy, timeout and retry configuration
func NewClient(cfg *config.Config) Fetcher {
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	httpClient := &http.Client{
		Timeout:   cfg.GetClientTimeout(),
		Transport: newSiteTransport(baseTransport, userAgent),
	}

	return NewClientWithHTTP(httpClient, cfg)
}

// NewClientWithHTTP creates a fetcher around an existing http.Client
func NewClientWithHTTP(httpClient *http.Client, cfg *config.Config) Fetcher {
	retries := cfg.Fetch.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := cfg.GetRetryBackoff()

	policy := retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return isRetryable(err)
		}).
		WithMaxRetries(retries).
		WithBackoff(backoff, 8*backoff).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[[]byte]) {
			logger := config.GetLogger()
			logger.Debug().Err(e.LastError()).Int("attempt", e.Attempts()).Msg("Retrying upstream request")
		}).
		Build()

	return &client{httpClient: httpClient, retry: policy}
}

func (c *client) Get(ctx context.Context, rawURL string, opts ...RequestOption) ([]byte, error) {
	return c.execute(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	}, opts)
}

func (c *client) PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) ([]byte, error) {
	encoded := form.Encode()
	return c.execute(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, opts)
}

// execute runs one request through the retry policy, building a fresh
// request for every attempt so bodies can be replayed
func (c *client) execute(ctx context.Context, build func() (*http.Request, error), opts []RequestOption) ([]byte, error) {
	return failsafe.With(c.retry).WithContext(ctx).Get(func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		for _, opt := range opts {
			opt(req)
		}
		return c.do(req)
	})
}

func (c *client) do(req *http.Request) ([]byte, error) {
	logger := config.GetLogger()
	host := req.URL.Hostname()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamFetchesTotal.WithLabelValues(host, "error").Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamFetchesTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		logger.Debug().Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("Upstream returned non-200 status")
		return nil, &apperrors.UpstreamError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// isRetryable reports whether a failed attempt may succeed when repeated:
// transport errors and 5xx responses are, cancellations and 4xx are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var upstream *apperrors.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
