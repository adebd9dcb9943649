package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dshills/modsync/internal/retry"
)

// DefaultUserAgent is sent with every HTTP fetch.
const DefaultUserAgent = "modsync"

// DefaultMaxBytes bounds the size of a fetched document.
const DefaultMaxBytes = 4 << 20

// ErrTooLarge indicates a fetched document exceeded the size limit.
var ErrTooLarge = errors.New("document too large")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Is matches ErrNotFound for 404 and 410 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && (e.Code == http.StatusNotFound || e.Code == http.StatusGone)
}

// HTTPFetcher downloads a document with GET, retrying transient failures.
type HTTPFetcher struct {
	url       string
	client    *http.Client
	userAgent string
	maxBytes  int64
	retry     retry.Config
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			c := *f.client
			c.Timeout = d
			f.client = &c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes sets the document size limit.
func WithMaxBytes(n int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithRetry sets the retry schedule.
func WithRetry(cfg retry.Config) HTTPOption {
	return func(f *HTTPFetcher) {
		f.retry = cfg
	}
}

// NewHTTPFetcher creates a fetcher for url.
func NewHTTPFetcher(url string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		url:       url,
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		retry:     retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// String returns the URL.
func (f *HTTPFetcher) String() string { return f.url }

// Fetch downloads the document. Server errors, rate limiting and
// transport failures are retried; other 4xx responses are not.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	return retry.DoWithResult(ctx, f.retry, func() ([]byte, error) {
		return f.fetchOnce(ctx)
	})
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		serr := &StatusError{URL: f.url, Code: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, serr
		}
		return nil, retry.Permanent(serr)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, retry.Permanent(fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, f.url, f.maxBytes))
	}
	return data, nil
}
