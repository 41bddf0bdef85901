// Package source opens the HTML documents that tables are read from: local
// files, stdin or http(s) URLs.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 3
	// DefaultUserAgent identifies tablecheck to remote servers.
	DefaultUserAgent = "tablecheck"
)

// Error types for remote documents.
type (
	// AuthenticationError indicates the server rejected the credentials.
	AuthenticationError struct{ Message string }
	// NotFoundError indicates the document does not exist.
	NotFoundError struct{ Message string }
	// FetchError is any other non-2xx response.
	FetchError struct {
		StatusCode int
		URL        string
	}
)

func (e AuthenticationError) Error() string { return e.Message }
func (e NotFoundError) Error() string       { return e.Message }
func (e FetchError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
}

// TokenFunc returns the bearer token to send to host, or "" for none.
type TokenFunc func(host string) string

// Loader opens document references.
type Loader struct {
	client    *retryablehttp.Client
	userAgent string
	token     TokenFunc
	stdin     io.Reader
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.client.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.client.RetryMax = n
		}
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(min, max time.Duration) Option {
	return func(l *Loader) {
		l.client.RetryWaitMin = min
		l.client.RetryWaitMax = max
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if strings.TrimSpace(ua) != "" {
			l.userAgent = ua
		}
	}
}

// WithToken sets the bearer token lookup.
func WithToken(fn TokenFunc) Option {
	return func(l *Loader) {
		l.token = fn
	}
}

// WithStdin sets the reader used for the "-" reference.
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		l.stdin = r
	}
}

// WithLogger routes request and retry logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = DefaultTimeout
	client.RetryMax = DefaultRetries
	client.CheckRetry = retryablehttp.ErrorPropagatedRetryPolicy

	l := &Loader{
		client:    client,
		userAgent: DefaultUserAgent,
		stdin:     os.Stdin,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.client.Logger = l.logger
	// The final failure is reported by Open; keep the raw response for it.
	l.client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return l
}

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Open returns the document named by ref: "-" for stdin, an http(s) URL, or
// a file path. The caller closes the returned reader.
func (l *Loader) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, fmt.Errorf("empty document source")
	case ref == "-":
		return io.NopCloser(l.stdin), nil
	case IsRemote(ref):
		return l.fetch(ctx, ref)
	default:
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ref, err)
		}
		return f, nil
	}
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if l.token != nil {
		if token := l.token(u.Hostname()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	// With the passthrough error handler a final 5xx arrives as a response
	// plus the retry policy's error; the status mapping below wins.
	resp, err := l.client.Do(req)
	if resp == nil {
		return nil, fmt.Errorf("fetching %s: %w", u.Redacted(), err)
	}
	l.logger.Debug("fetched document",
		"url", u.Redacted(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, AuthenticationError{Message: fmt.Sprintf("access to %s denied (status %d); set a token with 'tablecheck auth set %s'", u.Redacted(), resp.StatusCode, u.Hostname())}
	case http.StatusNotFound:
		return nil, NotFoundError{Message: fmt.Sprintf("document not found: %s", u.Redacted())}
	default:
		return nil, FetchError{StatusCode: resp.StatusCode, URL: u.Redacted()}
	}
}
