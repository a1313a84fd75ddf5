package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the USGS FDSN event query endpoint.
const DefaultBaseURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

const userAgent = "quake-feed-service/1.0"

// Client implements domain.FeedFetcher against the USGS event service.
type Client struct {
	httpClient  *http.Client
	readTimeout time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a feed client. connectTimeout bounds dialing and the TLS
// handshake; readTimeout bounds the wait for response headers and any
// single stall while reading the body. A rateLimit above zero caps outbound
// requests per second.
func NewClient(connectTimeout, readTimeout time.Duration, rateLimit float64, logger *slog.Logger) *Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &Client{
		httpClient:  &http.Client{Transport: transport},
		readTimeout: readTimeout,
		limiter:     limiter,
		logger:      logger,
	}
}

// Fetch GETs rawURL and returns the whole body. The response is closed on
// every path.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("parse url: %w", err)}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("unsupported url %q", rawURL)}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("feed request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("feed returned non-2xx status", "url", rawURL, "status", resp.StatusCode)
		return "", &domain.HTTPStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(newIdleTimeoutReader(resp.Body, c.readTimeout, cancel))
	if err != nil {
		return "", &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("feed fetched", "url", rawURL, "bytes", len(body))
	return string(body), nil
}

// idleTimeoutReader cancels the request when no Read completes within d,
// the body-side half of a socket read timeout.
type idleTimeoutReader struct {
	r     io.Reader
	d     time.Duration
	timer *time.Timer
	fired atomic.Bool
}

func newIdleTimeoutReader(r io.Reader, d time.Duration, cancel context.CancelFunc) io.Reader {
	if d <= 0 {
		return r
	}
	tr := &idleTimeoutReader{r: r, d: d}
	tr.timer = time.AfterFunc(d, func() {
		tr.fired.Store(true)
		cancel()
	})
	return tr
}

func (tr *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	if err != nil {
		tr.timer.Stop()
		if tr.fired.Load() {
			return n, &readTimeoutError{d: tr.d}
		}
		return n, err
	}
	tr.timer.Reset(tr.d)
	return n, nil
}

type readTimeoutError struct {
	d time.Duration
}

func (e *readTimeoutError) Error() string   { return fmt.Sprintf("no data received for %s", e.d) }
func (e *readTimeoutError) Timeout() bool   { return true }
func (e *readTimeoutError) Temporary() bool { return true }
