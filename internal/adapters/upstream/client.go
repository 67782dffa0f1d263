package upstream

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/observability"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

const (
	service     = "upstream"
	maxAttempts = 4
	maxBodySize = 8 << 20
)

// Client is the dealer/review document service client. Every failure comes
// back as an error wrapping domain.ErrUpstreamUnavailable (or ErrNotFound /
// ErrUpstreamBadPayload); it never panics past this boundary.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, timeout time.Duration, rps int) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", base)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, params url.Values) (json.RawMessage, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", endpoint, err)
	}
	return c.do(ctx, http.MethodPost, endpoint, params, b)
}

// URL joins base, endpoint and the encoded query. No query means no '?'.
func (c *Client) URL(endpoint string, params url.Values) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := c.base + endpoint
	if q := params.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// do performs one logical request with client-side rate limiting and retries.
// GETs retry on transport errors, 429 and transient 5xx; POSTs only on 429/503,
// where the upstream never handled the request.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body []byte) (json.RawMessage, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	target := c.URL(endpoint, params)
	label := routeLabel(endpoint)
	idempotent := method == http.MethodGet

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rdr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "dealership-backend/1.0")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, label, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, ctx.Err())
			}
			lastErr = err
			log.Warn().Err(err).Str("method", method).Str("url", target).Int("attempt", i+1).Msg("upstream transport error")
			if idempotent && i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrUpstreamUnavailable, method, endpoint, lastErr)
		}
		observability.ObserveExternal(service, label, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return json.RawMessage("null"), nil

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: read %s: %w", domain.ErrUpstreamUnavailable, endpoint, err)
			}
			if len(bytes.TrimSpace(b)) == 0 {
				return json.RawMessage("null"), nil
			}
			if !json.Valid(b) {
				return nil, fmt.Errorf("%w: %s %s", domain.ErrUpstreamBadPayload, method, endpoint)
			}
			return json.RawMessage(b), nil

		case resp.StatusCode == http.StatusNotFound:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, method, endpoint)

		case retryable(resp.StatusCode, idempotent):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, ctx.Err())
			}
			return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrUpstreamUnavailable, method, endpoint, lastErr)

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s %s: status %d: %s",
				domain.ErrUpstreamUnavailable, method, endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, endpoint, lastErr)
}

func retryable(status int, idempotent bool) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return idempotent
	}
	return false
}

// routeLabel keeps metric cardinality bounded: "/fetchDealers/Texas" -> "/fetchDealers".
func routeLabel(endpoint string) string {
	p := strings.TrimPrefix(endpoint, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return "/" + p
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
