package salamoonder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// response is a completed HTTP exchange.
type response struct {
	body    []byte
	headers map[string]string
	status  int
}

// post sends a JSON body with the API key merged in and returns the raw
// response. Transport failures and non-2xx statuses come back as *RequestError.
func (c *Client) post(ctx context.Context, op Endpoint, payload map[string]any) (*response, error) {
	body := make(map[string]any, len(payload)+1)
	body["api_key"] = c.apiKey
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, &RequestError{Op: op, Reason: ReasonInvalidTask, Err: fmt.Errorf("encode body: %w", err)}
	}

	if err := c.waitRateLimit(ctx, op); err != nil {
		return nil, &RequestError{Op: op, Reason: ReasonTransport, Err: err}
	}

	url := op.URL(c.cfg.BaseURL)
	slog.Debug("POST", slog.String("url", url), slog.String("api_key", maskKey(c.apiKey)), slog.Int("bytes", len(data)))

	resp, err := c.do(ctx, "POST", url, data)
	if err != nil {
		if c.cfg.Proxy != "" && isProxyError(err) {
			slog.Warn("request failed via proxy",
				slog.String("op", string(op)),
				slog.String("proxy", stealth.MaskProxy(c.cfg.Proxy)),
				slog.Any("error", err))
		} else {
			slog.Warn("request failed", slog.String("op", string(op)), slog.Any("error", err))
		}
		return nil, &RequestError{Op: op, Reason: ReasonTransport, Err: err}
	}

	if resp.status == http.StatusTooManyRequests && c.limiter != nil {
		until := retryAfter(resp.headers["retry-after"], time.Now())
		c.limiter.MarkRateLimited(string(op), until)
		slog.Warn("rate limited", slog.String("op", string(op)), slog.Time("until", until))
	}

	if resp.status < 200 || resp.status > 299 {
		code, _, _ := classifyError(resp.body)
		msg := httpErrorMessage(resp.body)
		slog.Error("API error", slog.String("op", string(op)), slog.Int("status", resp.status), slog.String("message", msg))
		return resp, &RequestError{
			Op:         op,
			Reason:     ReasonStatus,
			StatusCode: resp.status,
			Code:       code,
			Message:    msg,
		}
	}

	slog.Debug("request successful", slog.String("op", string(op)), slog.Int("status", resp.status))
	return resp, nil
}

// do runs one exchange on the transport, bounded by ctx and the configured timeout.
func (c *Client) do(ctx context.Context, method, url string, data []byte) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	b, h, status, err := c.doer.DoWithHeaderOrderCtx(ctx, method, url, apiHeaders(c.cfg.Profile.UserAgent), bytes.NewReader(data), apiHeaderOrder)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", method, url, ctx.Err())
		}
		return nil, err
	}
	return &response{body: b, headers: h, status: status}, nil
}

// waitRateLimit blocks until op may be called again. It is a no-op without a limiter.
func (c *Client) waitRateLimit(ctx context.Context, op Endpoint) error {
	if c.limiter == nil {
		return nil
	}
	for c.limiter.IsRateLimited(string(op)) || !c.limiter.Allow(string(op)) {
		wait := time.Until(c.limiter.AvailableAt(string(op)))
		if wait < minRateLimitWait {
			wait = minRateLimitWait
		}
		slog.Debug("waiting for rate limit", slog.String("op", string(op)), slog.Duration("wait", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

const (
	minRateLimitWait  = 50 * time.Millisecond
	defaultRetryAfter = 30 * time.Second
)

// retryAfter parses a Retry-After value (seconds or HTTP date) relative to now.
func retryAfter(v string, now time.Time) time.Time {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return now.Add(time.Duration(secs) * time.Second)
	}
	if t, err := http.ParseTime(v); err == nil {
		return t
	}
	return now.Add(defaultRetryAfter)
}

// isProxyError returns true if the error looks like a proxy connectivity failure.
func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "proxy") ||
		strings.Contains(msg, "SOCKS") ||
		strings.Contains(msg, "tunnel") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}

// maskKey keeps the first and last few characters of an API key for logs.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***" + key[len(key)-2:]
}
