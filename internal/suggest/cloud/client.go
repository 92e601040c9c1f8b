// Package cloud looks up stored evaluations from a lichess-compatible cloud-eval endpoint.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/suggest"
)

const evalPath = "/api/cloud-eval"

type Client struct {
	baseURL string
	http    *fasthttp.Client
	logger  *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDial replaces the TCP dialer, mainly for in-memory listeners.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, MaxConnsPerHost: 4},
		logger:         zap.NewNop(),
		defaultTimeout: 3 * time.Second,
		retryMax:       2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type evalResponse struct {
	FEN    string `json:"fen"`
	Depth  int    `json:"depth"`
	KNodes int    `json:"knodes"`
	PVs    []struct {
		Moves string `json:"moves"`
		CP    *int   `json:"cp,omitempty"`
		Mate  *int   `json:"mate,omitempty"`
	} `json:"pvs"`
}

// errNotFound marks a position the service has never evaluated.
var errNotFound = errors.New("position not in cloud")

// Suggest returns the first move of the principal variation.
func (c *Client) Suggest(ctx context.Context, fen string) (string, error) {
	q := url.Values{}
	q.Set("fen", fen)
	var resp evalResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, evalPath+"?"+q.Encode(), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return "", fmt.Errorf("cloud: %w", suggest.ErrNoSuggestion)
		}
		return "", err
	}
	mv := firstMove(resp)
	if mv == "" {
		return "", fmt.Errorf("cloud: empty pv: %w", suggest.ErrNoSuggestion)
	}
	c.logger.Debug("cloud_eval_hit", zap.String("move_uci", mv), zap.Int("depth", resp.Depth))
	return mv, nil
}

func firstMove(r evalResponse) string {
	if len(r.PVs) == 0 {
		return ""
	}
	fields := strings.Fields(r.PVs[0].Moves)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (c *Client) doJSON(ctx context.Context, method, path string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status == fasthttp.StatusNotFound {
			return errNotFound
		}
		if status < 200 || status >= 300 {
			err := fmt.Errorf("cloud eval error: status=%d body=%s", status, truncate(string(resp.Body()), 256))
			if attempt == attempts || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

// 429 is not retried: the service asks clients to back off for a minute.
func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
