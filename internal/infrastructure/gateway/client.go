package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// maxBody caps how much of a backend response is read.
const maxBody = 8 << 20

var (
	errNoToken   = errors.New("no bearer token in context")
	errEmptyBody = errors.New("empty response body")
)

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Metrics receives gateway observations. A nil Metrics disables them.
type Metrics interface {
	ObserveRequest(resource, op string, ok bool, elapsed time.Duration)
	ObserveCache(resource string, hit bool)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRequest(string, string, bool, time.Duration) {}
func (nopMetrics) ObserveCache(string, bool)                        {}

// Options configures the backend client.
type Options struct {
	// BaseURL is the API root, e.g. "https://ppf.example.com/api/".
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    Metrics
}

// Client is the shared HTTP transport to the PPF REST API.
type Client struct {
	base    *url.URL
	http    *http.Client
	metrics Metrics
	log     zerolog.Logger
}

func New(opts Options, log zerolog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base url is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway: base url %q must be absolute", opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	m := opts.Metrics
	if m == nil {
		m = nopMetrics{}
	}

	return &Client{base: base, http: hc, metrics: m, log: log.With().Str("component", "gateway").Logger()}, nil
}

// call describes one backend request.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// do executes c and decodes a JSON response into out. A 2xx response with no
// body returns errEmptyBody and leaves out untouched.
func (cl *Client) do(ctx context.Context, c call, out any) error {
	u := cl.base.JoinPath(c.path)
	if len(c.query) > 0 {
		u.RawQuery = c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", c.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth {
		token, ok := domain.TokenFrom(ctx)
		if !ok {
			return errNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.method, c.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read %s: %w", c.path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return &StatusError{Method: c.method, Path: c.path, Code: resp.StatusCode, Body: snippet}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", c.path, err)
	}
	return nil
}

// observe logs a failed call at the boundary and records metrics.
func (cl *Client) observe(resource, op string, start time.Time, err error) bool {
	ok := err == nil
	cl.metrics.ObserveRequest(resource, op, ok, time.Since(start))
	if !ok {
		ev := cl.log.Error()
		if errors.Is(err, errNoToken) {
			ev = cl.log.Warn()
		}
		ev.Err(err).Str("resource", resource).Str("op", op).Msg("backend call failed")
	}
	return ok
}
