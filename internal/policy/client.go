// Package policy talks to the remote authorization server: it issues GET
// requests with ordered query parameters and hands back the decoded JSON body.
package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"pbd/pkg/platform/tracer"
)

// PermittedValue is the only decision field value that grants access.
const PermittedValue = "Permitted"

const defaultTimeout = 10 * time.Second

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Param is a single query parameter. Order is significant on the wire.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters.
type Params []Param

// Add returns p with k=v appended.
func (p Params) Add(k, v string) Params {
	return append(p, Param{Key: k, Value: v})
}

// Encode renders the parameters as a form-encoded query string, keeping order.
// Escaping follows url.QueryEscape, so '*' goes out as %2A and '~' stays
// literal; any form decoder reads back the same values.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Config configures a Client.
type Config struct {
	// Name labels metrics and logs, e.g. "issuer" or "policy".
	Name       string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// Client issues policy queries against one server.
type Client struct {
	name    string
	baseURL string
	timeout time.Duration
	client  HTTPDoer
	tracer  tracer.Tracer
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  httpClient,
		tracer:  tracer.NewNoop(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Query performs GET <base><path>?<params> and decodes the body as a JSON
// object. Any failure is returned as *Error; nothing is retried.
func (c *Client) Query(ctx context.Context, path string, params Params) (body map[string]any, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanPolicyQuery,
		tracer.String(tracer.AttrEndpoint, path),
		tracer.String("server", c.name),
	)
	start := time.Now()
	defer func() {
		c.metrics.observe(path, time.Since(start).Seconds())
		if err != nil {
			c.metrics.recordError(path, Category(err))
		}
		span.End(err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if q := params.Encode(); q != "" {
		target += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newError(ErrorInternal, path, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, newError(ErrorTimeout, path, "request timeout", err)
		}
		return nil, newError(ErrorUnreachable, path, "failed to execute request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, newError(ErrorTimeout, path, "timeout reading response", err)
		}
		return nil, newError(ErrorBadData, path, "failed to read response", err)
	}
	span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(resp.StatusCode)))

	c.logger.DebugContext(ctx, "policy query",
		"server", c.name,
		"endpoint", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := newError(ErrorBadStatus, path, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		pe.StatusCode = resp.StatusCode
		return nil, pe
	}

	body, err = decodeObject(raw)
	if err != nil {
		return nil, newError(ErrorBadData, path, "failed to parse response", err)
	}
	return body, nil
}

// decodeObject parses raw as a JSON object. Servers that answer in Latin-1
// are transcoded first.
func decodeObject(raw []byte) (map[string]any, error) {
	if !utf8.Valid(raw) {
		raw = latin1ToUTF8(raw)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("response is not a JSON object")
	}
	return body, nil
}

func latin1ToUTF8(raw []byte) []byte {
	out := make([]byte, 0, len(raw)*2)
	for _, b := range raw {
		out = utf8.AppendRune(out, rune(b))
	}
	return out
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Permitted reads a decision field from a policy response. A missing field is
// a bad-data error; any value other than "Permitted" is a refusal.
func Permitted(body map[string]any, field string) (bool, error) {
	v, ok := body[field]
	if !ok {
		return false, newError(ErrorBadData, field, "decision field missing", nil)
	}
	s, ok := v.(string)
	return ok && s == PermittedValue, nil
}

// StringField returns body[key] when it is a non-empty string.
func StringField(body map[string]any, key string) (string, bool) {
	s, ok := body[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
