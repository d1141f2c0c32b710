package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"pbd/internal/app"
	"pbd/internal/platform/config"
)

// TestContext holds one scenario's broker, its upstream fakes and the last
// response seen.
type TestContext struct {
	policy    *policyServer
	collector *collector
	env       map[string]string

	app    *app.App
	server *httptest.Server
	tokens map[string]string

	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	listenerToken    string
}

// NewTestContext starts the upstream fakes. The broker itself starts lazily
// on the first request so Given steps can still shape its configuration.
func NewTestContext() (*TestContext, error) {
	coll, err := newCollector()
	if err != nil {
		return nil, err
	}
	return &TestContext{
		policy:    newPolicyServer(),
		collector: coll,
		env: map[string]string{
			"PBD_ENV":            "dev",
			"PBD_USERNAME":       "tester",
			"PBD_HTTP_TIMEOUT":   "2s",
			"PBD_RELAY_TIMEOUT":  "2s",
			"PBD_RELAY_WORKERS":  "2",
			"PBD_COLLECTOR_ADDR": coll.Addr(),
		},
		tokens:     make(map[string]string),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (tc *TestContext) start() error {
	if tc.server != nil {
		return nil
	}

	host, tokenPort, err := hostPort(tc.policy.issuer.URL)
	if err != nil {
		return fmt.Errorf("issuer address: %w", err)
	}
	_, authPort, err := hostPort(tc.policy.policy.URL)
	if err != nil {
		return fmt.Errorf("policy address: %w", err)
	}
	tc.env["PBD_AUTH_HOST"] = host
	tc.env["PBD_TOKEN_PORT"] = strconv.Itoa(tokenPort)
	tc.env["PBD_AUTH_PORT"] = strconv.Itoa(authPort)

	cfg, err := config.Load(func(key string) string { return tc.env[key] })
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	tc.app = app.New(cfg)
	tc.server = httptest.NewServer(tc.app.Handler)
	return nil
}

// Close stops the broker before its upstreams so queued relay work drains
// against a live collector.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		_ = tc.app.Close()
	}
	tc.policy.Close()
	tc.collector.Close()
}

func (tc *TestContext) tokenFor(appID string) (string, error) {
	if tok, ok := tc.tokens[appID]; ok {
		return tok, nil
	}
	tok, err := tc.app.Tokens.Issue(context.Background(), appID)
	if err != nil {
		return "", fmt.Errorf("issue app token: %w", err)
	}
	tc.tokens[appID] = tok
	return tok, nil
}

// Do sends a request as appID. An empty appID sends no Authorization header.
func (tc *TestContext) Do(method, path, appID string, body any) error {
	if err := tc.start(); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.server.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if appID != "" {
		tok, err := tc.tokenFor(appID)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

func (tc *TestContext) result() (string, error) {
	v, err := tc.GetResponseField("result")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("result is %T, not a string", v)
	}
	return s, nil
}

// eventually polls cond until it holds or the deadline passes.
func eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(20 * time.Millisecond)
	}
}
