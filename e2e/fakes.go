package e2e

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// policyServer fakes the token issuer and the policy server. The issuer and
// the policy endpoints listen on separate ports of the same host, as they do
// in deployment.
type policyServer struct {
	issuer *httptest.Server
	policy *httptest.Server

	mu               sync.Mutex
	bundle           map[string]string
	generation       int
	deviceDecision   string
	locationDecision string
	issued           int
	refreshes        []url.Values
	deviceChecks     []url.Values
	locationChecks   []url.Values
}

func newPolicyServer() *policyServer {
	p := &policyServer{
		bundle: map[string]string{
			"access_token":  "A1",
			"refresh_token": "R1",
			"client_id":     "C1",
			"client_secret": "S1",
			"api_key":       "K1",
		},
		generation:       1,
		deviceDecision:   "Permitted",
		locationDecision: "Permitted",
	}

	issuer := http.NewServeMux()
	issuer.HandleFunc("/get_current_tokens", p.handleCurrentTokens)
	p.issuer = httptest.NewServer(issuer)

	policy := http.NewServeMux()
	policy.HandleFunc("/oauth/token", p.handleRefresh)
	policy.HandleFunc("/api/device", p.handleDecision("Device_access", &p.deviceChecks, &p.deviceDecision))
	policy.HandleFunc("/api/current_Location", p.handleDecision("Location_access", &p.locationChecks, &p.locationDecision))
	policy.HandleFunc("/api/single_Location", p.handleDecision("Location_access", &p.locationChecks, &p.locationDecision))
	p.policy = httptest.NewServer(policy)

	return p
}

func (p *policyServer) handleCurrentTokens(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	writeJSON(w, p.bundle)
}

func (p *policyServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := r.URL.Query()
	p.refreshes = append(p.refreshes, q)

	if q.Get("refresh_token") != p.bundle["refresh_token"] {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "invalid_grant"})
		return
	}
	p.generation++
	p.bundle["access_token"] = fmt.Sprintf("A%d", p.generation)
	p.bundle["refresh_token"] = fmt.Sprintf("R%d", p.generation)
	writeJSON(w, map[string]string{
		"access_token":  p.bundle["access_token"],
		"refresh_token": p.bundle["refresh_token"],
	})
}

func (p *policyServer) handleDecision(field string, log *[]url.Values, decision *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		*log = append(*log, r.URL.Query())
		writeJSON(w, map[string]string{field: *decision})
	}
}

func (p *policyServer) setDeviceDecision(d string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deviceDecision = d
}

func (p *policyServer) setLocationDecision(d string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locationDecision = d
}

func (p *policyServer) issuedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issued
}

func (p *policyServer) refreshLog() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.refreshes...)
}

func (p *policyServer) lastDeviceCheck() (url.Values, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.deviceChecks) == 0 {
		return nil, false
	}
	return p.deviceChecks[len(p.deviceChecks)-1], true
}

func (p *policyServer) lastLocationCheck() (url.Values, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.locationChecks) == 0 {
		return nil, false
	}
	return p.locationChecks[len(p.locationChecks)-1], true
}

// stopIssuer makes bootstrap queries fail with connection refused.
func (p *policyServer) stopIssuer() {
	p.issuer.Close()
}

func (p *policyServer) Close() {
	p.issuer.Close()
	p.policy.Close()
}

// collector fakes the collection endpoint's line protocol and keeps every
// payload it receives.
type collector struct {
	ln net.Listener

	mu       sync.Mutex
	payloads []string
	wg       sync.WaitGroup
}

func newCollector() (*collector, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	c := &collector{ln: ln}
	c.wg.Go(c.accept)
	return c, nil
}

func (c *collector) Addr() string {
	return c.ln.Addr().String()
}

func (c *collector) accept() {
	for {
		conn, err := c.ln.Accept()
		if err != nil {
			return
		}
		c.wg.Go(func() { c.serve(conn) })
	}
}

func (c *collector) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	rd := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("PbdServer ready\n")); err != nil {
		return
	}
	if line, err := rd.ReadString('\n'); err != nil || strings.TrimSpace(line) != "trigger" {
		return
	}
	if _, err := conn.Write([]byte("ready for record\n")); err != nil {
		return
	}
	payload, err := rd.ReadString('\n')
	if err != nil {
		return
	}
	c.mu.Lock()
	c.payloads = append(c.payloads, strings.TrimRight(payload, "\r\n"))
	c.mu.Unlock()
	_, _ = conn.Write([]byte("received\n"))
}

// records returns the payloads received so far whose DataType is dataType.
func (c *collector) records(dataType string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, p := range c.payloads {
		if strings.HasPrefix(p, "{DataType:"+dataType+",") {
			out = append(out, p)
		}
	}
	return out
}

func (c *collector) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func (c *collector) Close() {
	_ = c.ln.Close()
	c.wg.Wait()
}

func hostPort(rawURL string) (string, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, err
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return "", 0, err
	}
	return host, n, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
