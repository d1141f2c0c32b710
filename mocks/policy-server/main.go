// Command policy-server is a stand-in for the remote policy server. It serves
// the token issuer and the policy endpoints on two ports, rotates tokens on
// refresh and refuses the scopes listed in DENY_SCOPES.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultTokenPort = "8000"
	defaultAuthPort  = "5000"
	defaultLatencyMs = "0"
)

var (
	latencyMs  = getEnvInt("LATENCY_MS", defaultLatencyMs)
	denyScopes = splitSet(os.Getenv("DENY_SCOPES"))
)

// tokenState is the single bundle the server hands out. Every refresh
// rotates the access and refresh tokens.
type tokenState struct {
	mu           sync.Mutex
	generation   int
	accessToken  string
	refreshToken string
	clientID     string
	clientSecret string
	apiKey       string
}

func newTokenState() *tokenState {
	s := &tokenState{
		clientID:     getEnv("CLIENT_ID", "pbd-client"),
		clientSecret: getEnv("CLIENT_SECRET", "pbd-secret"),
		apiKey:       getEnv("API_KEY", "pbd-api-key"),
	}
	s.rotate()
	return s
}

func (s *tokenState) rotate() {
	s.generation++
	s.accessToken = fmt.Sprintf("access-%d", s.generation)
	s.refreshToken = fmt.Sprintf("refresh-%d", s.generation)
}

func main() {
	tokens := newTokenState()

	issuer := http.NewServeMux()
	issuer.HandleFunc("/health", handleHealth)
	issuer.HandleFunc("/get_current_tokens", tokens.handleCurrentTokens)

	policy := http.NewServeMux()
	policy.HandleFunc("/health", handleHealth)
	policy.HandleFunc("/oauth/token", tokens.handleRefresh)
	policy.HandleFunc("/api/device", tokens.handleDecision("Device_access"))
	policy.HandleFunc("/api/current_Location", tokens.handleDecision("Location_access"))
	policy.HandleFunc("/api/single_Location", tokens.handleDecision("Location_access"))

	tokenPort := getEnv("TOKEN_PORT", defaultTokenPort)
	authPort := getEnv("AUTH_PORT", defaultAuthPort)

	log.Printf("Mock policy server: issuer on :%s, policy on :%s", tokenPort, authPort)
	log.Printf("Simulated latency: %dms, denied scopes: %v", latencyMs, keys(denyScopes))

	errs := make(chan error, 2)
	go func() { errs <- http.ListenAndServe(":"+tokenPort, issuer) }()
	go func() { errs <- http.ListenAndServe(":"+authPort, policy) }()
	log.Fatal(<-errs)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "policy-server",
	})
}

func (s *tokenState) handleCurrentTokens(w http.ResponseWriter, _ *http.Request) {
	simulateLatency()
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  s.accessToken,
		"refresh_token": s.refreshToken,
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
		"api_key":       s.apiKey,
	})
}

func (s *tokenState) handleRefresh(w http.ResponseWriter, r *http.Request) {
	simulateLatency()
	q := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case q.Get("grant_type") != "refresh_token":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	case q.Get("client_id") != s.clientID || q.Get("client_secret") != s.clientSecret:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	case q.Get("refresh_token") != s.refreshToken:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	s.rotate()
	log.Printf("refresh: issued generation %d", s.generation)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  s.accessToken,
		"refresh_token": s.refreshToken,
	})
}

func (s *tokenState) handleDecision(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		simulateLatency()
		q := r.URL.Query()

		s.mu.Lock()
		valid := q.Get("access_token") == s.accessToken
		s.mu.Unlock()
		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
			return
		}

		scope := q.Get("scope")
		decision := "Permitted"
		if denyScopes[strings.ToLower(scope)] {
			decision = "Denied"
		}
		log.Printf("%s scope=%s username=%s -> %s", r.URL.Path, scope, q.Get("username"), decision)
		writeJSON(w, http.StatusOK, map[string]string{field: decision})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func simulateLatency() {
	if latencyMs > 0 {
		time.Sleep(time.Duration(latencyMs) * time.Millisecond)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key, def string) int {
	n, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		log.Printf("invalid %s, using %s", key, def)
		n, _ = strconv.Atoi(def)
	}
	return n
}

func splitSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, v := range strings.Split(csv, ",") {
		if v = strings.TrimSpace(v); v != "" {
			set[strings.ToLower(v)] = true
		}
	}
	return set
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
