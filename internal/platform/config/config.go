package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"pbd/internal/authorization"
)

// DevAppTokenKey signs app tokens when PBD_APP_TOKEN_KEY is unset. It is
// rejected outside the dev environment.
const DevAppTokenKey = "dev-app-token-key-change-me"

// Config is the broker process configuration.
type Config struct {
	Env      string
	Addr     string
	LogLevel string

	// Policy server. Tokens are bootstrapped from TokenPort and refreshed and
	// checked on AuthPort, both on AuthHost.
	AuthHost              string
	AuthPort              int
	TokenPort             int
	Username              string
	AuthenticationEnabled bool
	CredentialFreshness   time.Duration
	HTTPTimeout           time.Duration

	CollectorAddr  string
	RelayTimeout   time.Duration
	RelayWorkers   int
	RelayQueueSize int

	AppTokenKey string
	AppTokenTTL time.Duration

	// Simulator enables the location simulator and its feed endpoint.
	Simulator bool
	// Device holds the identifier values served to apps. Unset entries are
	// reported as unavailable.
	Device map[authorization.Capability]string
}

// IssuerBaseURL is the token issuer, on the policy host's token port.
func (c Config) IssuerBaseURL() string {
	return "http://" + net.JoinHostPort(c.AuthHost, strconv.Itoa(c.TokenPort))
}

// PolicyBaseURL is the policy server's refresh and decision endpoint root.
func (c Config) PolicyBaseURL() string {
	return "http://" + net.JoinHostPort(c.AuthHost, strconv.Itoa(c.AuthPort))
}

// deviceEnv maps identifier capabilities to the env vars that set them.
var deviceEnv = map[authorization.Capability]string{
	authorization.DeviceID:          "PBD_DEVICE_ID",
	authorization.SimSerialNumber:   "PBD_DEVICE_SIM_SERIAL",
	authorization.AndroidID:         "PBD_DEVICE_ANDROID_ID",
	authorization.GroupIDLevel1:     "PBD_DEVICE_GID1",
	authorization.Line1Number:       "PBD_DEVICE_LINE1",
	authorization.SubscriberID:      "PBD_DEVICE_SUBSCRIBER_ID",
	authorization.VoiceMailAlphaTag: "PBD_DEVICE_VOICEMAIL_TAG",
	authorization.VoiceMailNumber:   "PBD_DEVICE_VOICEMAIL_NUMBER",
}

// FromEnv loads configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config from getenv, applying defaults and validating the result.
func Load(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}
	cfg := Config{
		Env:                   p.str("PBD_ENV", "dev"),
		Addr:                  p.str("PBD_ADDR", ":8080"),
		LogLevel:              p.str("PBD_LOG_LEVEL", "info"),
		AuthHost:              p.str("PBD_AUTH_HOST", "127.0.0.1"),
		AuthPort:              p.int("PBD_AUTH_PORT", 5000),
		TokenPort:             p.int("PBD_TOKEN_PORT", 8000),
		Username:              p.str("PBD_USERNAME", "username"),
		AuthenticationEnabled: p.bool("PBD_AUTHENTICATION_ENABLED", true),
		CredentialFreshness:   p.duration("PBD_CREDENTIAL_FRESHNESS", 0),
		HTTPTimeout:           p.duration("PBD_HTTP_TIMEOUT", 10*time.Second),
		CollectorAddr:         p.str("PBD_COLLECTOR_ADDR", "127.0.0.1:9000"),
		RelayTimeout:          p.duration("PBD_RELAY_TIMEOUT", 10*time.Second),
		RelayWorkers:          p.int("PBD_RELAY_WORKERS", 4),
		RelayQueueSize:        p.int("PBD_RELAY_QUEUE_SIZE", 256),
		AppTokenKey:           p.str("PBD_APP_TOKEN_KEY", DevAppTokenKey),
		AppTokenTTL:           p.duration("PBD_APP_TOKEN_TTL", 24*time.Hour),
		Simulator:             p.bool("PBD_SIMULATOR", true),
		Device:                make(map[authorization.Capability]string),
	}
	for c, key := range deviceEnv {
		if v := getenv(key); v != "" {
			cfg.Device[c] = v
		}
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.AuthHost == "" {
		errs = append(errs, errors.New("PBD_AUTH_HOST must not be empty"))
	}
	for key, port := range map[string]int{"PBD_AUTH_PORT": c.AuthPort, "PBD_TOKEN_PORT": c.TokenPort} {
		if port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s out of range: %d", key, port))
		}
	}
	if _, _, err := net.SplitHostPort(c.CollectorAddr); err != nil {
		errs = append(errs, fmt.Errorf("PBD_COLLECTOR_ADDR: %w", err))
	}
	if c.CredentialFreshness < 0 {
		errs = append(errs, errors.New("PBD_CREDENTIAL_FRESHNESS must not be negative"))
	}
	if c.HTTPTimeout <= 0 || c.RelayTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.RelayWorkers < 1 || c.RelayQueueSize < 1 {
		errs = append(errs, errors.New("PBD_RELAY_WORKERS and PBD_RELAY_QUEUE_SIZE must be at least 1"))
	}
	if c.Env != "dev" && c.AppTokenKey == DevAppTokenKey {
		errs = append(errs, errors.New("PBD_APP_TOKEN_KEY must be set outside dev"))
	}
	return errors.Join(errs...)
}

// parser reads typed values and keeps the first parse error.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, def string) string {
	if v := p.getenv(key); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
}
