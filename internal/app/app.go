// Package app assembles the broker process from its configuration.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pbd/internal/apptoken"
	"pbd/internal/authorization"
	"pbd/internal/broker"
	"pbd/internal/credential"
	"pbd/internal/platform/config"
	"pbd/internal/platform/device"
	"pbd/internal/platform/health"
	"pbd/internal/platform/notify"
	"pbd/internal/platform/simulator"
	"pbd/internal/policy"
	"pbd/internal/relay"
	"pbd/internal/subscription"
	httptransport "pbd/internal/transport/http"
	"pbd/pkg/platform/middleware/request"
	"pbd/pkg/platform/tracer"
)

// App is a wired broker.
type App struct {
	Handler   http.Handler
	Service   *broker.Service
	Tokens    *apptoken.Service
	Notifier  *notify.Notifier
	Simulator *simulator.Location

	relay *relay.Relay
}

type options struct {
	logger     *slog.Logger
	httpClient policy.HTTPDoer
	tracer     tracer.Tracer
	location   subscription.Platform
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient overrides the client used for policy server calls.
func WithHTTPClient(c policy.HTTPDoer) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithLocationPlatform replaces the simulator with a real location service.
func WithLocationPlatform(p subscription.Platform) Option {
	return func(o *options) {
		o.location = p
	}
}

// New wires every component. Close must be called to drain the relay.
func New(cfg config.Config, opts ...Option) *App {
	o := &options{
		logger: slog.New(slog.DiscardHandler),
		tracer: tracer.NewOTel(),
	}
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	policyMetrics := policy.NewMetrics(reg)
	issuer := policy.New(policy.Config{
		Name:       "issuer",
		BaseURL:    cfg.IssuerBaseURL(),
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: o.httpClient,
	}, policy.WithTracer(o.tracer), policy.WithMetrics(policyMetrics), policy.WithLogger(log))
	policyServer := policy.New(policy.Config{
		Name:       "policy",
		BaseURL:    cfg.PolicyBaseURL(),
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: o.httpClient,
	}, policy.WithTracer(o.tracer), policy.WithMetrics(policyMetrics), policy.WithLogger(log))

	creds := credential.New(issuer, policyServer, cfg.IssuerBaseURL(),
		credential.WithFreshness(cfg.CredentialFreshness),
		credential.WithTracer(o.tracer),
		credential.WithMetrics(credential.NewMetrics(reg)),
		credential.WithLogger(log),
	)
	authorizer := authorization.New(creds, policyServer, authorization.Config{
		Username:              cfg.Username,
		AuthenticationEnabled: cfg.AuthenticationEnabled,
	},
		authorization.WithTracer(o.tracer),
		authorization.WithMetrics(authorization.NewMetrics(reg)),
		authorization.WithLogger(log),
	)

	var sim *simulator.Location
	platform := o.location
	if platform == nil {
		sim = simulator.NewLocation(simulator.WithLogger(log))
		platform = sim
	}
	subs := subscription.NewRegistry(platform,
		subscription.WithMetrics(subscription.NewMetrics(reg)),
		subscription.WithLogger(log),
	)

	sender := relay.NewLineSender(cfg.CollectorAddr, cfg.RelayTimeout, relay.WithSenderLogger(log))
	rl := relay.New(sender, cfg.Username,
		relay.WithWorkers(cfg.RelayWorkers),
		relay.WithQueueSize(cfg.RelayQueueSize),
		relay.WithTracer(o.tracer),
		relay.WithMetrics(relay.NewMetrics(reg)),
		relay.WithLogger(log),
	)

	notifier := notify.New(notify.WithRegisterer(reg), notify.WithLogger(log))
	service := broker.New(broker.Deps{
		Authorizer:    authorizer,
		Device:        device.NewStatic(cfg.Device, device.WithLogger(log)),
		Subscriptions: subs,
		Location:      platform,
		Relay:         rl,
		Notifier:      notifier,
	}, broker.WithLogger(log))

	tokens := apptoken.NewService(cfg.AppTokenKey, apptoken.Issuer, cfg.AppTokenTTL)
	tokens.SetEnv(cfg.Env)

	hc := health.New(cfg.Env)
	hc.RegisterCheck("collector", func(context.Context) error { return rl.Healthy() })
	hc.RegisterGauge("credentials", creds.Len)
	hc.RegisterGauge("subscriptions", subs.Len)

	handler := httptransport.New(service, log)
	if sim != nil && cfg.Simulator {
		handler.WithLocationFeed(sim)
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Handler:        handler,
		Health:         hc,
		TokenValidator: apptoken.NewAdapter(tokens),
		Metrics:        request.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:         log,
	})

	return &App{
		Handler:   router,
		Service:   service,
		Tokens:    tokens,
		Notifier:  notifier,
		Simulator: sim,
		relay:     rl,
	}
}

// Close stops accepting relay work and waits for queued records to drain.
func (a *App) Close() error {
	return a.relay.Close()
}
