// Package broker is the capability surface apps call. Every sensitive read
// is authorized remotely first; granted data is returned to the app and a
// copy is relayed to the collection endpoint.
package broker

import (
	"context"
	"log/slog"
	"time"

	"pbd/internal/authorization"
	"pbd/internal/location"
	"pbd/internal/relay"
	"pbd/internal/subscription"
	platformsync "pbd/pkg/platform/sync"
)

// Markers returned in place of a value.
const (
	ResultRefused = "refused"
	ResultError   = "error"
)

// StatusRunning is the liveness string returned by Status.
const StatusRunning = "PbdService Running Correctly"

// Authorizer decides whether an app may access a capability.
type Authorizer interface {
	Authorize(ctx context.Context, req authorization.Request) (authorization.Decision, error)
}

// DeviceFacade reads device identifiers. ok is false when the device cannot
// provide the value.
type DeviceFacade interface {
	Identifier(ctx context.Context, c authorization.Capability) (value string, ok bool)
}

// Relay forwards granted data to the collection endpoint.
type Relay interface {
	RelayIdentifierSnapshot(ctx context.Context, appID string, snap relay.IdentifierSnapshot) bool
	RelayLocation(ctx context.Context, appID string, loc location.Location)
	Sent(appID string) bool
}

// Notifier wakes an app when a fix is waiting for it.
type Notifier interface {
	Wake(ctx context.Context, appID, listenerID string) error
}

// Service implements the capability operations.
type Service struct {
	auth     Authorizer
	device   DeviceFacade
	subs     *subscription.Registry
	platform subscription.Platform
	relay    Relay
	notifier Notifier

	locks  *platformsync.KeyedMutex
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Authorizer    Authorizer
	Device        DeviceFacade
	Subscriptions *subscription.Registry
	Location      subscription.Platform
	Relay         Relay
	Notifier      Notifier
}

func New(deps Deps, opts ...Option) *Service {
	s := &Service{
		auth:     deps.Authorizer,
		device:   deps.Device,
		subs:     deps.Subscriptions,
		platform: deps.Location,
		relay:    deps.Relay,
		notifier: deps.Notifier,
		locks:    platformsync.NewKeyedMutex(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status reports that the service is up.
func (s *Service) Status() string {
	return StatusRunning
}

// GetIdentifier returns the identifier value, ResultRefused, or ResultError.
// A grant also relays the app's identifier snapshot once.
func (s *Service) GetIdentifier(ctx context.Context, appID string, c authorization.Capability) string {
	if !c.IsIdentifier() {
		s.logger.WarnContext(ctx, "identifier requested for non-identifier capability",
			"app_id", appID,
			"capability", c,
		)
		return ResultError
	}

	s.locks.Lock(appID)
	defer s.locks.Unlock(appID)

	if marker, ok := s.authorize(ctx, authorization.Request{AppID: appID, Capability: c}); !ok {
		return marker
	}

	value, _ := s.device.Identifier(ctx, c)
	s.relayIdentifiers(ctx, appID)
	return value
}

func (s *Service) GetDeviceID(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.DeviceID)
}

func (s *Service) GetSimSerialNumber(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.SimSerialNumber)
}

func (s *Service) GetAndroidID(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.AndroidID)
}

func (s *Service) GetGroupIDLevel1(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.GroupIDLevel1)
}

func (s *Service) GetLine1Number(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.Line1Number)
}

func (s *Service) GetSubscriberID(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.SubscriberID)
}

func (s *Service) GetVoiceMailAlphaTag(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.VoiceMailAlphaTag)
}

func (s *Service) GetVoiceMailNumber(ctx context.Context, appID string) string {
	return s.GetIdentifier(ctx, appID, authorization.VoiceMailNumber)
}

// RequestLocationUpdates starts periodic location delivery for the app and
// returns its listener token, ResultRefused, or ResultError.
func (s *Service) RequestLocationUpdates(ctx context.Context, appID, providerName string, minTimeMillis int64, minDistance float32) string {
	provider, err := location.ParseProvider(providerName)
	if err != nil || minTimeMillis < 0 || minDistance < 0 {
		s.logger.WarnContext(ctx, "invalid location update request",
			"app_id", appID,
			"provider", providerName,
			"min_time_ms", minTimeMillis,
			"min_distance", minDistance,
		)
		return ResultError
	}

	s.locks.Lock(appID)
	defer s.locks.Unlock(appID)

	marker, ok := s.authorize(ctx, authorization.Request{
		AppID:         appID,
		Capability:    authorization.LocationUpdates,
		Provider:      provider,
		MinTimeMillis: minTimeMillis,
		MinDistance:   minDistance,
	})
	if !ok {
		return marker
	}

	sub, created := s.subs.Register(appID)
	s.subs.SetProvider(appID, provider)
	minTime := time.Duration(minTimeMillis) * time.Millisecond
	if err := s.platform.RequestUpdates(ctx, sub.ListenerID, provider, minTime, minDistance, s.onLocationChanged(appID)); err != nil {
		s.logger.ErrorContext(ctx, "platform rejected location updates", "app_id", appID, "error", err)
		s.rollback(appID, created)
		return ResultError
	}
	s.logger.InfoContext(ctx, "location updates started",
		"app_id", appID,
		"provider", provider,
		"min_time_ms", minTimeMillis,
	)
	return sub.ListenerID
}

// RequestSingleUpdate asks for one fix for the app and returns its listener
// token, ResultRefused, or ResultError.
func (s *Service) RequestSingleUpdate(ctx context.Context, appID, providerName string) string {
	provider, err := location.ParseProvider(providerName)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid single update request", "app_id", appID, "provider", providerName)
		return ResultError
	}

	s.locks.Lock(appID)
	defer s.locks.Unlock(appID)

	marker, ok := s.authorize(ctx, authorization.Request{
		AppID:      appID,
		Capability: authorization.SingleLocation,
		Provider:   provider,
	})
	if !ok {
		return marker
	}

	sub, created := s.subs.Register(appID)
	s.subs.SetProvider(appID, provider)
	if err := s.platform.RequestSingleUpdate(ctx, sub.ListenerID, provider, s.onLocationChanged(appID)); err != nil {
		s.logger.ErrorContext(ctx, "platform rejected single update", "app_id", appID, "error", err)
		s.rollback(appID, created)
		return ResultError
	}
	return sub.ListenerID
}

// GetPendingLocation returns the waiting fix for the app, consuming it and
// relaying a copy. It returns false when nothing is waiting.
func (s *Service) GetPendingLocation(ctx context.Context, appID string) (location.Location, bool) {
	s.locks.Lock(appID)
	defer s.locks.Unlock(appID)

	provider, ok := s.subs.TakeUpdate(appID)
	if !ok {
		return location.Location{}, false
	}

	loc, err := s.platform.LastKnownLocation(ctx, provider)
	if err != nil {
		s.logger.WarnContext(ctx, "no last known location", "app_id", appID, "provider", provider, "error", err)
		return location.Location{}, false
	}
	loc.Provider = provider

	s.relay.RelayLocation(ctx, appID, loc)
	return loc, true
}

// RemoveLocationUpdates stops platform delivery but keeps the subscription.
func (s *Service) RemoveLocationUpdates(ctx context.Context, appID string) {
	s.locks.Lock(appID)
	defer s.locks.Unlock(appID)

	if err := s.subs.StopUpdates(ctx, appID); err != nil {
		s.logger.WarnContext(ctx, "failed to stop location updates", "app_id", appID, "error", err)
	}
}

// Stop removes the app's subscription. Stopping twice is harmless.
func (s *Service) Stop(ctx context.Context, appID string) {
	s.locks.Lock(appID)
	defer s.locks.Unlock(appID)

	if err := s.subs.Remove(ctx, appID); err != nil {
		s.logger.WarnContext(ctx, "failed to stop subscription", "app_id", appID, "error", err)
	}
}

// authorize returns ("", true) on a grant, otherwise the marker to return.
func (s *Service) authorize(ctx context.Context, req authorization.Request) (string, bool) {
	decision, err := s.auth.Authorize(ctx, req)
	switch decision {
	case authorization.Granted:
		return "", true
	case authorization.Refused:
		return ResultRefused, false
	default:
		s.logger.WarnContext(ctx, "authorization error",
			"app_id", req.AppID,
			"capability", req.Capability,
			"error", err,
		)
		return ResultError, false
	}
}

// rollback drops a subscription created by a request the platform then
// rejected. An earlier subscription keeps its listener and token.
func (s *Service) rollback(appID string, created bool) {
	if created {
		s.subs.Discard(appID)
	}
}

func (s *Service) relayIdentifiers(ctx context.Context, appID string) {
	if s.relay.Sent(appID) {
		return
	}
	snap := make(relay.IdentifierSnapshot, len(authorization.IdentifierCapabilities))
	for _, c := range authorization.IdentifierCapabilities {
		if v, ok := s.device.Identifier(ctx, c); ok {
			snap[c] = v
		}
	}
	s.relay.RelayIdentifierSnapshot(ctx, appID, snap)
}

// onLocationChanged is handed to the platform; it runs on the platform's
// delivery goroutine, not under the app lock.
func (s *Service) onLocationChanged(appID string) func() {
	return func() {
		listenerID, ok := s.subs.OnLocationChanged(appID)
		if !ok {
			return
		}
		if err := s.notifier.Wake(context.Background(), appID, listenerID); err != nil {
			s.logger.Warn("failed to wake app", "app_id", appID, "error", err)
		}
	}
}
