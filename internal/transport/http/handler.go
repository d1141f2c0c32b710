// Package httptransport exposes the capability surface over HTTP. Handlers
// only translate between JSON and the broker service.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pbd/internal/authorization"
	"pbd/internal/location"
	dErrors "pbd/pkg/domain-errors"
	"pbd/pkg/platform/httputil"
	"pbd/pkg/requestcontext"
)

// Service is the capability surface.
type Service interface {
	GetIdentifier(ctx context.Context, appID string, c authorization.Capability) string
	RequestLocationUpdates(ctx context.Context, appID, provider string, minTimeMillis int64, minDistance float32) string
	RequestSingleUpdate(ctx context.Context, appID, provider string) string
	GetPendingLocation(ctx context.Context, appID string) (location.Location, bool)
	RemoveLocationUpdates(ctx context.Context, appID string)
	Stop(ctx context.Context, appID string)
	Status() string
}

// LocationFeed accepts simulated fixes.
type LocationFeed interface {
	Publish(ctx context.Context, fix location.Location) (int, error)
}

type Handler struct {
	service Service
	feed    LocationFeed
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// WithLocationFeed enables the platform feed endpoint.
func (h *Handler) WithLocationFeed(feed LocationFeed) *Handler {
	h.feed = feed
	return h
}

// Register mounts the app-facing routes. The caller applies the app
// authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/status", h.HandleStatus)
	r.Get("/identifiers/{capability}", h.HandleGetIdentifier)
	r.Post("/location/updates", h.HandleRequestLocationUpdates)
	r.Post("/location/single", h.HandleRequestSingleUpdate)
	r.Get("/location/pending", h.HandleGetPendingLocation)
	r.Post("/location/remove-updates", h.HandleRemoveLocationUpdates)
	r.Post("/location/stop", h.HandleStop)
}

// RegisterPlatform mounts the simulator feed. It is a no-op without a feed.
func (h *Handler) RegisterPlatform(r chi.Router) {
	if h.feed == nil {
		return
	}
	r.Post("/platform/location", h.HandlePublishLocation)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: h.service.Status()})
}

// HandleGetIdentifier implements GET /v1/identifiers/{capability}.
func (h *Handler) HandleGetIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	c, err := authorization.ParseCapability(chi.URLParam(r, "capability"))
	if err != nil || !c.IsIdentifier() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown identifier"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		Capability: string(c),
		Result:     h.service.GetIdentifier(ctx, appID, c),
	})
}

// HandleRequestLocationUpdates implements POST /v1/location/updates.
func (h *Handler) HandleRequestLocationUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndValidate[LocationUpdatesRequest](w, r, h.logger)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		Capability: string(authorization.LocationUpdates),
		Result:     h.service.RequestLocationUpdates(ctx, appID, req.Provider, req.MinTimeMillis, req.MinDistance),
	})
}

// HandleRequestSingleUpdate implements POST /v1/location/single.
func (h *Handler) HandleRequestSingleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndValidate[SingleUpdateRequest](w, r, h.logger)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		Capability: string(authorization.SingleLocation),
		Result:     h.service.RequestSingleUpdate(ctx, appID, req.Provider),
	})
}

// HandleGetPendingLocation implements GET /v1/location/pending: 200 with the
// fix, or 204 when none is waiting.
func (h *Handler) HandleGetPendingLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	loc, ok := h.service.GetPendingLocation(ctx, appID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLocationResponse(loc))
}

func (h *Handler) HandleRemoveLocationUpdates(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}
	h.service.RemoveLocationUpdates(r.Context(), appID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}
	h.service.Stop(r.Context(), appID)
	w.WriteHeader(http.StatusNoContent)
}

// HandlePublishLocation implements POST /platform/location.
func (h *Handler) HandlePublishLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndValidate[PlatformFixRequest](w, r, h.logger)
	if !ok {
		return
	}

	n, err := h.feed.Publish(ctx, req.toLocation())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to publish fix",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PlatformFixResponse{Notified: n})
}

func (h *Handler) appID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	appID, err := httputil.RequireAppID(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "app id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return "", false
	}
	return appID, true
}
