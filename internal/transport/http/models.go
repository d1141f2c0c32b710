package httptransport

import (
	"strings"
	"time"

	"pbd/internal/location"
	"pbd/pkg/validation"
)

// ResultResponse carries a capability result: the value, a listener token,
// or one of the "refused" / "error" markers.
type ResultResponse struct {
	Capability string `json:"capability,omitempty"`
	Result     string `json:"result"`
}

type LocationUpdatesRequest struct {
	Provider      string  `json:"provider" validate:"notblank"`
	MinTimeMillis int64   `json:"min_time_ms"`
	MinDistance   float32 `json:"min_distance"`
}

func (r *LocationUpdatesRequest) Normalize() {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
}

func (r *LocationUpdatesRequest) Validate() error {
	return validation.Validate(r)
}

type SingleUpdateRequest struct {
	Provider string `json:"provider" validate:"notblank"`
}

func (r *SingleUpdateRequest) Normalize() {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
}

func (r *SingleUpdateRequest) Validate() error {
	return validation.Validate(r)
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Provider  string  `json:"provider"`
	Time      string  `json:"time"`
}

func toLocationResponse(loc location.Location) LocationResponse {
	return LocationResponse{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Provider:  string(loc.Provider),
		Time:      loc.Time.UTC().Format(time.RFC3339),
	}
}

type StatusResponse struct {
	Status string `json:"status"`
}

// PlatformFixRequest feeds a fix into the location simulator.
type PlatformFixRequest struct {
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Provider  string     `json:"provider" validate:"oneof=Fine Coarse"`
	Time      *time.Time `json:"time,omitempty"`
}

func (r *PlatformFixRequest) Validate() error {
	return validation.Validate(r)
}

func (r *PlatformFixRequest) toLocation() location.Location {
	loc := location.Location{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Provider:  location.Provider(r.Provider),
	}
	if r.Time != nil {
		loc.Time = *r.Time
	}
	return loc
}

type PlatformFixResponse struct {
	Notified int `json:"notified"`
}
