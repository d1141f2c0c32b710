// Package location holds the provider vocabulary and fix type shared by the
// authorization, subscription and relay packages.
package location

import (
	"fmt"
	"time"
)

// Provider is the location precision an app asked for. Its string form is
// the scope value sent to the policy server and the Location_type written to
// the collection endpoint.
type Provider string

const (
	ProviderUnset  Provider = ""
	ProviderFine   Provider = "Fine"
	ProviderCoarse Provider = "Coarse"
)

// Names apps use when asking for a provider.
const (
	FineLocation   = "finelocation"
	CoarseLocation = "coarselocation"
)

// ParseProvider maps an app-facing provider name to a Provider.
func ParseProvider(name string) (Provider, error) {
	switch name {
	case FineLocation:
		return ProviderFine, nil
	case CoarseLocation:
		return ProviderCoarse, nil
	default:
		return ProviderUnset, fmt.Errorf("unknown location provider %q", name)
	}
}

// PlatformName is the device-side source backing the provider.
func (p Provider) PlatformName() string {
	switch p {
	case ProviderFine:
		return "gps"
	case ProviderCoarse:
		return "network"
	default:
		return ""
	}
}

func (p Provider) IsSet() bool {
	return p == ProviderFine || p == ProviderCoarse
}

// Location is a single fix as reported by the platform.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Provider  Provider  `json:"provider"`
	Time      time.Time `json:"time"`
}
