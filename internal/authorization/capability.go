package authorization

import (
	"fmt"
	"strings"

	"pbd/pkg/floattext"
)

// Capability is a sensitive data item an app may ask for.
type Capability string

const (
	DeviceID          Capability = "DeviceId"
	SimSerialNumber   Capability = "SimSerialNumber"
	AndroidID         Capability = "AndroidId"
	GroupIDLevel1     Capability = "GroupIdLevel1"
	Line1Number       Capability = "Line1Number"
	SubscriberID      Capability = "SubscriberId"
	VoiceMailAlphaTag Capability = "VoiceMailAlphaTag"
	VoiceMailNumber   Capability = "VoiceMailNumber"

	LocationUpdates Capability = "LocationUpdates"
	SingleLocation  Capability = "SingleLocation"
)

// IdentifierCapabilities lists the device identifiers in the order they are
// written to the collection endpoint.
var IdentifierCapabilities = []Capability{
	DeviceID,
	SimSerialNumber,
	AndroidID,
	GroupIDLevel1,
	Line1Number,
	SubscriberID,
	VoiceMailAlphaTag,
	VoiceMailNumber,
}

type scopeKind int

const (
	scopeIdentifier scopeKind = iota
	scopeLocationUpdates
	scopeSingleLocation
)

// capabilitySpec is how a capability is asked about on the policy server.
type capabilitySpec struct {
	kind          scopeKind
	endpoint      string
	decisionField string
}

const (
	deviceEndpoint        = "/api/device"
	currentLocationPath   = "/api/current_Location"
	singleLocationPath    = "/api/single_Location"
	deviceDecisionField   = "Device_access"
	locationDecisionField = "Location_access"
)

var capabilities = func() map[Capability]capabilitySpec {
	m := make(map[Capability]capabilitySpec, len(IdentifierCapabilities)+2)
	for _, c := range IdentifierCapabilities {
		m[c] = capabilitySpec{kind: scopeIdentifier, endpoint: deviceEndpoint, decisionField: deviceDecisionField}
	}
	m[LocationUpdates] = capabilitySpec{kind: scopeLocationUpdates, endpoint: currentLocationPath, decisionField: locationDecisionField}
	m[SingleLocation] = capabilitySpec{kind: scopeSingleLocation, endpoint: singleLocationPath, decisionField: locationDecisionField}
	return m
}()

// ParseCapability resolves a capability by name, case-insensitively.
func ParseCapability(name string) (Capability, error) {
	for c := range capabilities {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", name)
}

// IsIdentifier reports whether c names a device identifier.
func (c Capability) IsIdentifier() bool {
	entry, ok := capabilities[c]
	return ok && entry.kind == scopeIdentifier
}

// Endpoint returns the policy endpoint for c, or "" for an unknown capability.
func (c Capability) Endpoint() string {
	return capabilities[c].endpoint
}

// formatFloat renders a distance at single precision ("10.0", "5.0E-4").
func formatFloat(f float32) string {
	return floattext.Float32(f)
}
