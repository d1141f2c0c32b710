package relay

import (
	"strings"
	"time"

	"pbd/internal/authorization"
	"pbd/internal/location"
	"pbd/pkg/floattext"
)

// missingValue is written for identifiers the device could not provide.
const missingValue = "null"

// wireTimeLayout renders yyyy/MM/dd/HH/mm/ss.
const wireTimeLayout = "2006/01/02/15/04/05"

// IdentifierSnapshot holds the device identifiers read for one app.
// Capabilities without an entry are written as null.
type IdentifierSnapshot map[authorization.Capability]string

func (s IdentifierSnapshot) value(c authorization.Capability) string {
	v, ok := s[c]
	if !ok {
		return missingValue
	}
	return v
}

// FormatIdentifiers renders the device record sent to the collection
// endpoint. The collector parses it positionally, so spacing is significant:
// Line1Number is followed by ": " while every other key uses ":".
func FormatIdentifiers(snap IdentifierSnapshot, username string) string {
	var b strings.Builder
	b.WriteString("{DataType:Device, ")
	for _, c := range authorization.IdentifierCapabilities {
		b.WriteString(string(c))
		b.WriteByte(':')
		if c == authorization.Line1Number {
			b.WriteByte(' ')
		}
		b.WriteString(snap.value(c))
		b.WriteString(", ")
	}
	b.WriteString("Username:")
	b.WriteString(username)
	b.WriteString(", }")
	return b.String()
}

// FormatLocation renders the location record sent to the collection endpoint.
// sentAt is the send time, not the fix time.
func FormatLocation(loc location.Location, username string, sentAt time.Time) string {
	locType := string(loc.Provider)
	if !loc.Provider.IsSet() {
		locType = missingValue
	}
	var b strings.Builder
	b.WriteString("{DataType:Location_Update, Username:")
	b.WriteString(username)
	b.WriteString(", Longitude:")
	b.WriteString(formatCoordinate(loc.Longitude))
	b.WriteString(", Latitude:")
	b.WriteString(formatCoordinate(loc.Latitude))
	b.WriteString(", Location_type:")
	b.WriteString(locType)
	b.WriteString(", Location_time:")
	b.WriteString(sentAt.Format(wireTimeLayout))
	b.WriteString(", }")
	return b.String()
}

// formatCoordinate renders v at double precision, switching to scientific
// notation outside [1e-3, 1e7).
func formatCoordinate(v float64) string {
	return floattext.Format(v, 64)
}
