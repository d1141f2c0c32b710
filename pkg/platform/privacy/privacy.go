// Package privacy redacts personal data before it reaches logs.
package privacy

import (
	"net/netip"
	"strings"
)

// AnonymizeIP keeps the network part of an address: the /24 for IPv4 and the
// /48 for IPv6. It returns "unknown" for an empty address and "invalid" when
// the address cannot be parsed.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// MaskIdentifier hides all but the last four characters of a device
// identifier. Values of four characters or fewer are hidden entirely.
func MaskIdentifier(v string) string {
	const keep = 4
	if v == "" {
		return ""
	}
	r := []rune(v)
	if len(r) <= keep {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-keep) + string(r[len(r)-keep:])
}
