package discovery

import (
	"fmt"
	"net"
)

// Proto is the internet protocol family an advertisement arrived over.
type Proto int

const (
	ProtoIPv4 Proto = iota
	ProtoIPv6
)

// String returns the avahi-style protocol name ("IPv4" or "IPv6")
func (p Proto) String() string {
	switch p {
	case ProtoIPv4:
		return "IPv4"
	case ProtoIPv6:
		return "IPv6"
	default:
		return fmt.Sprintf("Proto(%d)", int(p))
	}
}

// Advertisement holds the fields common to every service advertisement,
// resolved or not: where it arrived and what it announced.
type Advertisement struct {
	// Interface is the local network interface the advertisement arrived on
	// (e.g. "enp6s0")
	Interface string

	// Proto is the protocol family of the advertisement
	Proto Proto

	// Name is the advertised friendly name of the accessory
	// (e.g. "Elgato Key Light 8D7C")
	Name string

	// Service is the DNS-SD service type (e.g. "_elg._tcp")
	Service string

	// Domain is the discovery domain, typically "local"
	Domain string
}

// ServiceRecord is a fully resolved advertisement: the base fields plus a
// usable network address for the accessory's control endpoint.
type ServiceRecord struct {
	Advertisement

	// TargetHost is the DNS host serving the instance
	// (e.g. "elgato-key-light-8d7c.local")
	TargetHost string

	// Addr is the resolved IPv4 or IPv6 address
	Addr net.IP

	// Port is the control endpoint port (Key Lights listen on 9123)
	Port uint16

	// Text holds the raw TXT strings attached to the advertisement.
	// Use TXT() for the parsed key/value view.
	Text []string
}

// TXT parses the record's raw TXT strings into a metadata mapping.
// Common keys: "pv" (protocol version), "md" (model), "id" (device id),
// "dt" (device type), "mf" (manufacturer).
func (r *ServiceRecord) TXT() map[string]string {
	meta := make(map[string]string)
	for _, raw := range r.Text {
		for k, v := range ParseTXT(raw) {
			meta[k] = v
		}
	}
	return meta
}

// String returns a human-readable representation of the record
func (r *ServiceRecord) String() string {
	return fmt.Sprintf("%s => http://%s", r.Name, net.JoinHostPort(r.Addr.String(), fmt.Sprint(r.Port)))
}

// Outcome is the result of resolving one advertisement. Exactly one of
// Resolved and Unresolved is set.
type Outcome struct {
	// Resolved is set when the advertisement resolved to a network address
	Resolved *ServiceRecord

	// Unresolved is set when only the base advertisement was seen
	Unresolved *Advertisement

	// Reason explains why resolution did not complete (unresolved outcomes only)
	Reason string
}

// IsResolved reports whether the outcome carries a usable address
func (o Outcome) IsResolved() bool {
	return o.Resolved != nil
}

// Records extracts the resolved records from a batch of outcomes
func Records(outcomes []Outcome) []*ServiceRecord {
	records := make([]*ServiceRecord, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Resolved != nil {
			records = append(records, o.Resolved)
		}
	}
	return records
}
