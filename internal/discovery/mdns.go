package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

// MulticastBrowser discovers accessories by issuing mDNS queries directly
// over the multicast transport, with no dependency on an external discovery
// daemon. It implements the same Browser contract as AvahiBrowser.
type MulticastBrowser struct {
	// Service is the DNS-SD service type to browse for
	Service string

	// Domain is the mDNS domain (typically "local.")
	Domain string

	// Timeout is the maximum time to wait for advertisements
	Timeout time.Duration

	// browse overrides the zeroconf resolver in tests. The callee owns the
	// entries channel and must close it once the context expires.
	browse func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// NewMulticastBrowser creates a multicast browser for the given service type
// with default settings
func NewMulticastBrowser(service string) *MulticastBrowser {
	return &MulticastBrowser{
		Service: service,
		Domain:  ServiceDomain,
		Timeout: DefaultScanTimeout,
	}
}

// Discover browses the local network until the timeout elapses and returns
// every advertisement received, resolved or not.
func (b *MulticastBrowser) Discover(ctx context.Context) ([]Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	browse := b.browse
	if browse == nil {
		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: creating mDNS resolver: %v", ErrUnavailable, err)
		}
		browse = resolver.Browse
	}

	entries := make(chan *zeroconf.ServiceEntry)

	// Browse owns the entries channel only once it has started successfully;
	// the collector starts after this point so a browse failure cannot leave
	// it blocked on a channel nobody will close.
	if err := browse(ctx, b.Service, b.Domain, entries); err != nil {
		return nil, fmt.Errorf("browsing for %s: %w", b.Service, err)
	}

	outcomes := make([]Outcome, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			outcomes = append(outcomes, b.convertEntry(entry))
		}
	}()

	// zeroconf closes the entries channel once the context expires
	<-ctx.Done()
	<-done

	return outcomes, nil
}

// convertEntry maps a zeroconf service entry onto the Outcome shape shared
// with the avahi path. Entries without a resolved address are reported as
// unresolved, not dropped.
func (b *MulticastBrowser) convertEntry(entry *zeroconf.ServiceEntry) Outcome {
	base := &Advertisement{
		Name:    entry.Instance,
		Service: entry.Service,
		Domain:  strings.TrimSuffix(entry.Domain, "."),
	}

	// Prefer IPv4; fall back to IPv6
	switch {
	case len(entry.AddrIPv4) > 0:
		base.Proto = ProtoIPv4
		return Outcome{Resolved: &ServiceRecord{
			Advertisement: *base,
			TargetHost:    strings.TrimSuffix(entry.HostName, "."),
			Addr:          entry.AddrIPv4[0],
			Port:          uint16(entry.Port),
			Text:          entry.Text,
		}}

	case len(entry.AddrIPv6) > 0:
		base.Proto = ProtoIPv6
		return Outcome{Resolved: &ServiceRecord{
			Advertisement: *base,
			TargetHost:    strings.TrimSuffix(entry.HostName, "."),
			Addr:          entry.AddrIPv6[0],
			Port:          uint16(entry.Port),
			Text:          entry.Text,
		}}

	default:
		return Outcome{
			Unresolved: base,
			Reason:     "no address resolved",
		}
	}
}
