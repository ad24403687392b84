package discovery

import (
	"context"
	"os/exec"
	"time"
)

const (
	// ServiceType is the DNS-SD service type advertised by Key Lights
	ServiceType = "_elg._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for one discovery pass
	DefaultScanTimeout = 5 * time.Second
)

// Browser is the shared discovery contract: one blocking browse-and-resolve
// pass bounded by the implementation's timeout. Discover is safe to call
// repeatedly and concurrently.
type Browser interface {
	Discover(ctx context.Context) ([]Outcome, error)
}

// NewBrowser returns the preferred browser for this system: avahi-browse
// when it is installed, otherwise the direct multicast implementation.
func NewBrowser(timeout time.Duration) Browser {
	if _, err := exec.LookPath("avahi-browse"); err == nil {
		b := NewAvahiBrowser(ServiceType)
		b.Timeout = timeout
		return b
	}

	b := NewMulticastBrowser(ServiceType)
	b.Timeout = timeout
	return b
}
