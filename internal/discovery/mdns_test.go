package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestMulticastBrowser_convertEntry(t *testing.T) {
	browser := NewMulticastBrowser(ServiceType)

	tests := []struct {
		name           string
		entry          *zeroconf.ServiceEntry
		wantResolved   bool
		wantProto      Proto
		wantAddr       string
		wantPort       uint16
		wantTargetHost string
	}{
		{
			name: "IPv4 entry",
			entry: &zeroconf.ServiceEntry{
				HostName: "elgato-key-light-8d7c.local.",
				Port:     9123,
				AddrIPv4: []net.IP{net.ParseIP("192.168.0.92")},
				Text:     []string{"pv=1.0", "md=Elgato Key Light 20GAK9901"},
			},
			wantResolved:   true,
			wantProto:      ProtoIPv4,
			wantAddr:       "192.168.0.92",
			wantPort:       9123,
			wantTargetHost: "elgato-key-light-8d7c.local",
		},
		{
			name: "IPv6 only entry",
			entry: &zeroconf.ServiceEntry{
				HostName: "elgato-key-light-8d7c.local.",
				Port:     9123,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantResolved:   true,
			wantProto:      ProtoIPv6,
			wantAddr:       "fe80::1",
			wantPort:       9123,
			wantTargetHost: "elgato-key-light-8d7c.local",
		},
		{
			name: "both families prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "elgato-key-light-8d7c.local",
				Port:     9123,
				AddrIPv4: []net.IP{net.ParseIP("192.168.0.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantResolved: true,
			wantProto:    ProtoIPv4,
			wantAddr:     "192.168.0.50",
			wantPort:     9123,

			wantTargetHost: "elgato-key-light-8d7c.local",
		},
		{
			name: "no address becomes unresolved",
			entry: &zeroconf.ServiceEntry{
				HostName: "elgato-key-light-8d7c.local",
				Port:     9123,
			},
			wantResolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := browser.convertEntry(tt.entry)

			if outcome.IsResolved() != tt.wantResolved {
				t.Fatalf("IsResolved() = %v, want %v", outcome.IsResolved(), tt.wantResolved)
			}

			if !tt.wantResolved {
				if outcome.Reason == "" {
					t.Error("unresolved outcome has no reason")
				}
				return
			}

			record := outcome.Resolved
			if record.Proto != tt.wantProto {
				t.Errorf("Proto = %v, want %v", record.Proto, tt.wantProto)
			}
			if record.Addr.String() != tt.wantAddr {
				t.Errorf("Addr = %v, want %v", record.Addr, tt.wantAddr)
			}
			if record.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", record.Port, tt.wantPort)
			}
			if record.TargetHost != tt.wantTargetHost {
				t.Errorf("TargetHost = %q, want %q", record.TargetHost, tt.wantTargetHost)
			}
		})
	}
}

func TestMulticastBrowser_Discover_BrowseError(t *testing.T) {
	browseErr := errors.New("failed to join multicast group")
	browser := &MulticastBrowser{
		Service: ServiceType,
		Domain:  ServiceDomain,
		Timeout: time.Second,
		browse: func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
			return browseErr
		},
	}

	start := time.Now()
	_, err := browser.Discover(context.Background())
	if !errors.Is(err, browseErr) {
		t.Fatalf("Discover() error = %v, want %v", err, browseErr)
	}

	// A failed browse must return immediately, not sit out the scan window
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Discover() took %v after browse failure, want immediate return", elapsed)
	}
}

func TestMulticastBrowser_Discover_CollectsEntries(t *testing.T) {
	browser := &MulticastBrowser{
		Service: ServiceType,
		Domain:  ServiceDomain,
		Timeout: 50 * time.Millisecond,
		browse: func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
			go func() {
				entries <- &zeroconf.ServiceEntry{
					HostName: "elgato-key-light-8d7c.local.",
					Port:     9123,
					AddrIPv4: []net.IP{net.ParseIP("192.168.0.92")},
				}
				<-ctx.Done()
				close(entries)
			}()
			return nil
		},
	}

	outcomes, err := browser.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].IsResolved() {
		t.Fatalf("Discover() = %v, want one resolved outcome", outcomes)
	}
	if got := outcomes[0].Resolved.Addr.String(); got != "192.168.0.92" {
		t.Errorf("Addr = %q, want %q", got, "192.168.0.92")
	}
}

func TestMulticastBrowser_convertEntry_Metadata(t *testing.T) {
	browser := NewMulticastBrowser(ServiceType)

	entry := &zeroconf.ServiceEntry{
		HostName: "elgato-key-light-8d7c.local",
		Port:     9123,
		AddrIPv4: []net.IP{net.ParseIP("192.168.0.92")},
		Text:     []string{"pv=1.0", "md=Elgato Key Light 20GAK9901", "id=FF:6A:9D:30:B1:6E"},
	}

	outcome := browser.convertEntry(entry)
	if !outcome.IsResolved() {
		t.Fatal("convertEntry() returned unresolved outcome, want resolved")
	}

	meta := outcome.Resolved.TXT()
	want := map[string]string{
		"pv": "1.0",
		"md": "Elgato Key Light 20GAK9901",
		"id": "FF:6A:9D:30:B1:6E",
	}
	for key, wantValue := range want {
		if meta[key] != wantValue {
			t.Errorf("TXT()[%q] = %q, want %q", key, meta[key], wantValue)
		}
	}
}
