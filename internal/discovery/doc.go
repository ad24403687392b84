// Package discovery locates Elgato Key Light accessories on the local
// network via DNS-SD service advertisements.
//
// Key Lights advertise themselves as "_elg._tcp" services. Two Browser
// implementations share one contract:
//
//   - AvahiBrowser shells out to the system's avahi-browse utility and
//     parses its parsable line-oriented output.
//   - MulticastBrowser issues mDNS queries directly over the multicast
//     transport using grandcat/zeroconf, with no external daemon.
//
// NewBrowser picks avahi-browse when installed and falls back to the
// multicast implementation otherwise.
//
// # Outcomes
//
// A discovery pass yields Outcome values rather than bare records: a
// resolved outcome carries a ServiceRecord with a usable address and port,
// an unresolved outcome carries only the base advertisement fields and a
// reason. Malformed advertisements are skipped individually so that one
// broken record never costs the whole pass.
//
// # Usage Example
//
//	browser := discovery.NewBrowser(5 * time.Second)
//	outcomes, err := browser.Discover(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, record := range discovery.Records(outcomes) {
//	    fmt.Printf("Found: %s at %s:%d\n", record.Name, record.Addr, record.Port)
//	}
//
// # Background polling
//
// Poller re-runs discovery on an interval and publishes each pass to a
// consumer channel, for UIs that want a live device list. Records are not
// diffed between passes; deduplication is the consumer's concern.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Accessories must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// Browsers are safe for concurrent use. Multiple discovery passes can run
// simultaneously without interference.
package discovery
