package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keylightctl/keylightctl/internal/logging"
)

// ErrUnavailable indicates that the discovery facility could not be started
// at all, e.g. avahi-browse is not installed or the avahi daemon is not
// running. This is a system misconfiguration the caller must fix; it is
// reported, never retried.
var ErrUnavailable = errors.New("discovery facility unavailable")

// AvahiBrowser discovers accessories by running the system's avahi-browse
// utility in parsable mode and parsing its line-oriented output.
type AvahiBrowser struct {
	// Service is the DNS-SD service type to browse for
	Service string

	// Timeout bounds a single discovery pass. avahi-browse terminates on
	// its own once the cache is dumped; the timeout is a backstop for a
	// stuck daemon.
	Timeout time.Duration
}

// NewAvahiBrowser creates a browser for the given service type with the
// default scan timeout
func NewAvahiBrowser(service string) *AvahiBrowser {
	return &AvahiBrowser{
		Service: service,
		Timeout: DefaultScanTimeout,
	}
}

// Discover runs one browse-and-resolve pass and returns the parsed outcomes.
//
// A timeout is not an error: whatever outcomes were parsed before the
// process was killed are returned. ErrUnavailable is returned when
// avahi-browse cannot be started or the daemon refuses the connection.
func (b *AvahiBrowser) Discover(ctx context.Context) ([]Outcome, error) {
	if _, err := exec.LookPath("avahi-browse"); err != nil {
		return nil, fmt.Errorf("%w: avahi-browse not installed", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "avahi-browse", b.Service,
		"--parsable", "--resolve", "--terminate")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case err == nil:
		// Normal termination after the cache dump
	case ctx.Err() != nil:
		// Killed by the timeout; partial output is still valid
		logging.Debug("avahi-browse timed out, keeping partial results",
			zap.String("service", b.Service),
			zap.Duration("timeout", b.Timeout),
		)
	default:
		// avahi-browse exits non-zero when it cannot reach the daemon
		// ("Failed to create client object: Daemon not running")
		return nil, fmt.Errorf("%w: avahi-browse: %v: %s",
			ErrUnavailable, err, strings.TrimSpace(stderr.String()))
	}

	return parseBrowseOutput(stdout.String()), nil
}

// browseEvent is the leading field of a parsable avahi-browse line
type browseEvent byte

const (
	eventNew      browseEvent = '+'
	eventResolved browseEvent = '='
	eventExited   browseEvent = '-'
)

// parseBrowseOutput converts the full parsable output of one avahi-browse
// run into outcomes. Lines that do not match a known shape are skipped, not
// fatal. Advertisements announced with '+' but never resolved with '=' are
// reported as unresolved outcomes.
func parseBrowseOutput(output string) []Outcome {
	var outcomes []Outcome

	// Advertisements seen but not yet resolved, in announcement order
	type pendingKey struct {
		iface string
		proto Proto
		name  string
	}
	var pendingOrder []pendingKey
	pending := make(map[pendingKey]*Advertisement)

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		event, base, rest, err := parseBrowseLine(line)
		if err != nil {
			logging.Debug("skipping unrecognized browse line",
				zap.String("line", line),
				zap.Error(err),
			)
			continue
		}

		key := pendingKey{base.Interface, base.Proto, base.Name}

		switch event {
		case eventNew:
			if _, seen := pending[key]; !seen {
				pending[key] = base
				pendingOrder = append(pendingOrder, key)
			}

		case eventResolved:
			record, err := parseResolvedFields(base, rest)
			if err != nil {
				logging.Debug("skipping malformed resolved record",
					zap.String("line", line),
					zap.Error(err),
				)
				continue
			}
			delete(pending, key)
			outcomes = append(outcomes, Outcome{Resolved: record})

		case eventExited:
			delete(pending, key)
		}
	}

	for _, key := range pendingOrder {
		base, ok := pending[key]
		if !ok {
			continue
		}
		outcomes = append(outcomes, Outcome{
			Unresolved: base,
			Reason:     "advertisement was not resolved",
		})
	}

	return outcomes
}

// parseBrowseLine splits one parsable line into its event marker, the base
// advertisement fields, and the remaining resolution fields (for '=' lines).
//
// Line shapes:
//
//	+;enp6s0;IPv4;Elgato\032Key\032Light\0328D7C;_elg._tcp;local
//	=;enp6s0;IPv4;Elgato\032Key\032Light\0328D7C;_elg._tcp;local;elgato-key-light-8d7c.local;192.168.0.92;9123;"pv=1.0" "md=..."
//	-;enp6s0;IPv4;Elgato\032Key\032Light\0328D7C;_elg._tcp;local
func parseBrowseLine(line string) (browseEvent, *Advertisement, []string, error) {
	fields := strings.Split(line, ";")
	if len(fields) < 6 {
		return 0, nil, nil, fmt.Errorf("expected at least 6 fields, got %d", len(fields))
	}

	if len(fields[0]) != 1 {
		return 0, nil, nil, fmt.Errorf("bad event marker %q", fields[0])
	}
	event := browseEvent(fields[0][0])
	switch event {
	case eventNew, eventResolved, eventExited:
	default:
		return 0, nil, nil, fmt.Errorf("unknown event marker %q", fields[0])
	}

	var proto Proto
	switch fields[2] {
	case "IPv4":
		proto = ProtoIPv4
	case "IPv6":
		proto = ProtoIPv6
	default:
		return 0, nil, nil, fmt.Errorf("unknown protocol %q", fields[2])
	}

	base := &Advertisement{
		Interface: fields[1],
		Proto:     proto,
		Name:      decodeAvahiEscapes(fields[3]),
		Service:   fields[4],
		Domain:    fields[5],
	}

	return event, base, fields[6:], nil
}

// parseResolvedFields builds a ServiceRecord from the fields following the
// base advertisement on an '=' line: target host, address, port, TXT data.
func parseResolvedFields(base *Advertisement, fields []string) (*ServiceRecord, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("resolved record needs host, address and port, got %d fields", len(fields))
	}

	addr := net.ParseIP(fields[1])
	if addr == nil {
		return nil, fmt.Errorf("bad address %q", fields[1])
	}

	port, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("bad port %q: %w", fields[2], err)
	}

	return &ServiceRecord{
		Advertisement: *base,
		TargetHost:    fields[0],
		Addr:          addr,
		Port:          uint16(port),
		// TXT data may itself contain ';' — keep the remaining fields raw
		Text: fields[3:],
	}, nil
}

// decodeAvahiEscapes undoes avahi's name escaping: "\." for a literal dot
// and "\NNN" decimal escapes for bytes outside the safe set (e.g. "\032"
// for a space).
func decodeAvahiEscapes(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out.WriteByte(s[i])
			continue
		}

		next := s[i+1]
		if next < '0' || next > '9' {
			out.WriteByte(next)
			i++
			continue
		}

		// Decimal escape, up to three digits
		j := i + 1
		for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		code, err := strconv.Atoi(s[i+1 : j])
		if err != nil || code > 255 {
			out.WriteByte(s[i])
			continue
		}
		out.WriteByte(byte(code))
		i = j - 1
	}

	return out.String()
}
