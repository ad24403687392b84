package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/keylightctl/keylightctl/internal/logging"
)

// DefaultPollInterval is the default delay between discovery passes
const DefaultPollInterval = 30 * time.Second

// PollResult is what one discovery pass produced: its outcomes, or the
// error that prevented them. Failures are published like any other pass
// so consumers can surface them; a pass failing invisibly is unacceptable.
type PollResult struct {
	Outcomes []Outcome
	Err      error
}

// Poller periodically re-runs discovery on a dedicated goroutine and
// publishes each pass's result to a consumer channel. Outcomes are
// produced fresh on every pass; deduplication against earlier passes is
// the consumer's concern.
type Poller struct {
	browser  Browser
	interval time.Duration
	results  chan<- PollResult
}

// NewPoller creates a poller that publishes to results every interval.
// The caller owns the channel and must keep receiving from it; a pass
// whose result cannot be delivered immediately is dropped, never queued.
func NewPoller(browser Browser, interval time.Duration, results chan<- PollResult) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		browser:  browser,
		interval: interval,
		results:  results,
	}
}

// Run blocks, performing one pass immediately and then one per tick until
// the context is cancelled. Cancellation is cooperative: it is honored
// between passes, not mid-browse (a browse in flight still respects the
// context through the browser itself).
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pass(ctx)

	for {
		select {
		case <-ticker.C:
			p.pass(ctx)

		case <-ctx.Done():
			return
		}
	}
}

// Start runs the poll loop on its own goroutine
func (p *Poller) Start(ctx context.Context) {
	go p.Run(ctx)
}

func (p *Poller) pass(ctx context.Context) {
	outcomes, err := p.browser.Discover(ctx)
	if err != nil {
		logging.Warn("discovery pass failed", zap.Error(err))
	} else {
		resolved := len(Records(outcomes))
		logging.LogDiscoveryPass(ServiceType, resolved, len(outcomes)-resolved)
	}

	select {
	case p.results <- PollResult{Outcomes: outcomes, Err: err}:
	case <-ctx.Done():
	default:
		logging.Debug("dropping discovery results, consumer not ready",
			zap.Int("outcomes", len(outcomes)),
		)
	}
}
