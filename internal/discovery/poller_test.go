package discovery

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubBrowser returns a fixed outcome batch (or error) on every pass
type stubBrowser struct {
	outcomes []Outcome
	err      error
	calls    chan struct{}
}

func (s *stubBrowser) Discover(ctx context.Context) ([]Outcome, error) {
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return s.outcomes, s.err
}

func TestPoller_PublishesOutcomes(t *testing.T) {
	outcomes := []Outcome{
		{Resolved: &ServiceRecord{Advertisement: Advertisement{Name: "Elgato Key Light 8D7C"}}},
	}
	browser := &stubBrowser{outcomes: outcomes, calls: make(chan struct{}, 8)}

	results := make(chan PollResult, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := NewPoller(browser, 10*time.Millisecond, results)
	poller.Start(ctx)

	select {
	case got := <-results:
		if got.Err != nil {
			t.Fatalf("unexpected pass error: %v", got.Err)
		}
		if len(got.Outcomes) != 1 || got.Outcomes[0].Resolved == nil {
			t.Errorf("received %v, want one resolved outcome", got.Outcomes)
		}
	case <-time.After(time.Second):
		t.Fatal("poller never published a result")
	}
}

func TestPoller_RepeatsOnInterval(t *testing.T) {
	browser := &stubBrowser{calls: make(chan struct{}, 8)}

	results := make(chan PollResult, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := NewPoller(browser, 5*time.Millisecond, results)
	poller.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-browser.calls:
		case <-time.After(time.Second):
			t.Fatalf("poller stopped after %d passes", i)
		}
	}
}

func TestPoller_StopsOnCancel(t *testing.T) {
	browser := &stubBrowser{calls: make(chan struct{}, 8)}

	results := make(chan PollResult) // unbuffered and never read
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	poller := NewPoller(browser, 5*time.Millisecond, results)
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	// Let at least one pass happen, then cancel
	select {
	case <-browser.calls:
	case <-time.After(time.Second):
		t.Fatal("poller never ran a pass")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}

func TestPoller_PublishesDiscoveryErrors(t *testing.T) {
	passErr := errors.New("avahi-browse exited")
	browser := &stubBrowser{err: passErr, calls: make(chan struct{}, 8)}

	results := make(chan PollResult, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := NewPoller(browser, 5*time.Millisecond, results)
	poller.Start(ctx)

	// A failing pass must be published, not silently dropped, so that
	// consumers can tell the user discovery is broken.
	select {
	case got := <-results:
		if !errors.Is(got.Err, passErr) {
			t.Errorf("published error %v, want %v", got.Err, passErr)
		}
		if len(got.Outcomes) != 0 {
			t.Errorf("published %d outcomes alongside the error, want none", len(got.Outcomes))
		}
	case <-time.After(time.Second):
		t.Fatal("failing pass was never published")
	}

	// The loop must survive failing passes
	for i := 0; i < 2; i++ {
		select {
		case <-browser.calls:
		case <-time.After(time.Second):
			t.Fatalf("poller stopped after %d failing passes", i)
		}
	}
}
