package tui

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/keylightctl/keylightctl/internal/discovery"
)

// testDiscoveryModel builds a discovery screen without starting the
// background poller
func testDiscoveryModel() DiscoveryModel {
	lightList := list.New([]list.Item{}, lightDelegate{width: MinTerminalWidth}, 0, 0)
	lightList.SetShowStatusBar(false)

	return DiscoveryModel{
		Scanning:  true,
		LightList: lightList,
		Spinner:   spinner.New(),
		Help:      help.New(),
		results:   make(chan discovery.PollResult, 1),
	}
}

// A pass that failed outright (say, the Avahi daemon is stopped) must end
// the scanning state and surface the error, not leave the screen searching
// forever.
func TestDiscoveryModelSurfacesScanFailure(t *testing.T) {
	scanErr := errors.New("local discovery unavailable")

	m := testDiscoveryModel()
	updated, _ := m.Update(scanResultsMsg{err: scanErr})
	dm, ok := updated.(DiscoveryModel)
	if !ok {
		t.Fatalf("Update returned %T, want DiscoveryModel", updated)
	}

	if dm.Scanning {
		t.Error("still marked as scanning after a failed pass")
	}
	if !errors.Is(dm.Err, scanErr) {
		t.Errorf("Err = %v, want %v", dm.Err, scanErr)
	}
	if !strings.Contains(dm.renderResults(), "Scan failed") {
		t.Error("results view does not report the failed scan")
	}
}

func TestDiscoveryModelRecoversAfterScanFailure(t *testing.T) {
	m := testDiscoveryModel()

	updated, _ := m.Update(scanResultsMsg{err: errors.New("boom")})
	dm := updated.(DiscoveryModel)

	outcomes := []discovery.Outcome{
		{Resolved: &discovery.ServiceRecord{
			Advertisement: discovery.Advertisement{Name: "Elgato Key Light 8D7C"},
			Addr:          net.ParseIP("192.0.2.10"),
			Port:          9123,
		}},
	}
	updated, _ = dm.Update(scanResultsMsg{outcomes: outcomes})
	dm = updated.(DiscoveryModel)

	if dm.Err != nil {
		t.Errorf("Err = %v after a successful pass, want nil", dm.Err)
	}
	if got := len(dm.LightList.Items()); got != 1 {
		t.Errorf("list has %d items, want 1", got)
	}
}

// waitForResults carries a pass failure through to the message the screen
// consumes
func TestWaitForResultsCarriesError(t *testing.T) {
	m := testDiscoveryModel()
	passErr := errors.New("avahi-browse exited")
	m.results <- discovery.PollResult{Err: passErr}

	msg := m.waitForResults()()
	resultMsg, ok := msg.(scanResultsMsg)
	if !ok {
		t.Fatalf("waitForResults returned %T, want scanResultsMsg", msg)
	}
	if !errors.Is(resultMsg.err, passErr) {
		t.Errorf("err = %v, want %v", resultMsg.err, passErr)
	}
}
