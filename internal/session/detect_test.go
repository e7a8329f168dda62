package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hearingbot/internal/config"
	"hearingbot/pkg/logx"
)

type fakeBrowser struct {
	// visibleAfter maps a selector value to the number of WaitFor calls
	// that must happen on it before it reports visible. 0 = immediately.
	visibleAfter map[string]int
	seen         map[string]int
	navigated    []string
}

func newFakeBrowser(visibleAfter map[string]int) *fakeBrowser {
	return &fakeBrowser{visibleAfter: visibleAfter, seen: map[string]int{}}
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeBrowser) WaitFor(_ context.Context, sel config.Selector, _ time.Duration) error {
	n := f.seen[sel.Value]
	f.seen[sel.Value] = n + 1
	after, ok := f.visibleAfter[sel.Value]
	if ok && n >= after {
		return nil
	}
	return ErrWaitTimeout
}

func (f *fakeBrowser) Click(_ context.Context, sel config.Selector, _ time.Duration) error {
	return f.WaitFor(context.Background(), sel, 0)
}

func (f *fakeBrowser) ForceClick(context.Context, config.Selector) error { return nil }
func (f *fakeBrowser) Close() error                                      { return nil }

func testDetector(b Browser, attempts int) *Detector {
	sels := config.SelectorsConfig{
		Session: []config.Selector{
			{Kind: config.ByID, Value: "pane-side"},
			{Kind: config.ByXPath, Value: "//div[@data-testid='chat-list']"},
		},
		QRCode: config.Selector{Kind: config.ByXPath, Value: "//div[@data-testid='qr-code']"},
	}
	return NewDetector(b, sels, config.AutomationConfig{MaxSessionRetries: attempts}, config.Timings{}, logx.Nop())
}

func TestProbeAuthenticatedFirstSelector(t *testing.T) {
	t.Parallel()
	b := newFakeBrowser(map[string]int{"pane-side": 0})
	if got := testDetector(b, 3).Probe(context.Background()); got != StateAuthenticated {
		t.Fatalf("Probe = %v, want authenticated", got)
	}
	if b.seen["//div[@data-testid='chat-list']"] != 0 {
		t.Error("fallback selector should not be probed once the first matched")
	}
}

func TestProbeAuthenticatedViaFallback(t *testing.T) {
	t.Parallel()
	b := newFakeBrowser(map[string]int{"//div[@data-testid='chat-list']": 0})
	if got := testDetector(b, 3).Probe(context.Background()); got != StateAuthenticated {
		t.Fatalf("Probe = %v, want authenticated", got)
	}
}

func TestProbeRequiresLoginStopsRetrying(t *testing.T) {
	t.Parallel()
	b := newFakeBrowser(map[string]int{"//div[@data-testid='qr-code']": 0})
	if got := testDetector(b, 3).Probe(context.Background()); got != StateRequiresLogin {
		t.Fatalf("Probe = %v, want requires_login", got)
	}
	if b.seen["pane-side"] != 1 {
		t.Errorf("session chain probed %d times, want 1 (QR terminates the probe)", b.seen["pane-side"])
	}
}

func TestProbeUnknownAfterBudget(t *testing.T) {
	t.Parallel()
	b := newFakeBrowser(nil)
	if got := testDetector(b, 3).Probe(context.Background()); got != StateUnknown {
		t.Fatalf("Probe = %v, want unknown", got)
	}
	if b.seen["pane-side"] != 3 {
		t.Errorf("attempts = %d, want 3", b.seen["pane-side"])
	}
	if b.seen["//div[@data-testid='qr-code']"] != 3 {
		t.Errorf("QR checks = %d, want 3", b.seen["//div[@data-testid='qr-code']"])
	}
}

func TestProbeRecoversOnLaterAttempt(t *testing.T) {
	t.Parallel()
	b := newFakeBrowser(map[string]int{"pane-side": 1})
	if got := testDetector(b, 3).Probe(context.Background()); got != StateAuthenticated {
		t.Fatalf("Probe = %v, want authenticated", got)
	}
	if b.seen["pane-side"] != 2 {
		t.Errorf("attempts = %d, want 2", b.seen["pane-side"])
	}
}

func TestBootstrapSkipsWithExistingProfile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Default"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Default", "Preferences"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := testDetector(newFakeBrowser(nil), 1)
	d.confirm = func() error {
		t.Fatal("confirm must not be called when a profile exists")
		return nil
	}
	if err := d.Bootstrap(context.Background(), dir, time.Second); err != nil {
		t.Fatalf("Bootstrap error: %v", err)
	}
}

func TestBootstrapFirstLoginBacksUpProfile(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "profile_shs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	confirmed := false
	d := testDetector(newFakeBrowser(map[string]int{"pane-side": 0}), 1)
	d.confirm = func() error { confirmed = true; return nil }

	if err := d.Bootstrap(context.Background(), dir, time.Second); err != nil {
		t.Fatalf("Bootstrap error: %v", err)
	}
	if !confirmed {
		t.Error("operator confirmation was not requested")
	}
	if _, err := os.Stat(filepath.Join(dir+"_Backup", "marker")); err != nil {
		t.Errorf("profile backup missing: %v", err)
	}
}

func TestBootstrapLoginTimeoutIsSessionError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() // no Default/Preferences
	d := testDetector(newFakeBrowser(nil), 1)
	d.confirm = func() error { return nil }
	err := d.Bootstrap(context.Background(), dir, time.Millisecond)
	if !errors.Is(err, ErrSession) {
		t.Fatalf("err = %v, want ErrSession", err)
	}
}
