package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hearingbot/internal/config"
	"hearingbot/internal/history"
	"hearingbot/internal/session"
	"hearingbot/pkg/logx"
)

// fakeBrowser treats every selector in visible as present; an empty map
// means everything is visible.
type fakeBrowser struct {
	mu        sync.Mutex
	visible   map[string]bool
	navigated []string
	closed    bool
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigated = append(b.navigated, url)
	return nil
}

func (b *fakeBrowser) WaitFor(_ context.Context, sel config.Selector, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.visible == nil || b.visible[sel.Value] {
		return nil
	}
	return session.ErrWaitTimeout
}

func (b *fakeBrowser) Click(ctx context.Context, sel config.Selector, timeout time.Duration) error {
	return b.WaitFor(ctx, sel, timeout)
}

func (b *fakeBrowser) ForceClick(context.Context, config.Selector) error { return nil }

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fastConfig builds a runnable configuration rooted at dir with millisecond
// timings and a pre-authenticated profile directory.
func fastConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.Default()

	near := time.Now().AddDate(0, 0, cfg.BusinessLogic.HearingDateOffsetDays).Format("2006-01-02")
	writeFile(t, filepath.Join(dir, "clients.csv"), strings.Join([]string{
		"Client,Contact,NextHearingDate,Category,TypRnRy,Parties",
		fmt.Sprintf("Amit Shah,+91 98765 43210,%s,Active,Civil,Shah v. Mehta", near),
		fmt.Sprintf("Priya Rao,+919812345678,%s,Active,Criminal,State v. Rao", near),
	}, "\n")+"\n")
	writeFile(t, filepath.Join(dir, "active.txt"),
		"Dear {Client}, your hearing for {Parties} is on {NextHearingDate}.")
	writeFile(t, filepath.Join(dir, "profile", "Default", "Preferences"), "{}")

	cfg.Paths.CSVPath = filepath.Join(dir, "clients.csv")
	cfg.Paths.Templates = map[string]string{"Active": filepath.Join(dir, "active.txt")}
	cfg.Paths.SummaryCSVPath = filepath.Join(dir, "summary.csv")
	cfg.Paths.UserDataSHS = filepath.Join(dir, "profile")
	cfg.BusinessLogic.SelectedCategories = []string{"Active"}
	cfg.Notifications.Contact1 = "+911111111111"
	cfg.History.Path = filepath.Join(dir, "history.db")

	cfg.Automation = config.AutomationConfig{
		MaxSessionRetries:      1,
		SessionSelectorTimeout: "1ms",
		QRCheckTimeout:         "1ms",
		SessionRetryBackoff:    "1ms",
		LoginTimeout:           "1ms",
		MaxMessageRetries:      1,
		ChatLoadedTimeout:      "1ms",
		SendButtonTimeout:      "1ms",
		DispatchRetryBackoff:   "1ms",
		PreClickPause:          "1ms",
		PostClickSettle:        "1ms",
		MessageSendDelay:       "1ms",
		CleanupPause:           "1ms",
	}
	return cfg
}

func newTestApp(b session.Browser) *App {
	a := New(logx.Nop())
	a.newBrowser = func(context.Context, config.ChromeConfig, string, logx.Logger) (session.Browser, error) {
		return b, nil
	}
	return a
}

func TestRunFullPass(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := fastConfig(t, dir)
	browser := &fakeBrowser{}

	if err := newTestApp(browser).Run(context.Background(), cfg, ProfileSHS); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !browser.closed {
		t.Error("browser was not closed")
	}
	var clientLinks, adminLinks int
	for _, url := range browser.navigated {
		switch {
		case strings.Contains(url, "phone=%2B919876543210"),
			strings.Contains(url, "phone=%2B919812345678"):
			clientLinks++
		case strings.Contains(url, "phone=%2B911111111111"):
			adminLinks++
		}
	}
	if clientLinks != 2 {
		t.Errorf("client deep links = %d, want 2 (%q)", clientLinks, browser.navigated)
	}
	if adminLinks != 1 {
		t.Errorf("admin deep links = %d, want 1", adminLinks)
	}

	summary, err := os.ReadFile(cfg.Paths.SummaryCSVPath)
	if err != nil {
		t.Fatalf("summary csv: %v", err)
	}
	for _, want := range []string{"Amit Shah", "Priya Rao", "Success"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q", want)
		}
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("history open: %v", err)
	}
	defer store.Close()
	runs, err := store.LastRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("last runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("recorded runs = %d, want 1", len(runs))
	}
	if runs[0].Sent != 2 || runs[0].Total != 2 {
		t.Errorf("run counts = %d/%d, want 2/2", runs[0].Sent, runs[0].Total)
	}
	if runs[0].Profile != ProfileSHS {
		t.Errorf("run profile = %q", runs[0].Profile)
	}
}

func TestRunAbortsWhenLoginRequired(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := fastConfig(t, dir)
	// Only the QR code resolves: the session is unauthenticated.
	browser := &fakeBrowser{visible: map[string]bool{cfg.Selectors.QRCode.Value: true}}

	err := newTestApp(browser).Run(context.Background(), cfg, ProfileSHS)
	if !errors.Is(err, session.ErrSession) {
		t.Fatalf("err = %v, want session error", err)
	}
	if !browser.closed {
		t.Error("browser must be closed on abort")
	}
	for _, url := range browser.navigated {
		if strings.Contains(url, "phone=") {
			t.Errorf("dispatched despite unauthenticated session: %s", url)
		}
	}
}

func TestRunMissingCSVIsFatalBeforeBrowser(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := fastConfig(t, dir)
	cfg.Paths.CSVPath = filepath.Join(dir, "absent.csv")

	a := New(logx.Nop())
	a.newBrowser = func(context.Context, config.ChromeConfig, string, logx.Logger) (session.Browser, error) {
		t.Fatal("browser must not be acquired when the record source is bad")
		return nil, nil
	}
	if err := a.Run(context.Background(), cfg, ProfileSHS); err == nil {
		t.Fatal("want error for missing record source")
	}
}

func TestResolveProfile(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in, want string
	}{
		{"", ProfileSHS},
		{"shs", ProfileSHS},
		{"sud", ProfileSUD},
		{"bogus", ProfileSHS},
	} {
		if got := ResolveProfile(tc.in, logx.Nop()); got != tc.want {
			t.Errorf("ResolveProfile(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
