package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hearingbot/internal/config"
	"hearingbot/internal/retry"
	"hearingbot/pkg/logx"
)

var errLoginRequired = errors.New("login marker visible")

// Detector resolves the session state through the ordered selector chain.
type Detector struct {
	browser Browser
	chain   []config.Selector
	qr      config.Selector
	policy  retry.Policy
	selWait time.Duration
	qrWait  time.Duration
	log     logx.Logger

	// confirm blocks until the operator finishes the out-of-band login
	// step. Overridable in tests; defaults to "press Enter".
	confirm func() error
}

func NewDetector(b Browser, sels config.SelectorsConfig, auto config.AutomationConfig, t config.Timings, log logx.Logger) *Detector {
	return &Detector{
		browser: b,
		chain:   sels.Session,
		qr:      sels.QRCode,
		policy:  retry.Policy{Attempts: auto.MaxSessionRetries, Backoff: t.SessionRetryBackoff},
		selWait: t.SessionSelectorTimeout,
		qrWait:  t.QRCheckTimeout,
		log:     log,
		confirm: waitForEnter,
	}
}

// Probe recomputes the session state. Each attempt walks the session chain
// in order (first visible selector wins, Authenticated), then checks the
// login marker with a shorter wait (RequiresLogin). Exhausting the attempt
// budget yields Unknown, which callers must treat as a failed run.
func (d *Detector) Probe(ctx context.Context) State {
	err := d.policy.Do(ctx, func(attempt int) error {
		d.log.Info("checking session",
			logx.Int("attempt", attempt),
			logx.Int("max_attempts", d.policy.Attempts))

		for _, sel := range d.chain {
			if err := d.browser.WaitFor(ctx, sel, d.selWait); err == nil {
				d.log.Info("session active", logx.String("selector", sel.String()))
				return nil
			}
		}

		if !d.qr.IsZero() {
			if err := d.browser.WaitFor(ctx, d.qr, d.qrWait); err == nil {
				d.log.Warn("login marker detected, session requires login")
				return retry.Stop(errLoginRequired)
			}
		}

		return fmt.Errorf("attempt %d: no session indicator found", attempt)
	})

	switch {
	case err == nil:
		return StateAuthenticated
	case errors.Is(err, errLoginRequired):
		return StateRequiresLogin
	default:
		d.log.Error("session state unresolved after all retries", logx.Err(err))
		return StateUnknown
	}
}

// Bootstrap handles the first-run login. When the profile has no persisted
// session artifact the operator must scan the QR code; we block for their
// confirmation, then wait for the primary authenticated selector. Timing out
// here is fatal. The profile is backed up after the first successful login.
func (d *Detector) Bootstrap(ctx context.Context, userDataDir string, loginTimeout time.Duration) error {
	prefs := filepath.Join(userDataDir, "Default", "Preferences")
	if _, err := os.Stat(prefs); err == nil {
		d.log.Info("existing session profile found", logx.String("profile", userDataDir))
		return nil
	}

	d.log.Warn("no previous session found; scan the QR code, then press Enter")
	if err := d.confirm(); err != nil {
		return fmt.Errorf("%w: login confirmation: %v", ErrSession, err)
	}

	if len(d.chain) == 0 {
		return fmt.Errorf("%w: no session selectors configured", ErrSession)
	}
	if err := d.browser.WaitFor(ctx, d.chain[0], loginTimeout); err != nil {
		return fmt.Errorf("%w: login not completed within %s: %v", ErrSession, loginTimeout, err)
	}
	d.log.Info("login successful")

	backupDir := userDataDir + "_Backup"
	if _, err := os.Stat(backupDir); os.IsNotExist(err) {
		if err := backupProfile(userDataDir, backupDir, d.log); err != nil {
			d.log.Warn("profile backup failed", logx.Err(err))
		}
	}
	return nil
}

func waitForEnter() error {
	_, err := bufio.NewReader(os.Stdin).ReadString('\n')
	return err
}
