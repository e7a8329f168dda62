package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"hearingbot/internal/config"
	"hearingbot/internal/records"
	"hearingbot/internal/retry"
	"hearingbot/internal/session"
	"hearingbot/pkg/logx"
)

// Attempt-level failure conditions. These never leave the dispatcher: retry
// exhaustion degrades to a Failed result and the run moves on.
var (
	errChatLoadTimeout = errors.New("chat interface failed to load")
	errControlNotFound = errors.New("send control not found with any selector")
)

// Dispatcher sends messages through an authenticated browser session via the
// client's deep-link entry point.
type Dispatcher struct {
	browser    session.Browser
	chatLoaded []config.Selector
	sendButton []config.Selector
	policy     retry.Policy
	timings    config.Timings
	log        logx.Logger
	now        func() time.Time
}

func New(b session.Browser, sels config.SelectorsConfig, auto config.AutomationConfig, t config.Timings, log logx.Logger) *Dispatcher {
	return &Dispatcher{
		browser:    b,
		chatLoaded: sels.ChatLoaded,
		sendButton: sels.SendButton,
		policy:     retry.Policy{Attempts: auto.MaxMessageRetries, Backoff: t.DispatchRetryBackoff},
		timings:    t,
		log:        log,
		now:        time.Now,
	}
}

// SendRecord dispatches one rendered message for a record and produces its
// terminal result.
func (d *Dispatcher) SendRecord(ctx context.Context, rec records.ClientRecord, text string) Result {
	status := d.Send(ctx, rec.Client, rec.Contact, text)
	return Result{
		Client:          rec.Client,
		Contact:         rec.Contact,
		NextHearingDate: rec.NextHearingDate,
		Status:          status,
		At:              d.now(),
	}
}

// Send runs the full attempt cycle (navigate, wait for chat, locate control,
// activate) under the retry policy. Returns Failed only after every attempt
// is exhausted; the caller continues with the next record either way.
func (d *Dispatcher) Send(ctx context.Context, client, contact, text string) Status {
	log := d.log.With(logx.String("client", client), logx.String("contact", contact))

	err := d.policy.Do(ctx, func(attempt int) error {
		log.Info("sending message",
			logx.Int("attempt", attempt),
			logx.Int("max_attempts", d.policy.Attempts))
		if err := d.attempt(ctx, contact, text); err != nil {
			log.Warn("send attempt failed", logx.Int("attempt", attempt), logx.Err(err))
			return err
		}
		return nil
	})
	if err != nil {
		log.Error("message failed after all retries", logx.Err(err))
		return StatusFailed
	}
	log.Info("message sent")
	return StatusSuccess
}

func (d *Dispatcher) attempt(ctx context.Context, contact, text string) error {
	target := deepLink(contact, text)
	if err := d.browser.Navigate(ctx, target); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	if !d.waitAny(ctx, d.chatLoaded, d.timings.ChatLoadedTimeout) {
		return errChatLoadTimeout
	}

	control := d.findControl(ctx)
	if control == nil {
		return errControlNotFound
	}

	// Let the compose box settle before touching the control.
	if err := retry.Sleep(ctx, d.timings.PreClickPause); err != nil {
		return err
	}

	if err := d.browser.Click(ctx, *control, d.timings.SendButtonTimeout); err != nil {
		if !errors.Is(err, session.ErrNotInteractable) {
			return err
		}
		d.log.Debug("primary click failed, forcing activation", logx.String("selector", control.String()))
		if err := d.browser.ForceClick(ctx, *control); err != nil {
			return err
		}
	}

	return retry.Sleep(ctx, d.timings.PostClickSettle)
}

// waitAny probes a selector chain in order; the first visible match wins.
func (d *Dispatcher) waitAny(ctx context.Context, chain []config.Selector, timeout time.Duration) bool {
	for _, sel := range chain {
		if err := d.browser.WaitFor(ctx, sel, timeout); err == nil {
			return true
		}
	}
	return false
}

func (d *Dispatcher) findControl(ctx context.Context) *config.Selector {
	for i := range d.sendButton {
		sel := d.sendButton[i]
		if err := d.browser.WaitFor(ctx, sel, d.timings.SendButtonTimeout); err == nil {
			d.log.Debug("send control located", logx.String("selector", sel.String()))
			return &sel
		}
	}
	return nil
}

// deepLink builds the client's send URL for a contact and message text.
func deepLink(contact, text string) string {
	return session.WebClientURL + "/send?phone=" + url.QueryEscape(contact) + "&text=" + url.QueryEscape(text)
}
