package config

import (
	"fmt"
	"strings"
	"time"
)

func parseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func parseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := parseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Timings are the automation duration knobs resolved from their document
// string form.
type Timings struct {
	SessionSelectorTimeout time.Duration
	QRCheckTimeout         time.Duration
	SessionRetryBackoff    time.Duration
	LoginTimeout           time.Duration

	ChatLoadedTimeout    time.Duration
	SendButtonTimeout    time.Duration
	DispatchRetryBackoff time.Duration
	PreClickPause        time.Duration
	PostClickSettle      time.Duration
	MessageSendDelay     time.Duration
	CleanupPause         time.Duration
}

// Timings resolves all duration strings, substituting defaults for empty
// fields and rejecting malformed ones.
func (a AutomationConfig) Timings() (Timings, error) {
	var (
		t   Timings
		err error
	)
	def := Default().Automation
	fields := []struct {
		dst  *time.Duration
		path string
		raw  string
		fall string
	}{
		{&t.SessionSelectorTimeout, "automation_settings.session_selector_timeout", a.SessionSelectorTimeout, def.SessionSelectorTimeout},
		{&t.QRCheckTimeout, "automation_settings.qr_check_timeout", a.QRCheckTimeout, def.QRCheckTimeout},
		{&t.SessionRetryBackoff, "automation_settings.session_retry_backoff", a.SessionRetryBackoff, def.SessionRetryBackoff},
		{&t.LoginTimeout, "automation_settings.login_timeout", a.LoginTimeout, def.LoginTimeout},
		{&t.ChatLoadedTimeout, "automation_settings.chat_loaded_timeout", a.ChatLoadedTimeout, def.ChatLoadedTimeout},
		{&t.SendButtonTimeout, "automation_settings.send_button_timeout", a.SendButtonTimeout, def.SendButtonTimeout},
		{&t.DispatchRetryBackoff, "automation_settings.dispatch_retry_backoff", a.DispatchRetryBackoff, def.DispatchRetryBackoff},
		{&t.PreClickPause, "automation_settings.pre_click_pause", a.PreClickPause, def.PreClickPause},
		{&t.PostClickSettle, "automation_settings.post_click_settle", a.PostClickSettle, def.PostClickSettle},
		{&t.MessageSendDelay, "automation_settings.message_send_delay", a.MessageSendDelay, def.MessageSendDelay},
		{&t.CleanupPause, "automation_settings.cleanup_pause", a.CleanupPause, def.CleanupPause},
	}
	for _, f := range fields {
		fall, _ := time.ParseDuration(f.fall)
		*f.dst, err = parseDurationOrDefault(f.path, f.raw, fall)
		if err != nil {
			return Timings{}, err
		}
	}
	return t, nil
}
