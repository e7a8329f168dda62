package logx

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// alertWriter forwards warn+ events to the operator channel. Delivery is
// best-effort: over-rate and failed sends are dropped so the alert path can
// never stall core logging.
type alertWriter struct {
	sender   Sender
	minLevel zerolog.Level
	limiter  *rate.Limiter
}

func (w *alertWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *alertWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.minLevel || !w.limiter.Allow() {
		return len(p), nil
	}
	if msg := formatAlert(p); msg != "" {
		_ = w.sender.SendText(msg)
	}
	return len(p), nil
}

// formatAlert renders a zerolog JSON line as short human-readable text.
func formatAlert(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), 3500)
	}

	lvl, _ := m["level"].(string)
	msg, _ := m["message"].(string)

	var b strings.Builder
	if lvl != "" {
		b.WriteString("[" + strings.ToUpper(lvl) + "] ")
	}
	b.WriteString(msg)
	for k, v := range m {
		switch k {
		case "time", "level", "message":
			continue
		}
		b.WriteString("\n- " + k + "=" + truncate(stringify(v), 600))
	}
	return truncate(b.String(), 3500)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func truncate(s string, maxN int) string {
	if len(s) <= maxN {
		return s
	}
	if maxN < 10 {
		return s[:maxN]
	}
	return s[:maxN-3] + "..."
}
