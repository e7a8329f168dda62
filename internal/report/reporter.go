// Package report aggregates per-record dispatch outcomes into the summary
// artifact and the admin notification.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hearingbot/internal/dispatch"
	"hearingbot/internal/retry"
	"hearingbot/pkg/logx"
)

// Sender is the dispatch capability the reporter borrows for the aggregate
// notification. *dispatch.Dispatcher satisfies it.
type Sender interface {
	Send(ctx context.Context, client, contact, text string) dispatch.Status
}

// Reporter accumulates one result per processed record, in processing order.
// Reporting failures are logged and never invalidate recorded outcomes.
type Reporter struct {
	results []dispatch.Result
	log     logx.Logger
	now     func() time.Time
}

func New(log logx.Logger) *Reporter {
	return &Reporter{log: log, now: time.Now}
}

func (r *Reporter) Record(res dispatch.Result) {
	r.results = append(r.results, res)
}

func (r *Reporter) Results() []dispatch.Result { return r.results }

func (r *Reporter) Total() int { return len(r.results) }

func (r *Reporter) Successes() int {
	n := 0
	for _, res := range r.results {
		if res.Status == dispatch.StatusSuccess {
			n++
		}
	}
	return n
}

// Summary renders the aggregate text notification: counts plus a per-client
// status listing.
func (r *Reporter) Summary(hearingDate time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "WhatsApp Automation Summary - %s\n\n", r.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Successfully delivered messages for hearing date %s to %d out of %d clients.\n\n",
		hearingDate.Format("2006-01-02"), r.Successes(), r.Total())

	b.WriteString("Detailed Summary:\n")
	width := len("Client")
	for _, res := range r.results {
		if len(res.Client) > width {
			width = len(res.Client)
		}
	}
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Client", "Message Status")
	for _, res := range r.results {
		fmt.Fprintf(&b, "%-*s  %s\n", width, res.Client, res.Status)
	}
	return b.String()
}

// SaveCSV persists the summary table. The caller treats failures as
// reporting errors: logged, never fatal.
func (r *Reporter) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Client", "Phone Number", "Next Hearing Date", "Message Status"}); err != nil {
		return err
	}
	for _, res := range r.results {
		date := ""
		if res.NextHearingDate != nil {
			date = res.NextHearingDate.Format("2006-01-02")
		}
		if err := w.Write([]string{res.Client, res.Contact, date, string(res.Status)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Notify sends the aggregate summary to each admin contact through the
// dispatcher, pacing between sends. Failures are logged only.
func (r *Reporter) Notify(ctx context.Context, sender Sender, contacts []string, hearingDate time.Time, pause time.Duration) {
	if len(contacts) == 0 {
		return
	}
	text := r.Summary(hearingDate)
	for _, contact := range contacts {
		r.log.Info("sending summary notification", logx.String("contact", contact))
		if status := sender.Send(ctx, "Admin", contact, text); status != dispatch.StatusSuccess {
			r.log.Error("summary notification failed", logx.String("contact", contact))
		}
		if err := retry.Sleep(ctx, pause); err != nil {
			return
		}
	}
}
