// Package app wires the pipeline: config, records, templates, session,
// dispatch, reporting, history.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"hearingbot/internal/config"
	"hearingbot/internal/dispatch"
	"hearingbot/internal/history"
	"hearingbot/internal/message"
	"hearingbot/internal/records"
	"hearingbot/internal/report"
	"hearingbot/internal/retry"
	"hearingbot/internal/session"
	"hearingbot/pkg/logx"
)

// Profiles recognized by the command surface.
const (
	ProfileSHS = "shs"
	ProfileSUD = "sud"
)

// ResolveProfile maps the optional positional argument to a known profile,
// warning and defaulting on anything unrecognized.
func ResolveProfile(arg string, log logx.Logger) string {
	switch arg {
	case "":
		return ProfileSHS
	case ProfileSHS, ProfileSUD:
		return arg
	default:
		log.Warn("unrecognized profile, using default",
			logx.String("given", arg), logx.String("default", ProfileSHS))
		return ProfileSHS
	}
}

// App runs send passes. The browser constructor is injectable so the whole
// pass is testable without Chrome.
type App struct {
	log        logx.Logger
	newBrowser func(ctx context.Context, cfg config.ChromeConfig, userDataDir string, log logx.Logger) (session.Browser, error)
}

func New(log logx.Logger) *App {
	return &App{
		log: log,
		newBrowser: func(ctx context.Context, cfg config.ChromeConfig, dir string, log logx.Logger) (session.Browser, error) {
			return session.NewChrome(ctx, cfg, dir, log)
		},
	}
}

type queuedMessage struct {
	rec  records.ClientRecord
	text string
}

// Run executes one full pass. Fatal error classes (data, template, session)
// abort with a non-nil error; per-record failures degrade to Failed results
// and the pass completes.
func (a *App) Run(ctx context.Context, cfg *config.Config, profile string) error {
	started := time.Now()
	log := a.log.With(logx.String("profile", profile))
	log.Info("starting automation pass")

	timings, err := cfg.Automation.Timings()
	if err != nil {
		return err
	}

	// Everything that can fail without a browser happens first: the
	// session is never acquired for a pass that cannot dispatch.
	loader := records.NewLoader(cfg.Paths.CSVPath, cfg.BusinessLogic, log)
	recs, err := loader.Load()
	if err != nil {
		return err
	}

	templates, err := message.LoadStore(cfg.Paths.Templates, cfg.BusinessLogic.SelectedCategories, log)
	if err != nil {
		return err
	}

	targets := records.ComputeTargets(started,
		cfg.BusinessLogic.HearingDateOffsetDays,
		cfg.BusinessLogic.FutureDateOffsetDays)
	selected := records.Filter(recs, cfg.BusinessLogic.SelectedCategories, targets)
	log.Info("records filtered",
		logx.Int("selected", len(selected)),
		logx.Int("total", len(recs)),
		logx.Time("target_near", targets.Near))

	queue := make([]queuedMessage, 0, len(selected))
	for _, rec := range selected {
		tmpl, ok := templates.Get(rec.Category)
		if !ok {
			log.Warn("no template for category, record skipped",
				logx.String("client", rec.Client),
				logx.String("category", rec.Category))
			continue
		}
		queue = append(queue, queuedMessage{rec: rec, text: message.Render(tmpl, rec)})
	}
	if len(queue) == 0 {
		log.Warn("no messages to send")
		return nil
	}

	browser, err := a.newBrowser(ctx, cfg.Chrome, cfg.Paths.UserDataDir(profile), log)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrSession, err)
	}
	defer func() {
		// Final pause lets the client flush the last message before the
		// session is torn down. Closing happens on every exit path.
		_ = retry.Sleep(context.Background(), timings.CleanupPause)
		_ = browser.Close()
		log.Info("browser session closed")
	}()

	detector := session.NewDetector(browser, cfg.Selectors, cfg.Automation, timings, log)
	if err := detector.Bootstrap(ctx, cfg.Paths.UserDataDir(profile), timings.LoginTimeout); err != nil {
		return err
	}
	if state := detector.Probe(ctx); state != session.StateAuthenticated {
		return fmt.Errorf("%w: session state %s, aborting before dispatch", session.ErrSession, state)
	}

	dispatcher := dispatch.New(browser, cfg.Selectors, cfg.Automation, timings, log)
	reporter := report.New(log)

	// Human pacing: one record at a time, spaced by the send delay.
	limiter := rate.NewLimiter(rate.Every(timings.MessageSendDelay), 1)
	for i, q := range queue {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		log.Info("processing record",
			logx.Int("index", i+1),
			logx.Int("of", len(queue)),
			logx.String("client", q.rec.Client))
		res := dispatcher.SendRecord(ctx, q.rec, q.text)
		reporter.Record(res)
	}

	reporter.Notify(ctx, dispatcher, cfg.Notifications.AdminContacts(), targets.Near, timings.MessageSendDelay)
	if err := reporter.SaveCSV(cfg.Paths.SummaryCSVPath); err != nil {
		log.Error("summary save failed", logx.String("path", cfg.Paths.SummaryCSVPath), logx.Err(err))
	} else {
		log.Info("summary saved", logx.String("path", cfg.Paths.SummaryCSVPath))
	}

	a.recordHistory(ctx, cfg, profile, started, targets, reporter)

	log.Info("automation pass completed",
		logx.Int("sent", reporter.Successes()),
		logx.Int("total", reporter.Total()),
		logx.Duration("took", time.Since(started)))
	return nil
}

func (a *App) recordHistory(ctx context.Context, cfg *config.Config, profile string, started time.Time, targets records.TargetDates, reporter *report.Reporter) {
	if cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		a.log.Error("history store unavailable", logx.String("path", cfg.History.Path), logx.Err(err))
		return
	}
	defer store.Close()

	run := history.Run{
		ID:         history.NewRunID(started),
		Profile:    profile,
		StartedAt:  started,
		FinishedAt: time.Now(),
		TargetNear: targets.Near,
		TargetFar:  targets.Far,
		Total:      reporter.Total(),
		Sent:       reporter.Successes(),
		Failed:     reporter.Total() - reporter.Successes(),
	}
	if err := store.RecordRun(ctx, run, reporter.Results()); err != nil {
		a.log.Error("history write failed", logx.Err(err))
		return
	}
	a.log.Info("run recorded", logx.String("run_id", run.ID))
}
