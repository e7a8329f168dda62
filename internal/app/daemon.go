package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"hearingbot/internal/config"
	"hearingbot/pkg/logx"
)

// Daemon runs scheduled passes until the context is cancelled. The cron
// schedule is fixed at startup; config reloads picked up by the watcher
// apply to the next scheduled pass.
type Daemon struct {
	app     *App
	log     logx.Logger
	profile string

	mu  sync.Mutex
	cfg *config.Config
}

func NewDaemon(a *App, cfg *config.Config, profile string) *Daemon {
	return &Daemon{app: a, log: a.log, profile: profile, cfg: cfg}
}

func (d *Daemon) current() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

func (d *Daemon) swap(cfg *config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	d.log.Info("configuration reloaded, applies to next pass")
}

// Run blocks until ctx is cancelled. Pass failures are logged and alerted
// but never stop the schedule.
func (d *Daemon) Run(ctx context.Context, cfgPath string) error {
	go func() {
		if err := config.Watch(ctx, cfgPath, d.log, d.swap); err != nil && ctx.Err() == nil {
			d.log.Error("config watcher stopped", logx.Err(err))
		}
	}()

	spec := d.current().Schedule.Cron
	// One pass at a time; a tick that fires mid-pass is skipped, not queued.
	var running atomic.Bool
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if !running.CompareAndSwap(false, true) {
			d.log.Warn("previous pass still running, skipping tick")
			return
		}
		defer running.Store(false)
		if err := d.app.Run(ctx, d.current(), d.profile); err != nil {
			d.log.Error("scheduled pass failed", logx.Err(err))
		}
	}); err != nil {
		return err
	}
	c.Start()
	d.log.Info("daemon started", logx.String("schedule", spec))

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		d.log.Warn("sd_notify failed", logx.Err(err))
	} else if ok {
		d.log.Debug("systemd readiness notified")
	}

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	stopped := c.Stop()
	<-stopped.Done()
	d.log.Info("daemon stopped")
	return nil
}
