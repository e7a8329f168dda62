package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hearingbot/pkg/logx"
)

// Watch tails the config document and invokes onChange with each parsed,
// schema-valid revision. Invalid revisions are logged and dropped; the
// previously committed config stays in effect. The daemon uses this to pick
// up edits between passes; a running pass always finishes on the config it
// started with.
func Watch(ctx context.Context, path string, log logx.Logger, onChange func(*Config)) error {
	dir := filepath.Dir(path)
	file := filepath.Base(path)

	// Editors fire several events per save; coalesce them before reparsing.
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			cfg, err := Parse(path)
			if err != nil {
				log.Warn("config change rejected", logx.String("path", path), logx.Err(err))
				return
			}
			log.Info("config change accepted", logx.String("path", path))
			onChange(cfg)
		})
	}

	const restartBackoff = 2 * time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		w, err := fsnotify.NewWatcher()
		if err == nil {
			err = w.Add(dir)
			if err != nil {
				_ = w.Close()
			}
		}
		if err != nil {
			log.Warn("config watch init failed", logx.Err(err), logx.String("dir", dir))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(restartBackoff):
				continue
			}
		}

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), file) &&
					ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
					debounce()
				}
			case werr, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if werr != nil {
					log.Warn("config watch error", logx.Err(werr), logx.String("dir", dir))
				}
			}
		}

		_ = w.Close()
		log.Warn("config watcher stopped, restarting", logx.String("dir", dir))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartBackoff):
		}
	}
}
