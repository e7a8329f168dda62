package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"hearingbot/internal/config"
	"hearingbot/pkg/logx"
)

// WebClientURL is the chat client's entry point.
const WebClientURL = "https://web.whatsapp.com"

// Chrome drives a real Chrome instance over the DevTools protocol. The
// profile directory keeps the chat client's login persistent across runs.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	log         logx.Logger
}

// NewChrome starts Chrome with the given profile directory and configured
// arguments and navigates to the web client.
func NewChrome(ctx context.Context, cfg config.ChromeConfig, userDataDir string, log logx.Logger) (*Chrome, error) {
	abs, err := filepath.Abs(userDataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve user data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create user data dir: %w", err)
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserDataDir(abs),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	for _, arg := range cfg.Arguments {
		name, value := splitArg(arg)
		if name == "user-data-dir" || name == "headless" {
			continue // owned above
		}
		opts = append(opts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	c := &Chrome{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel, log: log}
	if err := chromedp.Run(browserCtx, chromedp.Navigate(WebClientURL)); err != nil {
		c.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	log.Info("browser session opened",
		logx.String("profile", abs),
		logx.Bool("headless", cfg.Headless))
	return c, nil
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, 0, chromedp.Navigate(url))
}

func (c *Chrome) WaitFor(ctx context.Context, sel config.Selector, timeout time.Duration) error {
	v, opt := query(sel)
	err := c.run(ctx, timeout, chromedp.WaitVisible(v, opt))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrWaitTimeout, sel, timeout)
	}
	return err
}

func (c *Chrome) Click(ctx context.Context, sel config.Selector, timeout time.Duration) error {
	v, opt := query(sel)
	err := c.run(ctx, timeout,
		chromedp.WaitVisible(v, opt),
		chromedp.WaitEnabled(v, opt),
		chromedp.Click(v, opt),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s after %s", ErrWaitTimeout, sel, timeout)
	default:
		return fmt.Errorf("%w: %s: %v", ErrNotInteractable, sel, err)
	}
}

// ForceClick dispatches a DOM-level click from script, the fallback for
// controls Chrome reports as obscured or off-screen.
func (c *Chrome) ForceClick(ctx context.Context, sel config.Selector) error {
	var clicked bool
	if err := c.run(ctx, 5*time.Second, chromedp.Evaluate(clickScript(sel), &clicked)); err != nil {
		return fmt.Errorf("%w: forced click %s: %v", ErrNotInteractable, sel, err)
	}
	if !clicked {
		return fmt.Errorf("%w: forced click found no node for %s", ErrNotInteractable, sel)
	}
	return nil
}

func (c *Chrome) Close() error {
	c.cancel()
	c.allocCancel()
	return nil
}

// run executes chromedp actions on the browser context, bounded by both the
// caller's ctx and an optional timeout.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := c.ctx
	stop := context.AfterFunc(ctx, func() { c.cancel() })
	defer stop()

	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func query(sel config.Selector) (string, chromedp.QueryOption) {
	switch sel.Kind {
	case config.ByID:
		return sel.Value, chromedp.ByID
	case config.ByCSS:
		return sel.Value, chromedp.ByQuery
	default:
		return sel.Value, chromedp.BySearch
	}
}

func clickScript(sel config.Selector) string {
	switch sel.Kind {
	case config.ByID:
		return fmt.Sprintf(
			`(() => { const n = document.getElementById(%q); if (!n) return false; n.click(); return true; })()`,
			sel.Value)
	case config.ByCSS:
		return fmt.Sprintf(
			`(() => { const n = document.querySelector(%q); if (!n) return false; n.click(); return true; })()`,
			sel.Value)
	default:
		return fmt.Sprintf(
			`(() => { const n = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue; if (!n) return false; n.click(); return true; })()`,
			sel.Value)
	}
}

// splitArg turns "--flag=value" / "--flag" into a chromedp flag pair.
func splitArg(arg string) (string, any) {
	arg = strings.TrimLeft(arg, "-")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}
