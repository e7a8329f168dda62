// Package session owns the browser session against the chat web client:
// acquisition, authenticated-state detection, and first-run login.
package session

import (
	"context"
	"errors"
	"time"

	"hearingbot/internal/config"
)

// Sentinel failures for the session lifecycle.
var (
	// ErrWaitTimeout means a selector did not appear within its timeout.
	// Chains treat it as "try the next selector", not as a hard failure.
	ErrWaitTimeout = errors.New("element wait timed out")

	// ErrNotInteractable means an element was located but could not be
	// activated through the primary click path.
	ErrNotInteractable = errors.New("element not interactable")

	// ErrSession is fatal: initial login timed out or the session state
	// stayed unresolved after all detection retries.
	ErrSession = errors.New("session error")
)

// Browser is the remote session handle the detector and dispatcher drive.
// Exactly one Browser exists per run and it is closed on every exit path.
type Browser interface {
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until the element is present and visible, or the
	// timeout elapses (ErrWaitTimeout).
	WaitFor(ctx context.Context, sel config.Selector, timeout time.Duration) error

	// Click waits for the element to be clickable and activates it.
	Click(ctx context.Context, sel config.Selector, timeout time.Duration) error

	// ForceClick activates the element through a script-driven path,
	// bypassing visibility and hit-target checks.
	ForceClick(ctx context.Context, sel config.Selector) error

	Close() error
}

// State is the detected session state. It is recomputed on demand and never
// cached across dispatch attempts.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateRequiresLogin
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRequiresLogin:
		return "requires_login"
	default:
		return "unknown"
	}
}
