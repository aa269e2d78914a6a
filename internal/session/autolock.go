package session

import (
	"context"
	"time"

	"github.com/dmitrenko/passlock/internal/logging"
)

// DefaultPollInterval must stay materially shorter than the smallest
// configurable session timeout so lock-to-expiry latency is bounded.
const DefaultPollInterval = time.Second

// AutoLockMonitor force-closes an inactive session. It polls the shared
// handle on a fixed interval from its own goroutine; a failed EndSession
// is logged and polling continues, so an auto-lock failure can never kill
// the monitor.
type AutoLockMonitor struct {
	handle   *Handle
	interval time.Duration
	logger   logging.Logger
	notify   func(msg string)
}

// NewAutoLockMonitor wires a monitor to the shared handle. notify delivers
// the user-visible "you have been logged out" message and is always called
// outside the session lock; it may be nil.
func NewAutoLockMonitor(handle *Handle, interval time.Duration, logger logging.Logger, notify func(msg string)) *AutoLockMonitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &AutoLockMonitor{handle: handle, interval: interval, logger: logger, notify: notify}
}

// Run polls until ctx is cancelled.
func (m *AutoLockMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *AutoLockMonitor) poll(ctx context.Context) {
	var expired bool
	var endErr error

	m.handle.Visit(func(s *Session) {
		if s == nil || !s.Active() {
			return
		}
		if !s.CheckTimeout(s.WishedTimeout) {
			return
		}
		expired = true
		endErr = s.EndSession()
	})

	if !expired {
		return
	}
	if endErr != nil {
		m.logger.Error(ctx, "auto-lock failed to persist session", "error", endErr)
	}
	if m.notify != nil {
		m.notify("Session timed out: you have been logged out")
	}
}
