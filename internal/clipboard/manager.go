// Package clipboard copies secrets to the system clipboard and clears them
// again after a delay, so a copied password does not linger indefinitely.
package clipboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/dmitrenko/passlock/internal/logging"
)

// writeAll is a test seam over the system clipboard.
var writeAll = clipboard.WriteAll

// Manager serializes clipboard writes and keeps at most one pending
// auto-clear timer, so rapid consecutive copies never leak goroutines or
// clear a newer value with an older timer.
type Manager struct {
	mu     sync.Mutex
	timer  *time.Timer
	logger logging.Logger
}

func NewManager(logger logging.Logger) *Manager {
	return &Manager{logger: logger.With("component", "clipboard")}
}

// Copy places text on the clipboard and schedules a clear after delay.
// A previous pending clear is cancelled first.
func (m *Manager) Copy(text string, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if err := writeAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}

	m.timer = time.AfterFunc(delay, func() {
		if err := writeAll(""); err != nil {
			m.logger.Warn(context.Background(), "clipboard clear failed", "error", err)
		}
	})

	return nil
}

// Clear wipes the clipboard immediately and cancels any pending auto-clear.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if err := writeAll(""); err != nil {
		return fmt.Errorf("clipboard clear: %w", err)
	}
	return nil
}

// Close cancels a pending auto-clear without touching clipboard contents.
// Called on program exit.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
