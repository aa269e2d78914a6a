package session

import "sync"

// Handle is the single process-wide holder of the current session: an
// optional *Session behind a mutex, shared by the interactive loop, the
// auto-lock monitor, and the IPC handlers.
//
// Consumers lock only for the duration of reading or mutating the session
// itself, never across blocking I/O on another resource. The lock gives
// mutual exclusion but no ordering between racing consumers; losing a race
// surfaces as ErrSessionActive/ErrSessionInactive, which callers treat as
// an expected outcome.
type Handle struct {
	mu sync.Mutex
	s  *Session
}

func NewHandle() *Handle {
	return &Handle{}
}

// Visit runs fn under the lock. fn receives the current session, which may
// be nil when none has been created yet.
func (h *Handle) Visit(fn func(s *Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.s)
}

// Swap installs s as the current session and returns the previous one.
func (h *Handle) Swap(s *Session) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.s
	h.s = s
	return prev
}
