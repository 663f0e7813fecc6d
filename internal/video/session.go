package video

import "sync/atomic"

// Session is one playback attempt. A new Start or Seek creates a new Session
// and cancels the previous one; sessions are never reused.
type Session struct {
	ID uint64

	cancelled atomic.Bool
	paused    atomic.Bool
}

func newSession(id uint64) *Session {
	return &Session{ID: id}
}

// Cancel marks the session as superseded or stopped.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// SetPaused sets the pause flag polled by the decode loop.
func (s *Session) SetPaused(paused bool) {
	s.paused.Store(paused)
}

// Paused reports the pause flag.
func (s *Session) Paused() bool {
	return s.paused.Load()
}
