// Package events carries notifications from background goroutines (decode
// loops, page fetchers, the OS media session) to the single consumer loop.
package events

import (
	"fmt"
	"time"
)

// Event is one message on the bus. The concrete types below are the only
// implementations.
type Event interface {
	isEvent()
}

// Page is a fetched page as produced by the fetcher. The bus does not look
// inside it.
type Page struct {
	URL     string
	Text    string
	Links   []string
	Dense   []rune
	LinkMap map[string]string
}

// PageLoaded is posted when a page the user navigated to has been fetched.
type PageLoaded struct {
	Page
	HistoryNav bool
}

// PrefetchReady is posted when a background prefetch has completed.
type PrefetchReady struct {
	Page
}

// PlaybackEnded is posted by a decode loop when its stream ran out.
// Consumers must compare SessionID against the active session before acting.
type PlaybackEnded struct {
	SessionID uint64
}

// Error reports a background failure that should be shown to the user.
type Error struct {
	Message string
}

// MediaCommand is a playback request coming from the OS media session.
type MediaCommand struct {
	Command  string
	Position time.Duration
}

func (PageLoaded) isEvent()    {}
func (PrefetchReady) isEvent() {}
func (PlaybackEnded) isEvent() {}
func (Error) isEvent()         {}
func (MediaCommand) isEvent()  {}

func (e PlaybackEnded) String() string {
	return fmt.Sprintf("PlaybackEnded(%d)", e.SessionID)
}

func (e Error) String() string {
	return "Error(" + e.Message + ")"
}
