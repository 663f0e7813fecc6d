// Package video plays a media file as a stream of grayscale frames.
//
// The Engine drives two external processes: ffmpeg writes raw frames into a
// pipe and ffplay plays the audio. Neither can pause or seek while running,
// so pause is done with stop/continue signals (falling back to kill and
// respawn) and every seek starts a fresh session. Each session has an id;
// a decode loop reports the end of its stream on the event bus tagged with
// that id, and the consumer ignores ids that are no longer current.
package video

import (
	"sync"
	"time"

	"github.com/austinkregel/bad-browser/internal/events"
	"github.com/rs/zerolog"
)

// DefaultEndMargin keeps seeks this many seconds short of the end.
const DefaultEndMargin = 1.0

// Config holds engine settings.
type Config struct {
	// Source is the media file path
	Source string

	// Duration in seconds, 0 if unknown
	Duration float64

	// PausePoll is the decode loop's re-check interval while paused
	PausePoll time.Duration

	// EndMargin is subtracted from Duration when clamping seeks
	EndMargin float64

	// TerminateTimeout bounds the wait for a killed process
	TerminateTimeout time.Duration
}

// Engine is the playback facade. All methods are safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	sup *Supervisor
	bus *events.Bus
	buf *FrameBuffer
	log zerolog.Logger
	now func() time.Time

	decodeLog zerolog.Logger

	session   *Session
	sessionID uint64
	paused    bool
	seekTime  float64
	anchor    time.Time

	loops sync.WaitGroup
}

// NewEngine creates an idle engine.
func NewEngine(cfg Config, launcher Launcher, control ProcessControl, bus *events.Bus, logger zerolog.Logger) *Engine {
	if cfg.PausePoll <= 0 {
		cfg.PausePoll = DefaultPausePoll
	}
	if cfg.EndMargin <= 0 {
		cfg.EndMargin = DefaultEndMargin
	}
	if cfg.Duration < 0 {
		cfg.Duration = 0
	}

	return &Engine{
		cfg:    cfg,
		sup:    NewSupervisor(launcher, control, cfg.TerminateTimeout, logger),
		bus:    bus,
		buf:    NewFrameBuffer(),
		log:    logger.With().Str("component", "engine").Logger(),
		now:    time.Now,
		anchor: time.Now(),

		decodeLog: logger.With().Str("component", "decode").Logger(),
	}
}

// Start begins a new session at seekSeconds, replacing any current one.
// Spawn failures are logged and leave the session without video or audio.
func (e *Engine) Start(width, height int, seekSeconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked(width, height, seekSeconds)
}

func (e *Engine) startLocked(width, height int, seekSeconds float64) {
	e.log.Info().Int("width", width).Int("height", height).Float64("seek", seekSeconds).Msg("starting video")
	e.stopProcessesLocked()

	e.sessionID++
	sess := newSession(e.sessionID)
	e.session = sess
	e.paused = false

	// Resize before the loop exists so it never sees the old geometry.
	e.buf.Resize(width, height)

	if err := e.sup.SpawnAudio(e.cfg.Source, seekSeconds); err != nil {
		e.log.Error().Err(err).Msg("failed to spawn audio, continuing without sound")
	}

	e.seekTime = seekSeconds
	e.anchor = e.now()

	if width <= 0 || height <= 0 {
		e.log.Warn().Int("width", width).Int("height", height).Msg("empty frame geometry, not decoding")
		return
	}

	stdout, err := e.sup.SpawnDecoder(e.cfg.Source, width, height, seekSeconds)
	if err != nil {
		e.log.Error().Err(err).Msg("failed to spawn decoder, no video for this session")
		return
	}

	loop := &decodeLoop{
		session:   sess,
		src:       stdout,
		buf:       e.buf,
		frameSize: width * height,
		bus:       e.bus,
		pausePoll: e.cfg.PausePoll,
		log:       e.decodeLog,
	}
	e.loops.Add(1)
	go func() {
		defer e.loops.Done()
		loop.run()
	}()
}

// Stop ends the current session and resets position and pause state.
// Calling Stop with no active session does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return
	}
	e.stopProcessesLocked()
	e.seekTime = 0
	e.paused = false
}

// stopProcessesLocked cancels the session before killing its processes, so
// the decode loop treats the resulting pipe error as cancellation.
func (e *Engine) stopProcessesLocked() {
	if e.session != nil {
		e.log.Info().Uint64("session", e.session.ID).Msg("stopping video processes")
		e.session.Cancel()
		e.session = nil
	}
	e.sup.TerminateAll()
}

// TogglePause pauses or resumes the current session.
func (e *Engine) TogglePause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return
	}

	e.paused = !e.paused
	e.session.SetPaused(e.paused)

	if e.paused {
		e.seekTime += e.now().Sub(e.anchor).Seconds()
		if e.sup.AudioAlive() && !e.sup.SuspendAudio() {
			e.log.Info().Msg("audio suspend unavailable, killing audio until resume")
			e.sup.KillAudio()
		}
		e.log.Info().Float64("position", e.seekTime).Msg("paused")
		return
	}

	e.anchor = e.now()
	// SIGCONT to an exited audio process succeeds and plays nothing.
	if !e.sup.AudioAlive() || !e.sup.ResumeAudio() {
		if err := e.sup.SpawnAudio(e.cfg.Source, e.seekTime); err != nil {
			e.log.Error().Err(err).Msg("failed to respawn audio")
		}
	}
	e.log.Info().Float64("position", e.seekTime).Msg("resumed")
}

// Seek moves playback by delta seconds by starting a new session at the
// clamped position.
func (e *Engine) Seek(delta float64, width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := ClampSeek(e.positionLocked()+delta, e.cfg.Duration, e.cfg.EndMargin)
	e.log.Info().Float64("delta", delta).Float64("target", target).Msg("seeking")
	e.startLocked(width, height, target)
}

// ClampSeek limits t to [0, duration-margin] when duration is known and to
// [0, +inf) otherwise.
func ClampSeek(t, duration, margin float64) float64 {
	if t < 0 {
		t = 0
	}
	if duration > 0 {
		limit := duration - margin
		if limit < 0 {
			limit = 0
		}
		if t > limit {
			t = limit
		}
	}
	return t
}

func (e *Engine) positionLocked() float64 {
	if e.paused || e.session == nil {
		return e.seekTime
	}
	return e.seekTime + e.now().Sub(e.anchor).Seconds()
}

// Position returns the current playback position in seconds.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

// SeekTime returns the offset the current session started from, plus any
// time folded in by pausing.
func (e *Engine) SeekTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seekTime
}

// Paused reports whether playback is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Duration returns the media duration in seconds, 0 if unknown.
func (e *Engine) Duration() float64 {
	return e.cfg.Duration
}

// SessionID returns the id of the most recent session.
func (e *Engine) SessionID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Active reports whether a session is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Frame returns the shared frame buffer.
func (e *Engine) Frame() *FrameBuffer {
	return e.buf
}

// Close stops playback and waits, up to the terminate timeout, for decode
// loops to exit. Close the event bus first so a loop blocked posting to a
// full queue can finish.
func (e *Engine) Close() error {
	e.Stop()

	done := make(chan struct{})
	go func() {
		e.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(e.sup.timeout):
		e.log.Warn().Msg("decode loops still running at close")
	}
	return nil
}
