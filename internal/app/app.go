// Package app holds the player state and is the single consumer of the
// event bus. It runs on the UI goroutine; background work reaches it only
// through events.
package app

import (
	"time"

	"github.com/austinkregel/bad-browser/internal/demo"
	"github.com/austinkregel/bad-browser/internal/events"
	"github.com/austinkregel/bad-browser/internal/media"
	"github.com/austinkregel/bad-browser/internal/ui"
	"github.com/rs/zerolog"
)

// Mode is what the main area shows.
type Mode int

const (
	ModeNormal Mode = iota
	ModeVideo
)

func (m Mode) String() string {
	if m == ModeVideo {
		return "video"
	}
	return "normal"
}

// Player is the playback engine as seen by the app.
type Player interface {
	Start(width, height int, seekSeconds float64)
	Stop()
	TogglePause()
	Seek(delta float64, width, height int)
	Paused() bool
	SeekTime() float64
	Position() float64
	Duration() float64
	SessionID() uint64
	Active() bool
}

// App is the consumer side of the player.
type App struct {
	player Player
	bus    *events.Bus
	media  media.Session
	log    zerolog.Logger

	script    demo.Script
	cursor    *demo.Cursor
	demoCache map[string]events.Page

	mode       Mode
	renderMode ui.RenderMode
	width      int
	height     int

	page         events.Page
	prefetch     *events.Page
	history      []string
	historyIndex int
	status       string
}

// New creates an app in normal mode showing startURL.
func New(player Player, bus *events.Bus, script demo.Script, startURL string, logger zerolog.Logger) *App {
	return &App{
		player:       player,
		bus:          bus,
		media:        media.NewNoOpSession(),
		log:          logger.With().Str("component", "app").Logger(),
		script:       script,
		cursor:       demo.NewCursor(script),
		demoCache:    make(map[string]events.Page),
		page:         events.Page{URL: startURL},
		history:      []string{startURL},
		historyIndex: 0,
	}
}

// SetMediaSession attaches the OS media session and routes its commands
// through the bus.
func (a *App) SetMediaSession(s media.Session) {
	if s == nil {
		s = media.NewNoOpSession()
	}
	a.media = s
	s.SetCommandHandler(a)
}

// SetSize records the video area size used for the next start or seek.
func (a *App) SetSize(width, height int) {
	a.width, a.height = width, height
}

// Mode returns the current mode.
func (a *App) Mode() Mode {
	return a.mode
}

// RenderMode returns the current render mode.
func (a *App) RenderMode() ui.RenderMode {
	return a.renderMode
}

// SetRenderMode sets the render mode.
func (a *App) SetRenderMode(m ui.RenderMode) {
	a.renderMode = m
}

// Page returns the page currently shown.
func (a *App) Page() events.Page {
	return a.page
}

// History returns the visited URLs, oldest first.
func (a *App) History() []string {
	return append([]string(nil), a.history...)
}

// StartVideo starts playback from the beginning and enters video mode.
func (a *App) StartVideo() {
	a.player.Start(a.width, a.height, 0)
	a.mode = ModeVideo

	if !a.cursor.Empty() {
		a.log.Info().Int("entries", a.cursor.Len()).Int("cached", len(a.demoCache)).Msg("demo started")
		if e, ok := a.cursor.Begin(); ok {
			a.applyDemoPage(e.URL)
		}
	}
	a.publishState()
}

// StopVideo stops playback and returns to normal mode.
func (a *App) StopVideo() {
	a.player.Stop()
	a.mode = ModeNormal
	a.publishState()
}

// TogglePlay starts video when stopped and stops it when running.
func (a *App) TogglePlay() {
	running := a.player.Active()
	switch {
	case a.mode == ModeVideo && running:
		a.StopVideo()
	case !running:
		a.StartVideo()
	}
}

// TogglePause pauses or resumes playback. Ignored outside video mode.
func (a *App) TogglePause() {
	if a.mode != ModeVideo {
		return
	}
	a.player.TogglePause()
	a.publishState()
}

// Seek moves playback by delta seconds and repositions the demo script.
// Ignored outside video mode.
func (a *App) Seek(delta float64) {
	if a.mode != ModeVideo {
		return
	}
	a.player.Seek(delta, a.width, a.height)
	a.cursor.Reset(a.player.SeekTime())
	a.publishState()
}

// SeekTo moves playback to an absolute position in seconds.
func (a *App) SeekTo(position float64) {
	a.Seek(position - a.player.Position())
}

// ToggleRenderMode switches between cast and fit rendering.
func (a *App) ToggleRenderMode() {
	a.renderMode = a.renderMode.Toggle()
	a.log.Info().Str("mode", a.renderMode.String()).Msg("render mode changed")
}

// Back leaves video mode, or reports true when the app should quit.
func (a *App) Back() (quit bool) {
	if a.mode == ModeVideo {
		a.StopVideo()
		return false
	}
	return true
}

// HandleEvents applies every pending event. It never blocks.
func (a *App) HandleEvents() {
	for _, ev := range a.bus.Drain() {
		switch ev := ev.(type) {
		case events.PageLoaded:
			a.onPageLoaded(ev)
		case events.PrefetchReady:
			a.onPrefetchReady(ev)
		case events.PlaybackEnded:
			// Only the current session may end video mode.
			if a.mode == ModeVideo && ev.SessionID == a.player.SessionID() {
				a.log.Info().Uint64("session", ev.SessionID).Msg("video ended naturally")
				a.StopVideo()
			} else {
				a.log.Debug().Uint64("session", ev.SessionID).Uint64("current", a.player.SessionID()).
					Msg("ignoring stale playback end")
			}
		case events.Error:
			a.log.Error().Str("error", ev.Message).Msg("background error")
			a.status = ev.Message
			a.page.Text = "Error: " + ev.Message
		case events.MediaCommand:
			a.onMediaCommand(ev)
		}
	}
}

// CheckDemoTransitions shows the next scripted page once playback reaches it.
func (a *App) CheckDemoTransitions() {
	if a.cursor.Empty() || a.mode != ModeVideo {
		return
	}
	if e, ok := a.cursor.Due(a.player.Position()); ok {
		a.applyDemoPage(e.URL)
	}
}

func (a *App) applyDemoPage(url string) {
	page, ok := a.demoCache[url]
	if !ok {
		a.log.Warn().Str("url", url).Msg("demo page not in cache yet")
		return
	}
	a.page = page
}

func (a *App) onPageLoaded(ev events.PageLoaded) {
	a.page = ev.Page
	a.status = ""
	if !ev.HistoryNav && (len(a.history) == 0 || a.history[a.historyIndex] != ev.URL) {
		a.history = append(a.history[:a.historyIndex+1], ev.URL)
		a.historyIndex = len(a.history) - 1
	}
	a.prefetch = nil
}

func (a *App) onPrefetchReady(ev events.PrefetchReady) {
	if a.script.Contains(ev.URL) {
		a.demoCache[ev.URL] = ev.Page
		a.log.Info().Str("url", ev.URL).Msg("demo page cached")
		return
	}
	page := ev.Page
	a.prefetch = &page
}

// OnCommand implements media.CommandHandler. It runs on the D-Bus goroutine,
// so it only forwards the command to the bus. It never waits for the UI: a
// full queue drops the command and the error goes back to the caller.
func (a *App) OnCommand(cmd media.Command, arg time.Duration) error {
	if err := a.bus.TryPost(events.MediaCommand{Command: cmd.String(), Position: arg}); err != nil {
		a.log.Warn().Err(err).Str("command", cmd.String()).Msg("media command dropped")
		return err
	}
	return nil
}

func (a *App) onMediaCommand(ev events.MediaCommand) {
	a.log.Debug().Str("command", ev.Command).Dur("arg", ev.Position).Msg("applying media command")

	switch ev.Command {
	case media.CmdPlay.String():
		if !a.player.Active() {
			a.StartVideo()
		} else if a.player.Paused() {
			a.TogglePause()
		}
	case media.CmdPause.String():
		if a.player.Active() && !a.player.Paused() {
			a.TogglePause()
		}
	case media.CmdPlayPause.String():
		if !a.player.Active() {
			a.StartVideo()
		} else {
			a.TogglePause()
		}
	case media.CmdStop.String():
		if a.mode == ModeVideo {
			a.StopVideo()
		}
	case media.CmdSeek.String():
		a.Seek(ev.Position.Seconds())
	case media.CmdSetPosition.String():
		a.SeekTo(ev.Position.Seconds())
	default:
		a.log.Warn().Str("command", ev.Command).Msg("unknown media command")
	}
}

func (a *App) publishState() {
	state := media.StateStopped
	if a.mode == ModeVideo && a.player.Active() {
		state = media.StatePlaying
		if a.player.Paused() {
			state = media.StatePaused
		}
	}
	position := time.Duration(a.player.Position() * float64(time.Second))
	if err := a.media.UpdatePlaybackState(state, position); err != nil {
		a.log.Debug().Err(err).Msg("failed to update media session")
	}
}

// View snapshots the state the renderer needs. frame is the current video
// frame and its geometry, or nil outside video mode.
func (a *App) View(frame []byte, frameW, frameH int) ui.View {
	v := ui.View{
		Video:  a.mode == ModeVideo,
		Mode:   a.renderMode,
		Demo:   !a.cursor.Empty(),
		URL:    a.page.URL,
		Text:   a.page.Text,
		Dense:  a.page.Dense,
		Status: a.status,
	}
	if v.Video {
		v.Paused = a.player.Paused()
		v.Position = a.player.Position()
		v.Duration = a.player.Duration()
		v.Frame, v.FrameWidth, v.FrameHeight = frame, frameW, frameH
	}
	return v
}
