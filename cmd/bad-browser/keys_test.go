package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/austinkregel/bad-browser/internal/app"
	"github.com/austinkregel/bad-browser/internal/events"
	"github.com/austinkregel/bad-browser/internal/ui"
)

type stubPlayer struct {
	active   bool
	paused   bool
	position float64
	seeks    []float64
}

func (p *stubPlayer) Start(width, height int, seek float64) {
	p.active, p.paused, p.position = true, false, seek
}
func (p *stubPlayer) Stop()        { p.active, p.paused = false, false }
func (p *stubPlayer) TogglePause() { p.paused = !p.paused }
func (p *stubPlayer) Seek(delta float64, width, height int) {
	p.seeks = append(p.seeks, delta)
	p.Start(width, height, p.position+delta)
}
func (p *stubPlayer) Paused() bool      { return p.paused }
func (p *stubPlayer) SeekTime() float64 { return p.position }
func (p *stubPlayer) Position() float64 { return p.position }
func (p *stubPlayer) Duration() float64 { return 0 }
func (p *stubPlayer) SessionID() uint64 { return 1 }
func (p *stubPlayer) Active() bool      { return p.active }

func key(k tcell.Key, r rune) *tcell.EventKey {
	return tcell.NewEventKey(k, r, tcell.ModNone)
}

func TestHandleKey(t *testing.T) {
	player := &stubPlayer{}
	a := app.New(player, events.NewBus(4), nil, "https://example.com", zerolog.Nop())

	if handleKey(a, key(tcell.KeyRune, 'p'), 5) {
		t.Fatal("Expected p not to quit")
	}
	if a.Mode() != app.ModeVideo {
		t.Fatalf("Expected video mode after p, got %s", a.Mode())
	}

	handleKey(a, key(tcell.KeyRune, ' '), 5)
	if !player.paused {
		t.Error("Expected space to pause")
	}

	handleKey(a, key(tcell.KeyRight, 0), 5)
	handleKey(a, key(tcell.KeyLeft, 0), 5)
	if len(player.seeks) != 2 || player.seeks[0] != 5 || player.seeks[1] != -5 {
		t.Errorf("Expected seeks [5 -5], got %v", player.seeks)
	}

	handleKey(a, key(tcell.KeyRune, 'm'), 5)
	if a.RenderMode() != ui.RenderFit {
		t.Errorf("Expected fit mode after m, got %s", a.RenderMode())
	}

	if handleKey(a, key(tcell.KeyRune, 'q'), 5) {
		t.Error("Expected q in video mode to leave video, not quit")
	}
	if a.Mode() != app.ModeNormal {
		t.Errorf("Expected normal mode after q, got %s", a.Mode())
	}
	if !handleKey(a, key(tcell.KeyRune, 'q'), 5) {
		t.Error("Expected q in normal mode to quit")
	}
	if !handleKey(a, key(tcell.KeyCtrlC, 0), 5) {
		t.Error("Expected Ctrl-C to quit")
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	path := t.TempDir() + "/config.yaml"

	cfg, err := loadConfig(&options{
		configPath: path,
		video:      "clip.mp4",
		startURL:   "https://start",
		logFile:    "custom.log",
	})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Video != "clip.mp4" || cfg.StartURL != "https://start" || cfg.LogFile != "custom.log" {
		t.Errorf("Expected overrides applied, got %+v", cfg)
	}
	if cfg.Playback.SeekStep != 5 {
		t.Errorf("Expected default seek step 5, got %v", cfg.Playback.SeekStep)
	}
}
