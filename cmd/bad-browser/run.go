package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/austinkregel/bad-browser/internal/app"
	"github.com/austinkregel/bad-browser/internal/config"
	"github.com/austinkregel/bad-browser/internal/demo"
	"github.com/austinkregel/bad-browser/internal/events"
	"github.com/austinkregel/bad-browser/internal/logging"
	"github.com/austinkregel/bad-browser/internal/media"
	"github.com/austinkregel/bad-browser/internal/ui"
	"github.com/austinkregel/bad-browser/internal/video"
)

func loadConfig(o *options) (*config.Config, error) {
	var mgr *config.Manager
	if o.configPath != "" {
		mgr = config.NewManagerForFile(o.configPath)
	} else {
		mgr = config.NewManager(config.DefaultDir())
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}

	cfg := mgr.Get()
	if o.video != "" {
		cfg.Video = o.video
	}
	if o.startURL != "" {
		cfg.StartURL = o.startURL
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, o *options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger.Info().Str("version", Version).Str("video", cfg.Video).Msg("bad-browser starting")

	var script demo.Script
	if o.demo != "" {
		if script, err = demo.Load(o.demo); err != nil {
			return err
		}
		logger.Info().Int("entries", len(script)).Msg("demo script loaded")
	}

	renderMode, err := ui.ParseRenderMode(cfg.Render.Mode)
	if err != nil {
		return err
	}

	ff := video.NewFFmpeg(video.Binaries{
		FFmpeg:  cfg.Binaries.FFmpeg,
		FFprobe: cfg.Binaries.FFprobe,
		FFplay:  cfg.Binaries.FFplay,
	})
	for _, name := range ff.Missing() {
		logger.Warn().Str("tool", name).Msg("not found in PATH")
	}

	duration, err := ff.Duration(cfg.Video)
	if err != nil {
		logger.Warn().Err(err).Msg("could not probe duration, seeking is unbounded")
		duration = 0
	}

	bus := events.NewBus(cfg.Events.QueueSize)
	engine := video.NewEngine(video.Config{
		Source:           cfg.Video,
		Duration:         duration,
		PausePoll:        cfg.Playback.PausePoll,
		EndMargin:        cfg.Playback.EndMargin,
		TerminateTimeout: cfg.Playback.TerminateTimeout,
	}, ff, video.NewProcessControl(), bus, logger)
	// Close the bus first so no decode loop stays blocked on a full queue.
	defer func() {
		bus.Close()
		engine.Close()
		s := bus.Stats()
		logger.Info().Uint64("posted", s.Posted).Uint64("drained", s.Drained).
			Uint64("dropped", s.Dropped).Msg("bad-browser stopped")
	}()

	a := app.New(engine, bus, script, cfg.StartURL, logger)
	a.SetRenderMode(renderMode)

	session := openMediaSession(cfg, ff, duration, logger)
	defer session.Close()
	a.SetMediaSession(session)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	return loop(ctx, screen, a, engine, ui.NewRenderer(screen, logger), cfg)
}

func openMediaSession(cfg *config.Config, ff *video.FFmpeg, duration float64, logger zerolog.Logger) media.Session {
	var session media.Session = media.NewNoOpSession()
	if cfg.Media.MPRIS {
		s, err := media.NewSession(logger)
		if err != nil {
			logger.Warn().Err(err).Msg("continuing without OS media integration")
		} else {
			session = s
		}
	}

	md := media.Metadata{
		Title:    filepath.Base(cfg.Video),
		Duration: time.Duration(duration * float64(time.Second)),
		Path:     absPath(cfg.Video),
	}
	if meta, err := ff.Metadata(cfg.Video); err == nil {
		md.Title, md.Artist, md.Album = meta.Title, meta.Artist, meta.Album
	} else {
		logger.Debug().Err(err).Msg("no metadata")
	}
	if err := session.UpdateMetadata(md); err != nil {
		logger.Debug().Err(err).Msg("failed to publish metadata")
	}
	return session
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// loop is the UI goroutine: it owns the App, drains the bus and redraws on
// every tick or terminal event.
func loop(ctx context.Context, screen tcell.Screen, a *app.App, engine *video.Engine, r *ui.Renderer, cfg *config.Config) error {
	input := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			select {
			case input <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(cfg.Render.Tick)
	defer ticker.Stop()

	a.SetSize(ui.VideoArea(screen.Size()))
	var frame []byte

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-input:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				a.SetSize(ui.VideoArea(screen.Size()))
			case *tcell.EventKey:
				if handleKey(a, ev, cfg.Playback.SeekStep) {
					return nil
				}
			}
		case <-ticker.C:
		}

		a.HandleEvents()
		a.CheckDemoTransitions()

		var fw, fh int
		frame, fw, fh = engine.Frame().SnapshotInto(frame)
		r.Draw(a.View(frame, fw, fh))
	}
}
