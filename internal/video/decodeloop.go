package video

import (
	"io"
	"time"

	"github.com/austinkregel/bad-browser/internal/events"
	"github.com/rs/zerolog"
)

// DefaultPausePoll is how often a paused decode loop re-checks its flags.
const DefaultPausePoll = 100 * time.Millisecond

// decodeLoop copies fixed-size frames from a decoder pipe into a FrameBuffer
// for one session.
type decodeLoop struct {
	session   *Session
	src       io.Reader
	buf       *FrameBuffer
	frameSize int
	bus       *events.Bus
	pausePoll time.Duration
	log       zerolog.Logger
}

// run blocks until the session is cancelled, the stream ends, or the buffer
// is resized under it. Only a natural end of stream on a live session posts
// PlaybackEnded.
func (l *decodeLoop) run() {
	frame := make([]byte, l.frameSize)
	frames := 0

	defer func() {
		l.log.Info().Uint64("session", l.session.ID).Int("frames", frames).Msg("decode loop ended")
	}()

	for {
		if l.session.Cancelled() {
			return
		}

		if l.session.Paused() {
			// Leave the pipe alone; the decoder blocks on its own full buffer.
			time.Sleep(l.pausePoll)
			continue
		}

		if _, err := io.ReadFull(l.src, frame); err != nil {
			if l.session.Cancelled() {
				return
			}
			l.log.Debug().Err(err).Uint64("session", l.session.ID).Msg("decoder stream ended")
			if postErr := l.bus.Post(events.PlaybackEnded{SessionID: l.session.ID}); postErr != nil {
				l.log.Debug().Err(postErr).Msg("dropping playback end notification")
			}
			return
		}

		if l.session.Cancelled() {
			return
		}
		if l.session.Paused() {
			continue
		}

		if !l.buf.Store(frame) {
			l.log.Debug().Uint64("session", l.session.ID).Msg("frame buffer resized by newer session")
			return
		}
		frames++
	}
}
