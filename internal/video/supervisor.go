package video

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTerminateTimeout bounds how long terminate waits for an exit.
const DefaultTerminateTimeout = 2 * time.Second

type role string

const (
	roleDecoder role = "decoder"
	roleAudio   role = "audio"
)

// handle is one supervised process. exited is closed once Wait returns.
type handle struct {
	role   role
	proc   Process
	pid    int
	exited chan struct{}
}

// newHandle reaps proc in the background so a child that exits on its own
// is noticed and never lingers as a zombie.
func newHandle(r role, proc Process) *handle {
	h := &handle{role: r, proc: proc, pid: proc.Pid(), exited: make(chan struct{})}
	go func() {
		h.proc.Wait()
		close(h.exited)
	}()
	return h
}

func (h *handle) alive() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.exited:
		return false
	default:
		return true
	}
}

// Supervisor owns the decoder and audio processes. It guarantees at most one
// process per role: spawning a role always terminates its predecessor first.
//
// Supervisor is not safe for concurrent use; Engine serializes access.
type Supervisor struct {
	launcher Launcher
	control  ProcessControl
	timeout  time.Duration
	log      zerolog.Logger

	decoder *handle
	audio   *handle
}

// NewSupervisor creates a supervisor. A zero timeout uses DefaultTerminateTimeout.
func NewSupervisor(launcher Launcher, control ProcessControl, timeout time.Duration, logger zerolog.Logger) *Supervisor {
	if timeout <= 0 {
		timeout = DefaultTerminateTimeout
	}
	return &Supervisor{
		launcher: launcher,
		control:  control,
		timeout:  timeout,
		log:      logger.With().Str("component", "supervisor").Logger(),
	}
}

// SpawnDecoder replaces the decoder process and returns its frame stream.
func (s *Supervisor) SpawnDecoder(source string, width, height int, seek float64) (io.Reader, error) {
	s.terminate(s.decoder)
	s.decoder = nil

	proc, stdout, err := s.launcher.LaunchDecoder(source, width, height, seek)
	if err != nil {
		return nil, err
	}

	s.decoder = newHandle(roleDecoder, proc)
	s.log.Info().Int("pid", s.decoder.pid).Str("size", fmt.Sprintf("%dx%d", width, height)).
		Float64("seek", seek).Msg("decoder process spawned")
	return stdout, nil
}

// SpawnAudio replaces the audio process.
func (s *Supervisor) SpawnAudio(source string, seek float64) error {
	s.terminate(s.audio)
	s.audio = nil

	proc, err := s.launcher.LaunchAudio(source, seek)
	if err != nil {
		return err
	}

	s.audio = newHandle(roleAudio, proc)
	s.log.Info().Int("pid", s.audio.pid).Float64("seek", seek).Msg("audio process spawned")
	return nil
}

// SuspendAudio stops the audio process in place. It reports false when there
// is no audio process or the signal could not be delivered.
func (s *Supervisor) SuspendAudio() bool {
	if s.audio == nil {
		return false
	}
	if err := s.control.Suspend(s.audio.pid); err != nil {
		s.log.Warn().Err(err).Int("pid", s.audio.pid).Msg("failed to suspend audio")
		return false
	}
	return true
}

// ResumeAudio continues a suspended audio process. It reports false when
// there is no audio process or the signal could not be delivered.
func (s *Supervisor) ResumeAudio() bool {
	if s.audio == nil {
		return false
	}
	if err := s.control.Resume(s.audio.pid); err != nil {
		s.log.Warn().Err(err).Int("pid", s.audio.pid).Msg("failed to resume audio")
		return false
	}
	return true
}

// KillAudio terminates the audio process, if any.
func (s *Supervisor) KillAudio() {
	s.terminate(s.audio)
	s.audio = nil
}

// TerminateAll terminates both processes.
func (s *Supervisor) TerminateAll() {
	s.terminate(s.audio)
	s.audio = nil
	s.terminate(s.decoder)
	s.decoder = nil
}

// AudioAlive reports whether the held audio process has not exited yet.
// ffplay runs with -autoexit, so audio can end before the video does.
func (s *Supervisor) AudioAlive() bool {
	return s.audio.alive()
}

// terminate kills h gracefully, then by pid, then waits for the background
// reaper. The forced kill is skipped once the process has been reaped, since
// its pid may already belong to something else. Errors are logged and
// dropped; a leaked process is better than a stuck UI.
func (s *Supervisor) terminate(h *handle) {
	if h == nil {
		return
	}

	if err := h.proc.Kill(); err != nil {
		s.log.Debug().Err(err).Str("role", string(h.role)).Int("pid", h.pid).Msg("graceful kill failed")
	}
	if h.alive() {
		if err := s.control.ForceKill(h.pid); err != nil {
			s.log.Debug().Err(err).Str("role", string(h.role)).Int("pid", h.pid).Msg("forced kill failed")
		}
	}

	select {
	case <-h.exited:
		s.log.Debug().Str("role", string(h.role)).Int("pid", h.pid).Msg("process terminated")
	case <-time.After(s.timeout):
		s.log.Warn().Str("role", string(h.role)).Int("pid", h.pid).Msg("process did not exit in time, abandoning it")
	}
}
