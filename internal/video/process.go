package video

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrNoProcess is returned when an operation targets a role with no live process.
var ErrNoProcess = errors.New("no process")

// Process is a running OS process started by a Launcher.
type Process interface {
	Pid() int
	// Kill asks the process to exit. It may return before the process is gone.
	Kill() error
	// Wait blocks until the process has exited and releases its resources.
	Wait() error
}

// Launcher starts the external decoder and audio processes.
type Launcher interface {
	// LaunchDecoder starts a process writing width*height grayscale frames,
	// starting at seek seconds, to the returned reader.
	LaunchDecoder(source string, width, height int, seek float64) (Process, io.Reader, error)

	// LaunchAudio starts a process playing source from seek seconds.
	LaunchAudio(source string, seek float64) (Process, error)
}

// Prober answers the one-shot duration query.
type Prober interface {
	Duration(source string) (float64, error)
}

// ProcessControl signals processes by pid. Any method may fail on platforms
// without the capability; callers fall back to kill-and-respawn.
type ProcessControl interface {
	Suspend(pid int) error
	Resume(pid int) error
	ForceKill(pid int) error
}

// execProcess adapts *exec.Cmd to Process.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return ErrNoProcess
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

// pidControl implements ProcessControl with gopsutil, which sends
// SIGSTOP/SIGCONT/SIGKILL on unix and reports unsupported elsewhere.
type pidControl struct{}

// NewProcessControl returns the platform ProcessControl.
func NewProcessControl() ProcessControl {
	return pidControl{}
}

func (pidControl) lookup(pid int) (*process.Process, error) {
	if pid <= 0 {
		return nil, ErrNoProcess
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	return p, nil
}

func (c pidControl) Suspend(pid int) error {
	p, err := c.lookup(pid)
	if err != nil {
		return err
	}
	return p.Suspend()
}

func (c pidControl) Resume(pid int) error {
	p, err := c.lookup(pid)
	if err != nil {
		return err
	}
	return p.Resume()
}

func (c pidControl) ForceKill(pid int) error {
	p, err := c.lookup(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
