package video

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/austinkregel/bad-browser/internal/events"
	"github.com/rs/zerolog"
)

type fakeProcess struct {
	pid    int
	writer *io.PipeWriter

	mu     sync.Mutex
	killed bool
	exited chan struct{}
	once   sync.Once
}

func newFakeProcess(pid int, writer *io.PipeWriter) *fakeProcess {
	return &fakeProcess{pid: pid, writer: writer, exited: make(chan struct{})}
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.exit()
	return nil
}

func (p *fakeProcess) Wait() error {
	<-p.exited
	return nil
}

func (p *fakeProcess) exit() {
	p.once.Do(func() {
		if p.writer != nil {
			p.writer.CloseWithError(errors.New("killed"))
		}
		close(p.exited)
	})
}

func (p *fakeProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

type decoderLaunch struct {
	width, height int
	seek          float64
	proc          *fakeProcess
}

type fakeLauncher struct {
	mu          sync.Mutex
	nextPid     int
	decoders    []decoderLaunch
	audios      []float64
	audioProcs  []*fakeProcess
	failDecoder bool
	failAudio   bool
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{nextPid: 1000}
}

func (l *fakeLauncher) LaunchDecoder(source string, width, height int, seek float64) (Process, io.Reader, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failDecoder {
		return nil, nil, errors.New("decoder unavailable")
	}
	l.nextPid++
	r, w := io.Pipe()
	proc := newFakeProcess(l.nextPid, w)
	l.decoders = append(l.decoders, decoderLaunch{width: width, height: height, seek: seek, proc: proc})
	return proc, r, nil
}

func (l *fakeLauncher) LaunchAudio(source string, seek float64) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failAudio {
		return nil, errors.New("audio unavailable")
	}
	l.nextPid++
	proc := newFakeProcess(l.nextPid, nil)
	l.audios = append(l.audios, seek)
	l.audioProcs = append(l.audioProcs, proc)
	return proc, nil
}

func (l *fakeLauncher) audioLaunches() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float64(nil), l.audios...)
}

func (l *fakeLauncher) lastDecoder() *decoderLaunch {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.decoders) == 0 {
		return nil
	}
	d := l.decoders[len(l.decoders)-1]
	return &d
}

func (l *fakeLauncher) decoderCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.decoders)
}

type fakeControl struct {
	mu         sync.Mutex
	suspendErr error
	resumeErr  error
	suspended  []int
	resumed    []int
	forced     []int
}

func (c *fakeControl) Suspend(pid int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspendErr != nil {
		return c.suspendErr
	}
	c.suspended = append(c.suspended, pid)
	return nil
}

func (c *fakeControl) Resume(pid int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resumeErr != nil {
		return c.resumeErr
	}
	c.resumed = append(c.resumed, pid)
	return nil
}

func (c *fakeControl) ForceKill(pid int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forced = append(c.forced, pid)
	return nil
}

func (c *fakeControl) forcedPids() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.forced...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testRig struct {
	engine   *Engine
	launcher *fakeLauncher
	control  *fakeControl
	bus      *events.Bus
	clock    *fakeClock
}

func newTestRig(duration float64) *testRig {
	launcher := newFakeLauncher()
	control := &fakeControl{}
	bus := events.NewBus(8)
	clock := newFakeClock()

	engine := NewEngine(Config{
		Source:           "bad_apple.mp4",
		Duration:         duration,
		PausePoll:        5 * time.Millisecond,
		TerminateTimeout: time.Second,
	}, launcher, control, bus, zerolog.Nop())
	engine.now = clock.Now
	engine.anchor = clock.Now()

	return &testRig{engine: engine, launcher: launcher, control: control, bus: bus, clock: clock}
}
