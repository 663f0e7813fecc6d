package video

import "sync"

// FrameBuffer holds the most recently decoded frame as one grayscale byte
// per cell. It is written by a decode loop and read by the renderer.
type FrameBuffer struct {
	mu     sync.Mutex
	data   []byte
	width  int
	height int
}

// NewFrameBuffer returns an empty buffer with no geometry.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Resize replaces the storage with width*height zero bytes.
func (b *FrameBuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = make([]byte, width*height)
	b.width = width
	b.height = height
}

// Store copies frame into the buffer if its length matches the current
// geometry. A mismatch means the buffer was resized for a newer session and
// the caller must stop writing.
func (b *FrameBuffer) Store(frame []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(frame) != len(b.data) || len(b.data) == 0 {
		return false
	}
	copy(b.data, frame)
	return true
}

// Snapshot returns a copy of the current frame and its geometry.
func (b *FrameBuffer) Snapshot() ([]byte, int, int) {
	return b.SnapshotInto(nil)
}

// SnapshotInto is Snapshot reusing dst when it has enough capacity.
func (b *FrameBuffer) SnapshotInto(dst []byte) ([]byte, int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cap(dst) < len(b.data) {
		dst = make([]byte, len(b.data))
	}
	dst = dst[:len(b.data)]
	copy(dst, b.data)
	return dst, b.width, b.height
}

// Size returns the current geometry.
func (b *FrameBuffer) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// Len returns the number of bytes in the buffer.
func (b *FrameBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
