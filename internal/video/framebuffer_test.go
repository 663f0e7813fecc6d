package video

import (
	"bytes"
	"sync"
	"testing"
)

func TestFrameBufferResize(t *testing.T) {
	buf := NewFrameBuffer()
	if buf.Len() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", buf.Len())
	}

	buf.Resize(80, 24)
	if buf.Len() != 1920 {
		t.Errorf("Expected 1920 bytes, got %d", buf.Len())
	}

	buf.Store(bytes.Repeat([]byte{1}, 1920))
	buf.Resize(80, 24)
	data, _, _ := buf.Snapshot()
	if !bytes.Equal(data, make([]byte, 1920)) {
		t.Error("Expected resize to zero the buffer")
	}

	buf.Resize(-1, 5)
	if w, h := buf.Size(); w != 0 || h != 5 || buf.Len() != 0 {
		t.Errorf("Expected 0x5 empty buffer, got %dx%d with %d bytes", w, h, buf.Len())
	}
}

func TestFrameBufferStoreRejectsMismatch(t *testing.T) {
	buf := NewFrameBuffer()

	if buf.Store([]byte{}) {
		t.Error("Expected store into empty buffer to fail")
	}

	buf.Resize(2, 2)
	if buf.Store([]byte{1, 2, 3}) {
		t.Error("Expected short frame to be rejected")
	}
	if !buf.Store([]byte{1, 2, 3, 4}) {
		t.Error("Expected matching frame to be stored")
	}

	data, w, h := buf.Snapshot()
	if w != 2 || h != 2 || !bytes.Equal(data, []byte{1, 2, 3, 4}) {
		t.Errorf("Unexpected snapshot %v %dx%d", data, w, h)
	}
}

func TestFrameBufferSnapshotIsCopy(t *testing.T) {
	buf := NewFrameBuffer()
	buf.Resize(1, 2)
	buf.Store([]byte{5, 6})

	data, _, _ := buf.Snapshot()
	data[0] = 99

	again, _, _ := buf.Snapshot()
	if again[0] != 5 {
		t.Errorf("Expected snapshot to be independent, got %d", again[0])
	}

	reuse := make([]byte, 0, 16)
	out, _, _ := buf.SnapshotInto(reuse)
	if len(out) != 2 || &out[0] != &reuse[:1][0] {
		t.Error("Expected SnapshotInto to reuse the provided slice")
	}
}

func TestFrameBufferConcurrentAccess(t *testing.T) {
	buf := NewFrameBuffer()
	buf.Resize(16, 16)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		frame := make([]byte, 256)
		for i := 0; i < 500; i++ {
			frame[0] = byte(i)
			buf.Store(frame)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			data, w, h := buf.Snapshot()
			if len(data) != w*h {
				t.Errorf("Snapshot length %d does not match %dx%d", len(data), w, h)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			buf.Resize(16, 16+i%2)
		}
	}()
	wg.Wait()
}
