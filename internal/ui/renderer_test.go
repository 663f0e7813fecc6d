package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

type cell struct {
	ch    rune
	style tcell.Style
}

type fakeScreen struct {
	w, h  int
	cells map[[2]int]cell
	shown int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{w: w, h: h, cells: map[[2]int]cell{}}
}

func (s *fakeScreen) Size() (int, int) { return s.w, s.h }

func (s *fakeScreen) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.cells[[2]int{x, y}] = cell{primary, style}
}

func (s *fakeScreen) Clear() { s.cells = map[[2]int]cell{} }
func (s *fakeScreen) Show()  { s.shown++ }

func (s *fakeScreen) row(y int) string {
	var b strings.Builder
	for x := 0; x < s.w; x++ {
		c, ok := s.cells[[2]int{x, y}]
		if !ok {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.ch)
	}
	return b.String()
}

func TestVideoArea(t *testing.T) {
	w, h := VideoArea(80, 24)
	if w != 80 || h != 22 {
		t.Errorf("Expected 80x22, got %dx%d", w, h)
	}
	if _, h := VideoArea(10, 1); h != 0 {
		t.Errorf("Expected 0 rows, got %d", h)
	}
}

func TestDrawVideoCastBlanksDarkPixels(t *testing.T) {
	screen := newFakeScreen(4, 3)
	r := NewRenderer(screen, zerolog.Nop())

	r.Draw(View{
		Video:       true,
		Mode:        RenderCast,
		Frame:       []byte{0, 255, 40, 150},
		FrameWidth:  4,
		FrameHeight: 1,
		Dense:       []rune("abcd"),
	})

	if got := screen.row(0); got != " bcd" {
		t.Errorf("Expected %q, got %q", " bcd", got)
	}
	if screen.shown != 1 {
		t.Errorf("Expected one Show, got %d", screen.shown)
	}

	_, _, attrs := screen.cells[[2]int{1, 0}].style.Decompose()
	if attrs&tcell.AttrBold == 0 {
		t.Error("Expected brightest cell to be bold")
	}
}

func TestDrawVideoFitSkipsText(t *testing.T) {
	screen := newFakeScreen(4, 3)
	r := NewRenderer(screen, zerolog.Nop())

	r.Draw(View{
		Video:       true,
		Mode:        RenderFit,
		Frame:       []byte{0, 255, 40, 150},
		FrameWidth:  4,
		FrameHeight: 1,
		Dense:       []rune("abcd"),
	})

	// Unlit cells do not consume text, so lit cells get consecutive runes.
	if got := screen.row(0); got != " a b" {
		t.Errorf("Expected %q, got %q", " a b", got)
	}
}

func TestDrawVideoWithoutFrameShowsBuffering(t *testing.T) {
	screen := newFakeScreen(20, 4)
	r := NewRenderer(screen, zerolog.Nop())

	r.Draw(View{Video: true})

	if !strings.HasPrefix(screen.row(0), "Buffering") {
		t.Errorf("Expected buffering message, got %q", screen.row(0))
	}
}

func TestDrawStatusBar(t *testing.T) {
	screen := newFakeScreen(80, 5)
	r := NewRenderer(screen, zerolog.Nop())

	r.Draw(View{
		Video:       true,
		Paused:      true,
		Position:    65,
		Duration:    130,
		Frame:       make([]byte, 80*3),
		FrameWidth:  80,
		FrameHeight: 3,
		URL:         "https://example.com",
		Demo:        true,
	})

	status := screen.row(3)
	for _, want := range []string{"PAUSE", "https://example.com", "[DEMO]", "[01:05/02:10]", "[CST]"} {
		if !strings.Contains(status, want) {
			t.Errorf("Expected %q in status %q", want, status)
		}
	}
	if !strings.Contains(screen.row(4), "seek") {
		t.Errorf("Expected video hints, got %q", screen.row(4))
	}
}

func TestDrawTextWraps(t *testing.T) {
	screen := newFakeScreen(5, 5)
	r := NewRenderer(screen, zerolog.Nop())

	r.Draw(View{Text: "hello world\nx"})

	rows := []string{screen.row(0), screen.row(1), screen.row(2), screen.row(3)}
	if rows[0] != "hello" || rows[1] != " worl" || rows[2] != "d    " {
		t.Errorf("Unexpected wrap: %q", rows)
	}
	if !strings.Contains(rows[3], "NORM") {
		t.Errorf("Expected status bar on row 3, got %q", rows[3])
	}
}
