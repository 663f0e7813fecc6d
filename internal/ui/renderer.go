// Package ui draws the player onto a terminal screen.
package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"
)

// chromeRows is the status bar plus the hints line.
const chromeRows = 2

var fallbackDense = []rune("bad-browser ")

// Screen is the subset of tcell.Screen the renderer draws with.
type Screen interface {
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Clear()
	Show()
}

// View is a snapshot of everything one frame of UI needs.
type View struct {
	Video    bool
	Paused   bool
	Mode     RenderMode
	Demo     bool
	Position float64
	Duration float64

	Frame       []byte
	FrameWidth  int
	FrameHeight int

	URL    string
	Text   string
	Dense  []rune
	Status string
}

// VideoArea returns the cells available for video in a termW x termH terminal.
func VideoArea(termW, termH int) (width, height int) {
	height = termH - chromeRows
	if height < 0 {
		height = 0
	}
	if termW < 0 {
		termW = 0
	}
	return termW, height
}

// Renderer draws Views. It is used from the UI goroutine only.
type Renderer struct {
	screen Screen
	log    zerolog.Logger
}

// NewRenderer creates a renderer on screen.
func NewRenderer(screen Screen, logger zerolog.Logger) *Renderer {
	return &Renderer{
		screen: screen,
		log:    logger.With().Str("component", "ui").Logger(),
	}
}

// Draw renders v and flushes the screen.
func (r *Renderer) Draw(v View) {
	w, h := r.screen.Size()
	r.screen.Clear()
	if w <= 0 || h <= 0 {
		r.screen.Show()
		return
	}

	areaW, areaH := VideoArea(w, h)
	if v.Video {
		r.drawVideo(v, areaW, areaH)
	} else {
		r.drawText(v.Text, areaW, areaH)
	}

	if h >= 2 {
		r.drawStatus(v, h-2, w)
	}
	r.drawHints(v, h-1, w)
	r.screen.Show()
}

func (r *Renderer) drawVideo(v View, areaW, areaH int) {
	if len(v.Frame) == 0 || v.FrameWidth <= 0 || v.FrameHeight <= 0 {
		r.drawString(0, 0, areaW, "Buffering...", tcell.StyleDefault)
		return
	}

	dense := v.Dense
	if len(dense) == 0 {
		dense = fallbackDense
	}
	drawW, drawH, offX, offY := FitRect(areaW, areaH, v.FrameWidth, v.FrameHeight)
	outside := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	textIdx := 0

	for y := 0; y < areaH; y++ {
		for x := 0; x < areaW; {
			ch := dense[textIdx]
			cw := runeWidth(ch)

			inside := x >= offX && x < offX+drawW && y >= offY && y < offY+drawH
			if !inside {
				if x+cw <= areaW {
					r.screen.SetContent(x, y, ch, nil, outside)
				}
				textIdx = (textIdx + 1) % len(dense)
				x += cw
				continue
			}

			b := sample(v.Frame, v.FrameWidth, v.FrameHeight, drawW, drawH, x-offX, y-offY)
			style, draw, consume := MaskCell(v.Mode, b)
			if x+cw <= areaW {
				if draw {
					r.screen.SetContent(x, y, ch, nil, style)
				} else {
					r.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
				}
			}
			if consume {
				textIdx = (textIdx + 1) % len(dense)
			}
			x += cw
		}
	}
}

func (r *Renderer) drawText(text string, areaW, areaH int) {
	y := 0
	for _, line := range strings.Split(text, "\n") {
		for {
			if y >= areaH {
				return
			}
			rest := r.drawString(0, y, areaW, line, tcell.StyleDefault)
			y++
			if rest == "" {
				break
			}
			line = rest
		}
	}
}

func (r *Renderer) drawStatus(v View, row, width int) {
	bar := tcell.StyleDefault.Background(tcell.ColorDarkGray).Foreground(tcell.ColorWhite)
	for x := 0; x < width; x++ {
		r.screen.SetContent(x, row, ' ', nil, bar)
	}

	label, labelBg := " NORMAL ", tcell.ColorBlue
	if v.Video {
		label, labelBg = " VIDEO ", tcell.ColorRed
		if v.Paused {
			label, labelBg = " PAUSE ", tcell.ColorGray
		}
	}
	r.drawString(0, row, width, label, tcell.StyleDefault.Background(labelBg).Foreground(tcell.ColorBlack).Bold(true))
	x := stringWidth(label) + 1

	left := v.URL
	if v.Demo {
		left += " [DEMO]"
	}
	if v.Status != "" {
		left += "  " + v.Status
	}

	right := ""
	if v.Video {
		right = ProgressBar(v.Position, v.Duration) + Clock(v.Position, v.Duration) + " "
	}
	right += v.Mode.Label()

	rx := width - stringWidth(right)
	if rx < x {
		rx = x
	}
	r.drawString(x, row, rx-x, left, bar)
	r.drawString(rx, row, width-rx, right, bar.Foreground(tcell.ColorGreen))
}

func (r *Renderer) drawHints(v View, row, width int) {
	hints := "p play  m render mode  q quit"
	if v.Video {
		hints = "space pause  ←/→ seek  m render mode  p/q stop"
	}
	r.drawString(0, row, width, hints, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

// drawString writes s from column x, stopping before maxW columns are used.
// It returns the part of s that did not fit.
func (r *Renderer) drawString(x, y, maxW int, s string, style tcell.Style) string {
	used := 0
	for i, ch := range s {
		cw := runeWidth(ch)
		if used+cw > maxW {
			return s[i:]
		}
		r.screen.SetContent(x+used, y, ch, nil, style)
		used += cw
	}
	return ""
}

func runeWidth(ch rune) int {
	if w := uniseg.StringWidth(string(ch)); w > 0 {
		return w
	}
	return 1
}

func stringWidth(s string) int {
	return uniseg.StringWidth(s)
}
