package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// RenderMode selects how video brightness is mapped onto page text.
type RenderMode int

const (
	// RenderCast draws every lit cell, blanking only near-black pixels.
	RenderCast RenderMode = iota
	// RenderFit draws text only where brightness is above fitThreshold.
	RenderFit
)

const fitThreshold = 50

// ParseRenderMode parses "cast" or "fit".
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(s) {
	case "cast", "":
		return RenderCast, nil
	case "fit":
		return RenderFit, nil
	}
	return RenderCast, fmt.Errorf("unknown render mode %q", s)
}

func (m RenderMode) String() string {
	if m == RenderFit {
		return "fit"
	}
	return "cast"
}

// Toggle returns the other mode.
func (m RenderMode) Toggle() RenderMode {
	if m == RenderFit {
		return RenderCast
	}
	return RenderFit
}

// Label is the short status bar tag.
func (m RenderMode) Label() string {
	if m == RenderFit {
		return "[FIT]"
	}
	return "[CST]"
}

// BrightnessStyle maps a gray level to a cell style. blank is true for the
// darkest band, which is drawn as empty space.
func BrightnessStyle(brightness byte) (style tcell.Style, blank bool) {
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	switch {
	case brightness <= 30:
		return base.Foreground(tcell.ColorBlack), true
	case brightness <= 100:
		return base.Foreground(tcell.ColorDarkGray).Dim(true), false
	case brightness <= 200:
		return base.Foreground(tcell.ColorWhite), false
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite).Bold(true), false
	}
}

// MaskCell decides whether a pixel shows a text character and in which
// style. consume reports whether the text cursor advances past this cell.
func MaskCell(mode RenderMode, brightness byte) (style tcell.Style, draw, consume bool) {
	style, blank := BrightnessStyle(brightness)
	if mode == RenderFit {
		ok := brightness > fitThreshold
		return style, ok, ok
	}
	return style, !blank, true
}

// FitRect scales a srcW x srcH frame into an areaW x areaH region keeping
// its aspect ratio, and centers it.
func FitRect(areaW, areaH, srcW, srcH int) (drawW, drawH, offX, offY int) {
	if areaW <= 0 || areaH <= 0 || srcW <= 0 || srcH <= 0 {
		return 0, 0, 0, 0
	}
	scale := float64(areaW) / float64(srcW)
	if sh := float64(areaH) / float64(srcH); sh < scale {
		scale = sh
	}
	drawW = int(float64(srcW) * scale)
	drawH = int(float64(srcH) * scale)
	offX = (areaW - drawW) / 2
	offY = (areaH - drawH) / 2
	return drawW, drawH, offX, offY
}

// sample returns the source pixel for area cell (x, y) inside the fitted rect.
func sample(frame []byte, srcW, srcH, drawW, drawH, x, y int) byte {
	sx := x * srcW / drawW
	sy := y * srcH / drawH
	if sx >= srcW {
		sx = srcW - 1
	}
	if sy >= srcH {
		sy = srcH - 1
	}
	idx := sy*srcW + sx
	if idx >= len(frame) {
		idx = len(frame) - 1
	}
	return frame[idx]
}

const progressWidth = 13

// ProgressBar renders "[━━━    ]" with progressWidth cells.
func ProgressBar(current, total float64) string {
	filled := 0
	if total > 0 {
		filled = int(current/total*progressWidth + 0.5)
	}
	if filled < 0 {
		filled = 0
	}
	if filled > progressWidth {
		filled = progressWidth
	}
	return "[" + strings.Repeat("━", filled) + strings.Repeat(" ", progressWidth-filled) + "]"
}

// Clock renders "[MM:SS/MM:SS]".
func Clock(current, total float64) string {
	c, t := wholeSeconds(current), wholeSeconds(total)
	return fmt.Sprintf("[%02d:%02d/%02d:%02d]", c/60, c%60, t/60, t%60)
}

func wholeSeconds(s float64) int {
	if s < 0 {
		return 0
	}
	return int(s)
}
