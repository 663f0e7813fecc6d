package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/austinkregel/bad-browser/internal/app"
)

// handleKey applies one key press and reports whether to quit.
func handleKey(a *app.App, ev *tcell.EventKey, seekStep float64) (quit bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		a.Seek(-seekStep)
	case tcell.KeyRight:
		a.Seek(seekStep)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return a.Back()
		case 'p':
			a.TogglePlay()
		case ' ':
			a.TogglePause()
		case 'm':
			a.ToggleRenderMode()
		}
	}
	return false
}
