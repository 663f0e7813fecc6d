package demo

// Cursor walks a script as playback advances. It is not safe for concurrent use.
type Cursor struct {
	script Script
	index  int
}

// NewCursor returns a cursor at the start of script.
func NewCursor(script Script) *Cursor {
	return &Cursor{script: script}
}

// Empty reports whether there is nothing to play.
func (c *Cursor) Empty() bool {
	return len(c.script) == 0
}

// Len returns the number of entries.
func (c *Cursor) Len() int {
	return len(c.script)
}

// Index returns the position of the next entry to fire.
func (c *Cursor) Index() int {
	return c.index
}

// Begin returns the first entry and moves past it, so the first page shows
// as soon as playback starts regardless of its timestamp.
func (c *Cursor) Begin() (Entry, bool) {
	c.index = 0
	if len(c.script) == 0 {
		return Entry{}, false
	}
	c.index = 1
	return c.script[0], true
}

// Due returns the next entry if position has reached it. At most one entry
// fires per call.
func (c *Cursor) Due(position float64) (Entry, bool) {
	if c.index >= len(c.script) {
		return Entry{}, false
	}
	e := c.script[c.index]
	if position < e.Timestamp {
		return Entry{}, false
	}
	c.index++
	return e, true
}

// Reset moves the cursor to the first entry strictly after seekTime.
func (c *Cursor) Reset(seekTime float64) {
	c.index = len(c.script)
	for i, e := range c.script {
		if e.Timestamp > seekTime {
			c.index = i
			return
		}
	}
}
