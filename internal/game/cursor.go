package game

import "github.com/hajimehoshi/ebiten/v2"

// Cursor maps visibility and lock requests onto ebiten cursor modes.
// Locking wins over visibility since a captured cursor is never drawn.
type Cursor struct {
	visible bool
	locked  bool
}

func NewCursor() *Cursor {
	return &Cursor{visible: true}
}

func (c *Cursor) SetCursorVisible(visible bool) {
	c.visible = visible
	c.apply()
}

func (c *Cursor) SetCursorLocked(locked bool) {
	c.locked = locked
	c.apply()
}

func (c *Cursor) Locked() bool { return c.locked }

func (c *Cursor) apply() {
	switch {
	case c.locked:
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	case !c.visible:
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	default:
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
}
