package input

import (
	"errors"
	"log/slog"

	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/logger"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrNilTarget = errors.New("input: locomotor is nil")

// Locomotor receives the routed input state.
type Locomotor interface {
	SetMoveInput(v mgl64.Vec2)
	SetLookInput(v mgl64.Vec2)
	SetSprint(held bool)
	TryJump()
}

// Cursor is the host pointer. A nil Cursor means the host has none.
type Cursor interface {
	SetCursorVisible(visible bool)
	SetCursorLocked(locked bool)
}

// Router forwards discrete input events onto a Locomotor. Its only state is
// the jump latch, so holding jump does not retrigger it.
type Router struct {
	target Locomotor
	cursor Cursor
	log    *slog.Logger

	jumpHeld bool
}

func NewRouter(target Locomotor, cursor Cursor) (*Router, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	return &Router{
		target: target,
		cursor: cursor,
		log:    logger.Component("input"),
	}, nil
}

// Start hides the pointer and locks it to the view.
func (r *Router) Start() {
	if r.cursor == nil {
		r.log.Debug("No cursor to capture")
		return
	}
	r.cursor.SetCursorVisible(false)
	r.cursor.SetCursorLocked(true)
}

// Bind subscribes the handlers to the input events on bus.
func (r *Router) Bind(bus *event.Bus) {
	bus.Subscribe(event.EventMove, func(raw any) {
		if evt, ok := r.axis(event.EventMove, raw); ok {
			r.OnMove(evt.Value)
		}
	})
	bus.Subscribe(event.EventLook, func(raw any) {
		if evt, ok := r.axis(event.EventLook, raw); ok {
			r.OnLook(evt.Value)
		}
	})
	bus.Subscribe(event.EventSprint, func(raw any) {
		if evt, ok := r.button(event.EventSprint, raw); ok {
			r.OnSprint(evt.Pressed)
		}
	})
	bus.Subscribe(event.EventJump, func(raw any) {
		if evt, ok := r.button(event.EventJump, raw); ok {
			r.OnJump(evt.Pressed)
		}
	})
}

func (r *Router) OnMove(v mgl64.Vec2) { r.target.SetMoveInput(v) }

func (r *Router) OnLook(v mgl64.Vec2) { r.target.SetLookInput(v) }

func (r *Router) OnSprint(held bool) { r.target.SetSprint(held) }

// OnJump attempts a jump on the press edge only.
func (r *Router) OnJump(pressed bool) {
	if pressed && !r.jumpHeld {
		r.target.TryJump()
	}
	r.jumpHeld = pressed
}

func (r *Router) axis(name string, raw any) (event.AxisEvent, bool) {
	switch evt := raw.(type) {
	case event.AxisEvent:
		return evt, true
	case *event.AxisEvent:
		if evt != nil {
			return *evt, true
		}
	}
	r.log.Error("Invalid event payload", "event", name, "type", raw)
	return event.AxisEvent{}, false
}

func (r *Router) button(name string, raw any) (event.ButtonEvent, bool) {
	switch evt := raw.(type) {
	case event.ButtonEvent:
		return evt, true
	case *event.ButtonEvent:
		if evt != nil {
			return *evt, true
		}
	}
	r.log.Error("Invalid event payload", "event", name, "type", raw)
	return event.ButtonEvent{}, false
}
