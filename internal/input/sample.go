package input

import (
	"github.com/Versifine/stride/internal/event"
	"github.com/go-gl/mathgl/mgl64"
)

// Sample is the raw input state of one frame as read from a device.
type Sample struct {
	Move   mgl64.Vec2
	Look   mgl64.Vec2
	Sprint bool
	Jump   bool
}

// Publisher turns per-frame samples into bus events, sending only what
// changed since the previous sample.
type Publisher struct {
	bus    *event.Bus
	last   Sample
	primed bool
}

func NewPublisher(bus *event.Bus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) Publish(s Sample) {
	if !p.primed || s.Move != p.last.Move {
		p.bus.Publish(event.EventMove, event.AxisEvent{Value: s.Move})
	}
	if !p.primed || s.Look != p.last.Look {
		p.bus.Publish(event.EventLook, event.AxisEvent{Value: s.Look})
	}
	if !p.primed || s.Sprint != p.last.Sprint {
		p.bus.Publish(event.EventSprint, event.ButtonEvent{Pressed: s.Sprint})
	}
	if s.Jump != p.last.Jump {
		p.bus.Publish(event.EventJump, event.ButtonEvent{Pressed: s.Jump})
	}
	p.last = s
	p.primed = true
}

// KeyAxis folds a pair of opposing keys into -1, 0 or 1.
func KeyAxis(positive, negative bool) float64 {
	v := 0.0
	if positive {
		v++
	}
	if negative {
		v--
	}
	return v
}

// Deadzone zeroes a stick whose deflection does not exceed dz.
func Deadzone(v mgl64.Vec2, dz float64) mgl64.Vec2 {
	if v.Len() <= dz {
		return mgl64.Vec2{}
	}
	return v
}

// Combine returns the stick value when it is deflected, else the keys.
func Combine(keys, stick mgl64.Vec2) mgl64.Vec2 {
	if stick != (mgl64.Vec2{}) {
		return stick
	}
	return keys
}
