package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventMove   = "input.move"
	EventLook   = "input.look"
	EventSprint = "input.sprint"
	EventJump   = "input.jump"

	EventConfigReload = "config.reload"
)

// AxisEvent carries a two-axis input value such as a stick or mouse delta.
type AxisEvent struct {
	Value mgl64.Vec2
}

// ButtonEvent carries a button state change.
type ButtonEvent struct {
	Pressed bool
}

// ConfigEvent carries a freshly loaded config. The payload is untyped so the
// bus does not depend on the config package.
type ConfigEvent struct {
	Config any
}
