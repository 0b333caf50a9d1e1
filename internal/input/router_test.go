package input

import (
	"errors"
	"testing"

	"github.com/Versifine/stride/internal/event"
	"github.com/go-gl/mathgl/mgl64"
)

type mockLocomotor struct {
	move   mgl64.Vec2
	look   mgl64.Vec2
	sprint bool
	jumps  int
}

func (m *mockLocomotor) SetMoveInput(v mgl64.Vec2) { m.move = v }
func (m *mockLocomotor) SetLookInput(v mgl64.Vec2) { m.look = v }
func (m *mockLocomotor) SetSprint(held bool)       { m.sprint = held }
func (m *mockLocomotor) TryJump()                  { m.jumps++ }

type mockCursor struct {
	calls   []string
	visible bool
	locked  bool
}

func (m *mockCursor) SetCursorVisible(visible bool) {
	m.visible = visible
	m.calls = append(m.calls, "visible")
}

func (m *mockCursor) SetCursorLocked(locked bool) {
	m.locked = locked
	m.calls = append(m.calls, "locked")
}

func newTestRouter(t *testing.T) (*Router, *mockLocomotor, *mockCursor) {
	t.Helper()
	loco := &mockLocomotor{}
	cursor := &mockCursor{visible: true}
	r, err := NewRouter(loco, cursor)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r, loco, cursor
}

func TestNewRouterRejectsNilTarget(t *testing.T) {
	if _, err := NewRouter(nil, nil); !errors.Is(err, ErrNilTarget) {
		t.Fatalf("err = %v, want ErrNilTarget", err)
	}
}

func TestStartHidesAndLocksCursor(t *testing.T) {
	r, _, cursor := newTestRouter(t)
	r.Start()

	if cursor.visible {
		t.Fatalf("cursor visible after Start")
	}
	if !cursor.locked {
		t.Fatalf("cursor not locked after Start")
	}
	if len(cursor.calls) != 2 {
		t.Fatalf("cursor calls = %v, want exactly visible and locked", cursor.calls)
	}
}

func TestStartWithoutCursor(t *testing.T) {
	r, err := NewRouter(&mockLocomotor{}, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	r.Start()
}

func TestHandlersOverwriteState(t *testing.T) {
	r, loco, _ := newTestRouter(t)

	r.OnMove(mgl64.Vec2{0.5, 1})
	r.OnLook(mgl64.Vec2{3, -2})
	r.OnSprint(true)
	if loco.move != (mgl64.Vec2{0.5, 1}) || loco.look != (mgl64.Vec2{3, -2}) || !loco.sprint {
		t.Fatalf("state = %+v", loco)
	}

	r.OnMove(mgl64.Vec2{})
	r.OnSprint(false)
	if loco.move != (mgl64.Vec2{}) || loco.sprint {
		t.Fatalf("state after release = %+v", loco)
	}
}

func TestJumpFiresOnPressEdgeOnly(t *testing.T) {
	tests := []struct {
		name      string
		presses   []bool
		wantJumps int
	}{
		{name: "single press", presses: []bool{true}, wantJumps: 1},
		{name: "held", presses: []bool{true, true, true}, wantJumps: 1},
		{name: "release only", presses: []bool{false, false}, wantJumps: 0},
		{name: "tap twice", presses: []bool{true, false, true, false}, wantJumps: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, loco, _ := newTestRouter(t)
			for _, p := range tt.presses {
				r.OnJump(p)
			}
			if loco.jumps != tt.wantJumps {
				t.Fatalf("jumps = %d, want %d", loco.jumps, tt.wantJumps)
			}
		})
	}
}

func TestBindRoutesBusEvents(t *testing.T) {
	r, loco, _ := newTestRouter(t)
	bus := event.NewBus()
	r.Bind(bus)

	bus.Publish(event.EventMove, event.AxisEvent{Value: mgl64.Vec2{1, 0}})
	bus.Publish(event.EventLook, &event.AxisEvent{Value: mgl64.Vec2{0, 4}})
	bus.Publish(event.EventSprint, event.ButtonEvent{Pressed: true})
	bus.Publish(event.EventJump, event.ButtonEvent{Pressed: true})
	bus.Publish(event.EventJump, event.ButtonEvent{Pressed: true})

	if loco.move != (mgl64.Vec2{}) {
		t.Fatalf("event applied before Dispatch")
	}
	bus.Dispatch()

	if loco.move != (mgl64.Vec2{1, 0}) {
		t.Errorf("move = %v, want (1,0)", loco.move)
	}
	if loco.look != (mgl64.Vec2{0, 4}) {
		t.Errorf("look = %v, want (0,4)", loco.look)
	}
	if !loco.sprint {
		t.Errorf("sprint = false, want true")
	}
	if loco.jumps != 1 {
		t.Errorf("jumps = %d, want 1", loco.jumps)
	}
}

func TestBindIgnoresBadPayload(t *testing.T) {
	r, loco, _ := newTestRouter(t)
	bus := event.NewBus()
	r.Bind(bus)

	bus.Publish(event.EventMove, "forward")
	bus.Publish(event.EventJump, (*event.ButtonEvent)(nil))
	bus.Dispatch()

	if loco.move != (mgl64.Vec2{}) || loco.jumps != 0 {
		t.Fatalf("bad payload changed state: %+v", loco)
	}
}
