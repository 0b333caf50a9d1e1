package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const frame = 1.0 / 60

type mockCursor struct {
	visible bool
	locked  bool
}

func (m *mockCursor) SetCursorVisible(visible bool) { m.visible = visible }
func (m *mockCursor) SetCursorLocked(locked bool)   { m.locked = locked }

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	s, err := New(config.Default(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNewSpawnsGroundedOnFloor(t *testing.T) {
	s := newTestScene(t)

	if !s.Body().IsGrounded() {
		t.Fatalf("spawned airborne")
	}
	if got := s.Body().Position(); got != (mgl64.Vec3{0.5, 0, 0.5}) {
		t.Fatalf("spawn = %v", got)
	}
	approxEqual(t, s.Rig().FieldOfView(), 60, 0, "fov")
	approxEqual(t, s.Rig().Aspect(), 1280.0/720.0, 1e-12, "aspect")
}

func TestNewRejectsBadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Level.Boxes = []config.BoxConfig{{Min: [3]int{1, 0, 0}, Max: [3]int{0, 0, 0}}}

	if _, err := New(cfg, nil); err == nil || !strings.Contains(err.Error(), "build level") {
		t.Fatalf("err = %v, want build level error", err)
	}
}

func TestStartCapturesCursor(t *testing.T) {
	cursor := &mockCursor{visible: true}
	s, err := New(config.Default(), cursor)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Start()
	if cursor.visible || !cursor.locked {
		t.Fatalf("cursor = %+v, want hidden and locked", cursor)
	}
}

func TestWalkForwardOnFloor(t *testing.T) {
	s := newTestScene(t)
	s.Bus().Publish(event.EventMove, event.AxisEvent{Value: mgl64.Vec2{0, 1}})

	for i := 0; i < 60; i++ {
		s.Step(frame)
	}

	pos := s.Body().Position()
	approxEqual(t, pos.Y(), 0, 1e-9, "y")
	approxEqual(t, pos.X(), 0.5, 1e-9, "x")
	if pos.Z() < 3.5 || pos.Z() > 3.75 {
		t.Fatalf("z = %.4f, want about 3.7 after one second", pos.Z())
	}
	approxEqual(t, s.Controller().CurrentSpeed(), 3.5, 1e-9, "speed")
	if !s.Body().IsGrounded() {
		t.Fatalf("left the ground while walking")
	}
	approxEqual(t, s.Controller().VerticalVelocity(), -3, 0, "vertical velocity")
}

func TestStatusReportsWallContact(t *testing.T) {
	s := newTestScene(t)
	s.Grid().SetSolid(0, 0, 2, "stone")
	s.Grid().SetSolid(0, 1, 2, "stone")
	s.Bus().Publish(event.EventMove, event.AxisEvent{Value: mgl64.Vec2{0, 1}})

	for i := 0; i < 60; i++ {
		s.Step(frame)
	}

	st := s.Status()
	approxEqual(t, st.Position.Z(), 1.7, 1e-9, "z against wall")
	approxEqual(t, st.Speed, 3.5, 1e-9, "commanded speed")
	approxEqual(t, st.GroundSpeed, 0, 1e-9, "ground speed")
	if !st.Blocked.Has(physics.CollidedSides) || !st.Blocked.Has(physics.CollidedBelow) {
		t.Fatalf("blocked = %s, want below|sides", st.Blocked)
	}
	if !strings.Contains(st.String(), "blocked=below|sides") {
		t.Fatalf("status = %q", st.String())
	}
}

func TestStatusGroundSpeedInOpenSpace(t *testing.T) {
	s := newTestScene(t)
	if got := s.Status().GroundSpeed; got != 0 {
		t.Fatalf("ground speed before any step = %v, want 0", got)
	}
	s.Bus().Publish(event.EventMove, event.AxisEvent{Value: mgl64.Vec2{1, 0}})
	if got := s.Status().Queued; got != 1 {
		t.Fatalf("queued = %d, want 1 before Step", got)
	}

	for i := 0; i < 60; i++ {
		s.Step(frame)
	}

	st := s.Status()
	approxEqual(t, st.GroundSpeed, st.Speed, 1e-9, "ground speed")
	approxEqual(t, st.HorizontalFOV, s.Rig().HorizontalFOV(), 0, "horizontal fov")
	if st.Ticks != 60 || st.Queued != 0 {
		t.Fatalf("ticks = %d queued = %d, want 60 and 0", st.Ticks, st.Queued)
	}
}

func TestJumpReachesJumpHeightAndLands(t *testing.T) {
	s := newTestScene(t)
	s.Bus().Publish(event.EventJump, event.ButtonEvent{Pressed: true})
	s.Bus().Publish(event.EventJump, event.ButtonEvent{Pressed: false})

	const dt = 1.0 / 240
	apex := 0.0
	landed := false
	for i := 0; i < 480; i++ {
		s.Step(dt)
		y := s.Body().Position().Y()
		if y > apex {
			apex = y
		}
		if i > 0 && s.Body().IsGrounded() {
			landed = true
			break
		}
	}

	approxEqual(t, apex, 2, 0.05, "apex")
	if !landed {
		t.Fatalf("never landed")
	}
	approxEqual(t, s.Body().Position().Y(), 0, 1e-9, "landing y")
}

func TestFallingOutOfLevelRespawns(t *testing.T) {
	s := newTestScene(t)
	s.Teleport(mgl64.Vec3{100.5, 0, 100.5})
	if s.Body().IsGrounded() {
		t.Fatalf("grounded outside the level")
	}

	for i := 0; i < 180 && s.Status().Respawns == 0; i++ {
		s.Step(frame)
	}

	if s.Status().Respawns != 1 {
		t.Fatalf("respawns = %d, want 1", s.Status().Respawns)
	}
	if s.Body().Position() != s.Spawn() {
		t.Fatalf("position = %v, want spawn %v", s.Body().Position(), s.Spawn())
	}
	approxEqual(t, s.Controller().VerticalVelocity(), 0, 0, "vertical velocity after respawn")
}

func TestConfigReloadEventAppliesOnStep(t *testing.T) {
	s := newTestScene(t)

	cfg := config.Default()
	cfg.Movement.WalkSpeed = 5
	cfg.Camera.Far = 50
	cfg.Level.Blocks = []config.BlockConfig{{Pos: [3]int{0, 0, 3}, Material: "crate"}}
	s.Bus().Publish(event.EventConfigReload, event.ConfigEvent{Config: cfg})

	if s.Controller().Settings().WalkSpeed != 3.5 {
		t.Fatalf("reload applied before Step")
	}
	s.Step(frame)

	approxEqual(t, s.Controller().Settings().WalkSpeed, 5, 0, "walk speed")
	if _, far := s.Rig().ClipPlanes(); far != 50 {
		t.Fatalf("far = %v, want 50", far)
	}
	if m, ok := s.Grid().Material(0, 0, 3); !ok || m != "crate" {
		t.Fatalf("new block missing after reload: %q/%t", m, ok)
	}
	if s.Config() != cfg {
		t.Fatalf("Config() not replaced")
	}
}

func TestReloadRejectsBadLevel(t *testing.T) {
	tests := []struct {
		name  string
		boxes []config.BoxConfig
	}{
		{name: "inverted box", boxes: []config.BoxConfig{{Min: [3]int{0, 2, 0}, Max: [3]int{0, 1, 0}}}},
		{name: "oversized box", boxes: []config.BoxConfig{{Min: [3]int{-100000, -1, -100000}, Max: [3]int{100000, -1, 100000}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t)
			before := s.Grid().Len()

			cfg := config.Default()
			cfg.Movement.WalkSpeed = 7
			cfg.Level.Boxes = tt.boxes

			if err := s.Reload(cfg); err == nil {
				t.Fatalf("Reload accepted level %+v", tt.boxes)
			}
			if s.Grid().Len() != before {
				t.Fatalf("grid changed after failed reload")
			}
			approxEqual(t, s.Controller().Settings().WalkSpeed, 3.5, 0, "walk speed")
		})
	}
}

func TestStatusReportsTargetBlock(t *testing.T) {
	s := newTestScene(t)
	s.Controller().SetPitch(85)

	st := s.Status()
	if !st.HasTarget {
		t.Fatalf("no target looking at the floor")
	}
	if st.Target.Cell != [3]int{0, -1, 0} || st.TargetMaterial != "grass" {
		t.Fatalf("target = %+v %q, want grass at (0,-1,0)", st.Target, st.TargetMaterial)
	}
	if !strings.Contains(st.String(), "target=grass@(0,-1,0)") {
		t.Fatalf("String() = %q", st.String())
	}

	s.Controller().SetPitch(-85)
	if st := s.Status(); st.HasTarget {
		t.Fatalf("target = %+v looking at the sky", st.Target)
	}
}

func TestSprintWidensFOVWhileMoving(t *testing.T) {
	s := newTestScene(t)
	s.Bus().Publish(event.EventSprint, event.ButtonEvent{Pressed: true})

	s.Step(frame)
	if s.Status().Sprinting {
		t.Fatalf("sprinting while standing still")
	}

	s.Bus().Publish(event.EventMove, event.AxisEvent{Value: mgl64.Vec2{0, 1}})
	for i := 0; i < 30; i++ {
		s.Step(frame)
	}
	st := s.Status()
	if !st.Sprinting {
		t.Fatalf("not sprinting with sprint held and moving")
	}
	if st.FOV <= 60 || st.TargetFOV <= st.FOV {
		t.Fatalf("fov = %.3f target = %.3f, want easing above 60", st.FOV, st.TargetFOV)
	}
}
