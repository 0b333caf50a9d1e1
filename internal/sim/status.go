package sim

import (
	"fmt"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Status is a read-only snapshot of the player for HUDs and consoles.
type Status struct {
	Position         mgl64.Vec3
	Velocity         mgl64.Vec3
	Speed            float64
	VerticalVelocity float64
	Grounded         bool
	SprintHeld       bool
	Sprinting        bool
	Pitch            float64
	Yaw              float64
	FOV              float64
	TargetFOV        float64
	HorizontalFOV    float64

	// GroundSpeed is how fast the body actually moved horizontally in the
	// last step, after collision. It drops below Speed against a wall.
	GroundSpeed float64
	Blocked     physics.CollisionFlags

	Target         camera.Hit
	HasTarget      bool
	TargetMaterial string

	Ticks    uint64
	Respawns int
	// Queued counts input events published since the last Step.
	Queued int
}

func (s *Scene) Status() Status {
	st := Status{
		Position:         s.body.Position(),
		Velocity:         s.ctrl.CurrentVelocity(),
		Speed:            s.ctrl.CurrentSpeed(),
		VerticalVelocity: s.ctrl.VerticalVelocity(),
		Grounded:         s.ctrl.IsGrounded(),
		SprintHeld:       s.ctrl.SprintHeld(),
		Sprinting:        s.ctrl.Sprinting(),
		Pitch:            s.ctrl.Pitch(),
		Yaw:              s.ctrl.Yaw(),
		FOV:              s.rig.FieldOfView(),
		TargetFOV:        s.ctrl.TargetFieldOfView(),
		HorizontalFOV:    s.rig.HorizontalFOV(),
		Blocked:          s.body.Flags(),
		Ticks:            s.ticks,
		Respawns:         s.respawns,
		Queued:           s.bus.Pending(),
	}
	if s.lastDt > 0 {
		moved := s.body.Applied()
		moved[1] = 0
		st.GroundSpeed = moved.Len() / s.lastDt
	}
	st.Target, st.HasTarget = s.Target()
	if st.HasTarget {
		c := st.Target.Cell
		st.TargetMaterial, _ = s.grid.Material(c[0], c[1], c[2])
	}
	return st
}

func (st Status) String() string {
	target := "none"
	if st.HasTarget {
		c := st.Target.Cell
		target = fmt.Sprintf("%s@(%d,%d,%d) %.1fm", st.TargetMaterial, c[0], c[1], c[2], st.Target.Distance)
	}
	return fmt.Sprintf(
		"pos=(%.2f,%.2f,%.2f) speed=%.2f moved=%.2f vy=%.2f ground=%t blocked=%s sprint=%t yaw=%.1f pitch=%.1f fov=%.1f->%.1f target=%s queued=%d",
		st.Position.X(), st.Position.Y(), st.Position.Z(),
		st.Speed, st.GroundSpeed, st.VerticalVelocity, st.Grounded, st.Blocked, st.Sprinting,
		st.Yaw, st.Pitch, st.FOV, st.TargetFOV, target, st.Queued,
	)
}
