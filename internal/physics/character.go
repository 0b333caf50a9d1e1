package physics

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// CollisionFlags reports which sides were blocked during the last Move.
type CollisionFlags uint8

const (
	CollidedBelow CollisionFlags = 1 << iota
	CollidedAbove
	CollidedSides
)

func (f CollisionFlags) Has(flag CollisionFlags) bool {
	return f&flag != 0
}

// String lists the blocked sides, e.g. "below|sides", or "-" for none.
func (f CollisionFlags) String() string {
	var parts []string
	for _, side := range []struct {
		flag CollisionFlags
		name string
	}{{CollidedBelow, "below"}, {CollidedAbove, "above"}, {CollidedSides, "sides"}} {
		if f.Has(side.flag) {
			parts = append(parts, side.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// CharacterBody is a box-shaped character swept against a block store.
// Position is the centre of the box's bottom face.
type CharacterBody struct {
	position mgl64.Vec3
	width    float64
	height   float64
	blocks   BlockStore

	grounded bool
	flags    CollisionFlags
	applied  mgl64.Vec3
}

func NewCharacterBody(pos mgl64.Vec3, width, height float64, blocks BlockStore) *CharacterBody {
	if width <= 0 {
		width = DefaultCharacterWidth
	}
	if height <= 0 {
		height = DefaultCharacterHeight
	}
	b := &CharacterBody{
		position: pos,
		width:    width,
		height:   height,
		blocks:   blocks,
	}
	b.grounded = b.standingOnSolid()
	return b
}

// Move applies displacement with collision. A blocked downward move, or a
// vertical-free move while resting on a block, marks the body grounded.
func (b *CharacterBody) Move(displacement mgl64.Vec3) {
	allowed := Sweep(b.AABB(), displacement, b.blocks)
	b.position = b.position.Add(allowed)
	b.applied = allowed

	b.flags = 0
	dy := displacement.Y()
	if !nearlyEqual(allowed.Y(), dy) {
		if dy < 0 {
			b.flags |= CollidedBelow
		} else {
			b.flags |= CollidedAbove
		}
	}
	if !nearlyEqual(allowed.X(), displacement.X()) || !nearlyEqual(allowed.Z(), displacement.Z()) {
		b.flags |= CollidedSides
	}

	switch {
	case nearlyZero(dy):
		b.grounded = b.standingOnSolid()
	default:
		b.grounded = b.flags.Has(CollidedBelow)
	}
}

func (b *CharacterBody) IsGrounded() bool { return b.grounded }

func (b *CharacterBody) Flags() CollisionFlags { return b.flags }

// Applied returns the displacement actually applied by the last Move.
func (b *CharacterBody) Applied() mgl64.Vec3 { return b.applied }

func (b *CharacterBody) Position() mgl64.Vec3 { return b.position }

// SetPosition teleports the body without collision and re-probes the ground.
func (b *CharacterBody) SetPosition(pos mgl64.Vec3) {
	b.position = pos
	b.applied = mgl64.Vec3{}
	b.flags = 0
	b.grounded = b.standingOnSolid()
}

func (b *CharacterBody) Height() float64 { return b.height }

func (b *CharacterBody) Width() float64 { return b.width }

func (b *CharacterBody) AABB() AABB {
	return CharacterAABB(b.position, b.width, b.height)
}

func (b *CharacterBody) standingOnSolid() bool {
	probe := b.AABB().Offset(mgl64.Vec3{0, -GroundProbeDistance, 0})
	return CollidesWithBlock(probe, b.blocks)
}
