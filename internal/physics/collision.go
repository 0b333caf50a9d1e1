package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// CharacterAABB builds the box of a character standing with its feet at pos.
func CharacterAABB(pos mgl64.Vec3, width, height float64) AABB {
	half := width / 2
	return AABB{
		Min: mgl64.Vec3{pos.X() - half, pos.Y(), pos.Z() - half},
		Max: mgl64.Vec3{pos.X() + half, pos.Y() + height, pos.Z() + half},
	}
}

func (a AABB) Offset(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() &&
		a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() &&
		a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() &&
		a.Max.Z() > b.Min.Z()
}

func blockAABB(x, y, z int) AABB {
	return AABB{
		Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
		Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
	}
}

func CollidesWithBlock(box AABB, blocks BlockStore) bool {
	if blocks == nil {
		return false
	}

	minX, maxX := floorForMin(box.Min.X()), floorForMax(box.Max.X())
	minY, maxY := floorForMin(box.Min.Y()), floorForMax(box.Max.Y())
	minZ, maxZ := floorForMin(box.Min.Z()), floorForMax(box.Max.Z())

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if blocks.IsSolid(x, y, z) && box.Intersects(blockAABB(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}

// Sweep moves box by delta one axis at a time (Y, then X, then Z) and returns
// the displacement that was actually allowed.
func Sweep(box AABB, delta mgl64.Vec3, blocks BlockStore) mgl64.Vec3 {
	var allowed mgl64.Vec3
	for _, axis := range [3]int{1, 0, 2} {
		allowed[axis] = resolveAxis(box, axis, delta[axis], blocks)
		var step mgl64.Vec3
		step[axis] = allowed[axis]
		box = box.Offset(step)
	}
	return allowed
}

// resolveAxis clips delta along one axis against the first solid block the
// leading face of box would cross.
func resolveAxis(box AABB, axis int, delta float64, blocks BlockStore) float64 {
	if blocks == nil || nearlyZero(delta) {
		return delta
	}

	b, c := (axis+1)%3, (axis+2)%3
	minB, maxB := floorForMin(box.Min[b]), floorForMax(box.Max[b])
	minC, maxC := floorForMin(box.Min[c]), floorForMax(box.Max[c])

	solid := func(i, j, k int) bool {
		var cell [3]int
		cell[axis], cell[b], cell[c] = i, j, k
		return blocks.IsSolid(cell[0], cell[1], cell[2])
	}

	allowed := delta
	if delta > 0 {
		lead := box.Max[axis]
		start := int(math.Floor(lead))
		end := int(math.Floor(lead + delta))
		for i := start; i <= end; i++ {
			for j := minB; j <= maxB; j++ {
				for k := minC; k <= maxC; k++ {
					if !solid(i, j, k) {
						continue
					}
					if candidate := float64(i) - lead; candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
		return math.Max(allowed, 0)
	}

	lead := box.Min[axis]
	start := int(math.Floor(lead + delta))
	end := int(math.Floor(lead - CollisionAxisTolerance))
	for i := end; i >= start; i-- {
		for j := minB; j <= maxB; j++ {
			for k := minC; k <= maxC; k++ {
				if !solid(i, j, k) {
					continue
				}
				if candidate := float64(i+1) - lead; candidate > allowed {
					allowed = candidate
				}
			}
		}
	}
	return math.Min(allowed, 0)
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
