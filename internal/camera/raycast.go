package camera

import (
	"math"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Hit is the first solid cell along a ray.
type Hit struct {
	Cell     [3]int
	Distance float64
	// Normal is the face the ray entered through; zero when the ray starts inside the cell.
	Normal mgl64.Vec3
}

// Raycast walks the grid cells along dir with a DDA traversal and returns the
// first solid one within maxDist.
func Raycast(origin, dir mgl64.Vec3, maxDist float64, blocks physics.BlockStore) (Hit, bool) {
	if blocks == nil || dir.Len() < 1e-9 {
		return Hit{}, false
	}
	dir = dir.Normalize()

	cell := [3]int{
		int(math.Floor(origin.X())),
		int(math.Floor(origin.Y())),
		int(math.Floor(origin.Z())),
	}
	var step [3]int
	var tMax, tDelta [3]float64
	for axis := 0; axis < 3; axis++ {
		step[axis], tMax[axis], tDelta[axis] = ddaAxis(origin[axis], dir[axis], cell[axis])
	}

	var normal mgl64.Vec3
	distance := 0.0
	for distance <= maxDist {
		if blocks.IsSolid(cell[0], cell[1], cell[2]) {
			return Hit{Cell: cell, Distance: distance, Normal: normal}, true
		}

		axis := 2
		switch {
		case tMax[0] <= tMax[1] && tMax[0] <= tMax[2]:
			axis = 0
		case tMax[1] <= tMax[0] && tMax[1] <= tMax[2]:
			axis = 1
		}
		cell[axis] += step[axis]
		distance = tMax[axis]
		tMax[axis] += tDelta[axis]
		normal = mgl64.Vec3{}
		normal[axis] = float64(-step[axis])
	}

	return Hit{}, false
}

func ddaAxis(origin, dir float64, cell int) (step int, tMax float64, tDelta float64) {
	if math.Abs(dir) < 1e-9 {
		return 0, math.Inf(1), math.Inf(1)
	}
	if dir > 0 {
		step = 1
		tMax = (float64(cell+1) - origin) / dir
		tDelta = 1.0 / dir
		return
	}
	step = -1
	inv := -dir
	tMax = (origin - float64(cell)) / inv
	tDelta = 1.0 / inv
	return
}
