package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MoveTowards steps current toward target by at most maxDelta and lands
// exactly on target when it is within reach.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	diff := target.Sub(current)
	dist := diff.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return current.Add(diff.Mul(maxDelta / dist))
}

// LerpUnclamped interpolates without limiting t, so t > 1 overshoots.
func LerpUnclamped(a, b, t float64) float64 {
	return a + (b-a)*t
}

func Lerp(a, b, t float64) float64 {
	return LerpUnclamped(a, b, clamp01(t))
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// flatten drops the vertical component and normalizes; a zero vector stays zero.
func flatten(v mgl64.Vec3) mgl64.Vec3 {
	v[1] = 0
	l := v.Len()
	if l < 1e-5 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
