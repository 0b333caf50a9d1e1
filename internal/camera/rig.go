package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultFOV    = 60.0
	DefaultNear   = 0.05
	DefaultFar    = 200.0
	DefaultAspect = 16.0 / 9.0
)

var (
	localForward = mgl64.Vec3{0, 0, 1}
	localUp      = mgl64.Vec3{0, 1, 0}

	// The world is left-handed (+X right, +Y up, +Z forward). Mirroring view X
	// maps it onto the right-handed GL clip space LookAt/Perspective produce.
	mirrorX = mgl64.Scale3D(-1, 1, 1)
)

// Rig is a first-person camera mounted at eye height on the character body.
// The body supplies yaw; the rig's local rotation carries pitch only.
type Rig struct {
	local     mgl64.Quat
	fov       float64
	aspect    float64
	near      float64
	far       float64
	eyeHeight float64
}

func NewRig(fov, eyeHeight float64) *Rig {
	return &Rig{
		local:     mgl64.QuatIdent(),
		fov:       fov,
		aspect:    DefaultAspect,
		near:      DefaultNear,
		far:       DefaultFar,
		eyeHeight: eyeHeight,
	}
}

func (r *Rig) SetLocalRotation(q mgl64.Quat) { r.local = q }

func (r *Rig) LocalRotation() mgl64.Quat { return r.local }

func (r *Rig) FieldOfView() float64 { return r.fov }

func (r *Rig) SetFieldOfView(fov float64) { r.fov = fov }

func (r *Rig) Aspect() float64 { return r.aspect }

// SetAspect ignores non-positive ratios, which a minimised window reports.
func (r *Rig) SetAspect(aspect float64) {
	if aspect > 0 {
		r.aspect = aspect
	}
}

func (r *Rig) SetClipPlanes(near, far float64) {
	r.near = near
	r.far = far
}

func (r *Rig) ClipPlanes() (near, far float64) { return r.near, r.far }

func (r *Rig) EyeHeight() float64 { return r.eyeHeight }

func (r *Rig) SetEyeHeight(h float64) { r.eyeHeight = h }

// Eye returns the world-space eye position for a body standing at bodyPos.
func (r *Rig) Eye(bodyPos mgl64.Vec3) mgl64.Vec3 {
	return bodyPos.Add(mgl64.Vec3{0, r.eyeHeight, 0})
}

// Orientation is the world rotation of the camera: body yaw then local pitch.
func (r *Rig) Orientation(bodyRot mgl64.Quat) mgl64.Quat {
	return bodyRot.Mul(r.local).Normalize()
}

// Forward is the world-space view direction.
func (r *Rig) Forward(bodyRot mgl64.Quat) mgl64.Vec3 {
	return r.Orientation(bodyRot).Rotate(localForward)
}

func (r *Rig) ViewMatrix(bodyPos mgl64.Vec3, bodyRot mgl64.Quat) mgl64.Mat4 {
	q := r.Orientation(bodyRot)
	eye := r.Eye(bodyPos)
	center := eye.Add(q.Rotate(localForward))
	up := q.Rotate(localUp)
	return mirrorX.Mul4(mgl64.LookAtV(eye, center, up))
}

// ProjectionMatrix uses the field of view as the vertical angle.
func (r *Rig) ProjectionMatrix() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(r.fov), r.aspect, r.near, r.far)
}

func (r *Rig) ViewProjection(bodyPos mgl64.Vec3, bodyRot mgl64.Quat) mgl64.Mat4 {
	return r.ProjectionMatrix().Mul4(r.ViewMatrix(bodyPos, bodyRot))
}

// Project maps a world point to pixel coordinates on a width x height
// surface, origin top-left. ok is false for points closer than the near plane.
func (r *Rig) Project(viewProj mgl64.Mat4, point mgl64.Vec3, width, height float64) (mgl64.Vec2, bool) {
	clip := viewProj.Mul4x1(point.Vec4(1))
	if clip.W() < r.near {
		return mgl64.Vec2{}, false
	}
	return toScreen(clip, width, height), true
}

// ProjectSegment projects the segment a-b after clipping it against the near
// plane. ok is false when the whole segment lies behind it.
func (r *Rig) ProjectSegment(viewProj mgl64.Mat4, a, b mgl64.Vec3, width, height float64) (mgl64.Vec2, mgl64.Vec2, bool) {
	ca := viewProj.Mul4x1(a.Vec4(1))
	cb := viewProj.Mul4x1(b.Vec4(1))

	aIn := ca.W() >= r.near
	bIn := cb.W() >= r.near
	switch {
	case !aIn && !bIn:
		return mgl64.Vec2{}, mgl64.Vec2{}, false
	case !aIn:
		ca = clipToW(ca, cb, r.near)
	case !bIn:
		cb = clipToW(cb, ca, r.near)
	}
	return toScreen(ca, width, height), toScreen(cb, width, height), true
}

// clipToW moves out along the segment toward in until its w equals w.
func clipToW(out, in mgl64.Vec4, w float64) mgl64.Vec4 {
	t := (in.W() - w) / (in.W() - out.W())
	return in.Add(out.Sub(in).Mul(t))
}

func toScreen(clip mgl64.Vec4, width, height float64) mgl64.Vec2 {
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mgl64.Vec2{
		(ndc.X() + 1) / 2 * width,
		(1 - ndc.Y()) / 2 * height,
	}
}

// HorizontalFOV derives the horizontal angle in degrees from the vertical
// field of view and aspect ratio.
func (r *Rig) HorizontalFOV() float64 {
	half := mgl64.DegToRad(r.fov) / 2
	return mgl64.RadToDeg(2 * math.Atan(math.Tan(half)*r.aspect))
}
