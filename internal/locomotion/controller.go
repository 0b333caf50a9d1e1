package locomotion

import (
	"errors"
	"log/slog"
	"math"

	"github.com/Versifine/stride/internal/logger"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNilMover = errors.New("locomotion: mover is nil")
	ErrNilLens  = errors.New("locomotion: lens is nil")
)

var (
	worldUp      = mgl64.Vec3{0, 1, 0}
	localForward = mgl64.Vec3{0, 0, 1}
	localRight   = mgl64.Vec3{1, 0, 0}
	pitchAxis    = mgl64.Vec3{1, 0, 0}
)

// Mover is the collision-aware motion primitive that owns the character's position.
type Mover interface {
	IsGrounded() bool
	Move(displacement mgl64.Vec3)
}

// Lens is the camera the controller drives: pitch goes to its local rotation,
// the sprint effect to its field of view.
type Lens interface {
	SetLocalRotation(q mgl64.Quat)
	FieldOfView() float64
	SetFieldOfView(fov float64)
}

// Controller converts per-frame input into movement, look and FOV updates.
// It is not safe for concurrent use; every call belongs to the frame thread.
type Controller struct {
	settings Settings
	mover    Mover
	lens     Lens
	log      *slog.Logger

	moveInput mgl64.Vec2
	lookInput mgl64.Vec2
	sprint    bool

	verticalVelocity float64
	velocity         mgl64.Vec3
	speed            float64
	pitch            float64
	rotation         mgl64.Quat

	wasGrounded bool
}

func New(settings Settings, mover Mover, lens Lens) (*Controller, error) {
	if mover == nil {
		return nil, ErrNilMover
	}
	if lens == nil {
		return nil, ErrNilLens
	}
	return &Controller{
		settings:    settings,
		mover:       mover,
		lens:        lens,
		log:         logger.Component("locomotion"),
		rotation:    mgl64.QuatIdent(),
		wasGrounded: mover.IsGrounded(),
	}, nil
}

func (c *Controller) SetMoveInput(v mgl64.Vec2) { c.moveInput = v }

func (c *Controller) SetLookInput(v mgl64.Vec2) { c.lookInput = v }

func (c *Controller) SetSprint(held bool) { c.sprint = held }

// SetSettings swaps the tunables between ticks. The current pitch is
// re-clamped so a tighter limit takes effect immediately.
func (c *Controller) SetSettings(s Settings) {
	c.settings = s
	c.setPitch(c.pitch)
	c.applyPitch()
}

func (c *Controller) Settings() Settings { return c.settings }

// TryJump launches the character when grounded, with the initial velocity
// that reaches JumpHeight under the scaled gravity.
func (c *Controller) TryJump() {
	if !c.mover.IsGrounded() {
		return
	}
	s := c.settings
	c.verticalVelocity = math.Sqrt(s.JumpHeight * -2 * s.Gravity * s.GravityScale)
	c.log.Debug("Jump", "vertical_velocity", c.verticalVelocity)
}

// Tick runs one frame: move, then look, then camera.
func (c *Controller) Tick(dt float64) {
	c.moveUpdate(dt)
	c.lookUpdate()
	c.cameraUpdate(dt)
}

func (c *Controller) moveUpdate(dt float64) {
	s := c.settings

	forward := c.rotation.Rotate(localForward)
	right := c.rotation.Rotate(localRight)
	intent := flatten(forward.Mul(c.moveInput.Y()).Add(right.Mul(c.moveInput.X())))

	step := s.Acceleration * dt
	if intent.Dot(intent) >= minIntentSqr {
		c.velocity = MoveTowards(c.velocity, intent.Mul(c.MaxSpeed()), step)
	} else {
		c.velocity = MoveTowards(c.velocity, mgl64.Vec3{}, step)
	}

	grounded := c.mover.IsGrounded()
	if grounded && c.verticalVelocity <= groundedVelocityEpsilon {
		c.verticalVelocity = GroundedStickVelocity
	} else {
		c.verticalVelocity += s.Gravity * s.GravityScale * dt
	}

	full := mgl64.Vec3{c.velocity.X(), c.verticalVelocity, c.velocity.Z()}
	c.mover.Move(full.Mul(dt))

	c.speed = c.velocity.Len()
	c.trackGround()
}

func (c *Controller) trackGround() {
	grounded := c.mover.IsGrounded()
	if grounded == c.wasGrounded {
		return
	}
	c.wasGrounded = grounded
	if grounded {
		c.log.Debug("Landed", "speed", c.speed)
	} else {
		c.log.Debug("Left ground", "vertical_velocity", c.verticalVelocity)
	}
}

func (c *Controller) lookUpdate() {
	s := c.settings
	yaw := c.lookInput.X() * s.LookSensitivity.X()
	pitch := c.lookInput.Y() * s.LookSensitivity.Y()

	c.setPitch(c.pitch - pitch)
	c.applyPitch()

	if yaw != 0 {
		turn := mgl64.QuatRotate(mgl64.DegToRad(yaw), worldUp)
		c.rotation = turn.Mul(c.rotation).Normalize()
	}
}

func (c *Controller) cameraUpdate(dt float64) {
	c.lens.SetFieldOfView(c.blend(c.lens.FieldOfView(), c.TargetFieldOfView(), c.settings.FOVSmoothing*dt))
}

func (c *Controller) setPitch(p float64) {
	limit := c.settings.PitchLimit
	c.pitch = Clamp(p, -limit, limit)
}

func (c *Controller) applyPitch() {
	c.lens.SetLocalRotation(mgl64.QuatRotate(mgl64.DegToRad(c.pitch), pitchAxis))
}

// SetPitch assigns the camera pitch in degrees, clamped to the pitch limit.
func (c *Controller) SetPitch(p float64) {
	c.setPitch(p)
	c.applyPitch()
}

// ResetMotion zeroes horizontal and vertical velocity, as after a teleport.
func (c *Controller) ResetMotion() {
	c.velocity = mgl64.Vec3{}
	c.speed = 0
	c.verticalVelocity = 0
	c.wasGrounded = c.mover.IsGrounded()
}

// SetYaw replaces the body heading, in degrees around world up.
func (c *Controller) SetYaw(deg float64) {
	c.rotation = mgl64.QuatRotate(mgl64.DegToRad(deg), worldUp)
}

func (c *Controller) MaxSpeed() float64 {
	if c.sprint {
		return c.settings.SprintSpeed
	}
	return c.settings.WalkSpeed
}

// Sprinting requires motion so a held sprint key on a stationary character
// does not widen the FOV.
func (c *Controller) Sprinting() bool {
	return c.sprint && c.speed > sprintSpeedFloor
}

func (c *Controller) TargetFieldOfView() float64 {
	s := c.settings
	if !c.Sprinting() {
		return s.NormalFOV
	}
	return c.blend(s.NormalFOV, s.SprintFOV, c.speed/s.SprintSpeed)
}

// blend overshoots for t outside [0,1] unless ClampBlend is set.
func (c *Controller) blend(a, b, t float64) float64 {
	if c.settings.ClampBlend {
		return Lerp(a, b, t)
	}
	return LerpUnclamped(a, b, t)
}

func (c *Controller) CurrentVelocity() mgl64.Vec3 { return c.velocity }

func (c *Controller) CurrentSpeed() float64 { return c.speed }

func (c *Controller) VerticalVelocity() float64 { return c.verticalVelocity }

func (c *Controller) IsGrounded() bool { return c.mover.IsGrounded() }

func (c *Controller) Pitch() float64 { return c.pitch }

func (c *Controller) MoveInput() mgl64.Vec2 { return c.moveInput }

func (c *Controller) LookInput() mgl64.Vec2 { return c.lookInput }

func (c *Controller) SprintHeld() bool { return c.sprint }

// Rotation is the body orientation; it only ever turns around world up.
func (c *Controller) Rotation() mgl64.Quat { return c.rotation }

// Yaw returns the body heading in degrees in (-180, 180].
func (c *Controller) Yaw() float64 {
	f := c.rotation.Rotate(localForward)
	return mgl64.RadToDeg(math.Atan2(f.X(), f.Z()))
}

func (c *Controller) Forward() mgl64.Vec3 { return c.rotation.Rotate(localForward) }

func (c *Controller) Right() mgl64.Vec3 { return c.rotation.Rotate(localRight) }
