package locomotion

import "github.com/go-gl/mathgl/mgl64"

const (
	// StandardGravity is the default world gravity along Y (down is negative).
	StandardGravity = -9.81

	// GroundedStickVelocity keeps the mover pressed into the ground while standing.
	GroundedStickVelocity = -3.0

	groundedVelocityEpsilon = 0.01
	minIntentSqr            = 0.01
	sprintSpeedFloor        = 0.1
)

// Settings holds the tunables read by the controller every tick.
type Settings struct {
	WalkSpeed    float64
	SprintSpeed  float64
	Acceleration float64
	JumpHeight   float64

	Gravity      float64
	GravityScale float64

	LookSensitivity mgl64.Vec2
	PitchLimit      float64

	NormalFOV    float64
	SprintFOV    float64
	FOVSmoothing float64

	// ClampBlend clamps the sprint FOV ratio and the smoothing factor to [0,1].
	ClampBlend bool
}

func DefaultSettings() Settings {
	return Settings{
		WalkSpeed:       3.5,
		SprintSpeed:     8,
		Acceleration:    20,
		JumpHeight:      2,
		Gravity:         StandardGravity,
		GravityScale:    3,
		LookSensitivity: mgl64.Vec2{0.1, 0.1},
		PitchLimit:      85,
		NormalFOV:       60,
		SprintFOV:       80,
		FOVSmoothing:    1,
	}
}
