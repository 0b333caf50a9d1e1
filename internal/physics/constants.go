package physics

const (
	GroundProbeDistance    = 0.001
	CollisionAxisTolerance = 1e-9

	DefaultCharacterWidth  = 0.6
	DefaultCharacterHeight = 1.8
)
