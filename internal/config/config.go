package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Movement MovementConfig `yaml:"movement"`
	Look     LookConfig     `yaml:"look"`
	Camera   CameraConfig   `yaml:"camera"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Player   PlayerConfig   `yaml:"player"`
	Level    LevelConfig    `yaml:"level"`
	Input    InputConfig    `yaml:"input"`
	Window   WindowConfig   `yaml:"window"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type MovementConfig struct {
	WalkSpeed    float64 `yaml:"walk_speed"`
	SprintSpeed  float64 `yaml:"sprint_speed"`
	Acceleration float64 `yaml:"acceleration"`
	JumpHeight   float64 `yaml:"jump_height"`
}

type LookConfig struct {
	SensitivityX float64 `yaml:"sensitivity_x"`
	SensitivityY float64 `yaml:"sensitivity_y"`
	PitchLimit   float64 `yaml:"pitch_limit"`
}

type CameraConfig struct {
	NormalFOV    float64 `yaml:"normal_fov"`
	SprintFOV    float64 `yaml:"sprint_fov"`
	FOVSmoothing float64 `yaml:"fov_smoothing"`
	ClampBlend   bool    `yaml:"clamp_blend"`
	Near         float64 `yaml:"near"`
	Far          float64 `yaml:"far"`
}

type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	GravityScale float64 `yaml:"gravity_scale"`
}

type PlayerConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	EyeHeight float64 `yaml:"eye_height"`
}

type LevelConfig struct {
	Spawn  [3]float64    `yaml:"spawn"`
	KillY  float64       `yaml:"kill_y"`
	Boxes  []BoxConfig   `yaml:"boxes"`
	Blocks []BlockConfig `yaml:"blocks"`
}

// MaxLevelBlocks caps the cells a level may fill, boxes counted inclusively.
const MaxLevelBlocks = 1 << 20

// BlockCount is the number of cells the boxes and blocks cover, overlaps
// counted twice. Inverted boxes count as zero. The count saturates just past
// MaxLevelBlocks so huge boxes cannot overflow it.
func (l LevelConfig) BlockCount() int {
	n := len(l.Blocks)
	for _, box := range l.Boxes {
		cells := 1
		for axis := 0; axis < 3; axis++ {
			span := int64(box.Max[axis]) - int64(box.Min[axis]) + 1
			if span <= 0 {
				cells = 0
				break
			}
			if span > MaxLevelBlocks || int64(cells)*span > MaxLevelBlocks {
				return MaxLevelBlocks + 1
			}
			cells *= int(span)
		}
		n += cells
		if n > MaxLevelBlocks {
			return MaxLevelBlocks + 1
		}
	}
	return n
}

type BoxConfig struct {
	Min      [3]int `yaml:"min"`
	Max      [3]int `yaml:"max"`
	Material string `yaml:"material"`
}

type BlockConfig struct {
	Pos      [3]int `yaml:"pos"`
	Material string `yaml:"material"`
}

type InputConfig struct {
	MouseScale    float64 `yaml:"mouse_scale"`
	StickLookGain float64 `yaml:"stick_look_gain"`
	StickDeadzone float64 `yaml:"stick_deadzone"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	TPS    int    `yaml:"tps"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Movement: MovementConfig{
			WalkSpeed:    3.5,
			SprintSpeed:  8,
			Acceleration: 20,
			JumpHeight:   2,
		},
		Look: LookConfig{
			SensitivityX: 0.1,
			SensitivityY: 0.1,
			PitchLimit:   85,
		},
		Camera: CameraConfig{
			NormalFOV:    60,
			SprintFOV:    80,
			FOVSmoothing: 1,
			Near:         0.05,
			Far:          200,
		},
		Physics: PhysicsConfig{
			Gravity:      -9.81,
			GravityScale: 3,
		},
		Player: PlayerConfig{
			Width:     0.6,
			Height:    1.8,
			EyeHeight: 1.62,
		},
		Level: LevelConfig{
			Spawn: [3]float64{0.5, 0, 0.5},
			KillY: -32,
			Boxes: []BoxConfig{
				{Min: [3]int{-16, -1, -16}, Max: [3]int{16, -1, 16}, Material: "grass"},
			},
		},
		Input: InputConfig{
			MouseScale:    1,
			StickLookGain: 12,
			StickDeadzone: 0.2,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "stride",
			TPS:    60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults, so omitted keys keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadValidated is Load followed by Validate.
func LoadValidated(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, v))
		}
	}

	positive("movement.walk_speed", c.Movement.WalkSpeed)
	positive("movement.sprint_speed", c.Movement.SprintSpeed)
	positive("movement.acceleration", c.Movement.Acceleration)
	positive("movement.jump_height", c.Movement.JumpHeight)
	positive("physics.gravity_scale", c.Physics.GravityScale)
	positive("player.width", c.Player.Width)
	positive("player.height", c.Player.Height)
	positive("camera.near", c.Camera.Near)

	if c.Physics.Gravity >= 0 {
		errs = append(errs, fmt.Errorf("physics.gravity must be negative, got %v", c.Physics.Gravity))
	}
	if c.Look.PitchLimit <= 0 || c.Look.PitchLimit > 90 {
		errs = append(errs, fmt.Errorf("look.pitch_limit must be in (0, 90], got %v", c.Look.PitchLimit))
	}
	if c.Camera.FOVSmoothing < 0 {
		errs = append(errs, fmt.Errorf("camera.fov_smoothing must be >= 0, got %v", c.Camera.FOVSmoothing))
	}
	for _, fov := range []struct {
		name string
		v    float64
	}{{"camera.normal_fov", c.Camera.NormalFOV}, {"camera.sprint_fov", c.Camera.SprintFOV}} {
		if fov.v <= 0 || fov.v >= 180 {
			errs = append(errs, fmt.Errorf("%s must be in (0, 180), got %v", fov.name, fov.v))
		}
	}
	if c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera.far must exceed camera.near, got %v <= %v", c.Camera.Far, c.Camera.Near))
	}
	if c.Player.EyeHeight < 0 || c.Player.EyeHeight > c.Player.Height {
		errs = append(errs, fmt.Errorf("player.eye_height must be within [0, player.height], got %v", c.Player.EyeHeight))
	}
	if c.Level.BlockCount() > MaxLevelBlocks {
		errs = append(errs, fmt.Errorf("level covers more than %d blocks", MaxLevelBlocks))
	}
	if c.Window.TPS <= 0 {
		errs = append(errs, fmt.Errorf("window.tps must be > 0, got %d", c.Window.TPS))
	}

	return errors.Join(errs...)
}

// Locomotion projects the tuning sections into controller settings.
func (c *Config) Locomotion() locomotion.Settings {
	return locomotion.Settings{
		WalkSpeed:       c.Movement.WalkSpeed,
		SprintSpeed:     c.Movement.SprintSpeed,
		Acceleration:    c.Movement.Acceleration,
		JumpHeight:      c.Movement.JumpHeight,
		Gravity:         c.Physics.Gravity,
		GravityScale:    c.Physics.GravityScale,
		LookSensitivity: mgl64.Vec2{c.Look.SensitivityX, c.Look.SensitivityY},
		PitchLimit:      c.Look.PitchLimit,
		NormalFOV:       c.Camera.NormalFOV,
		SprintFOV:       c.Camera.SprintFOV,
		FOVSmoothing:    c.Camera.FOVSmoothing,
		ClampBlend:      c.Camera.ClampBlend,
	}
}
