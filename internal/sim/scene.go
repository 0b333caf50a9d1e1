package sim

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/input"
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

// TargetReach is how far the crosshair ray looks for a block.
const TargetReach = 8.0

// Scene owns one player in one level. Step and every method that mutates the
// scene belong to the frame thread; other goroutines talk to it through Bus.
type Scene struct {
	cfg    *config.Config
	grid   *world.Grid
	body   *physics.CharacterBody
	rig    *camera.Rig
	ctrl   *locomotion.Controller
	router *input.Router
	bus    *event.Bus
	log    *slog.Logger

	spawn    mgl64.Vec3
	ticks    uint64
	respawns int
	lastDt   float64
}

// New builds the level, the character and its camera from cfg. cursor may be
// nil for hosts without a pointer.
func New(cfg *config.Config, cursor input.Cursor) (*Scene, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	grid, err := world.Build(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}

	spawn := mgl64.Vec3(cfg.Level.Spawn)
	body := physics.NewCharacterBody(spawn, cfg.Player.Width, cfg.Player.Height, grid)

	rig := camera.NewRig(cfg.Camera.NormalFOV, cfg.Player.EyeHeight)
	applyCamera(rig, cfg)

	ctrl, err := locomotion.New(cfg.Locomotion(), body, rig)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}
	router, err := input.NewRouter(ctrl, cursor)
	if err != nil {
		return nil, fmt.Errorf("create input router: %w", err)
	}

	s := &Scene{
		cfg:    cfg,
		grid:   grid,
		body:   body,
		rig:    rig,
		ctrl:   ctrl,
		router: router,
		bus:    event.NewBus(),
		log:    logger.Component("sim"),
		spawn:  spawn,
	}
	router.Bind(s.bus)
	s.bus.Subscribe(event.EventConfigReload, s.onConfigReload)

	s.log.Info("Scene ready", "blocks", grid.Len(), "spawn", spawn, "grounded", body.IsGrounded())
	return s, nil
}

// Start captures the cursor for mouse look.
func (s *Scene) Start() {
	s.router.Start()
}

// Step applies queued input, then advances the controller by dt seconds.
func (s *Scene) Step(dt float64) {
	s.bus.Dispatch()
	s.ctrl.Tick(dt)
	s.ticks++
	s.lastDt = dt

	if s.body.Position().Y() < s.cfg.Level.KillY {
		s.log.Info("Fell out of the level", "y", s.body.Position().Y(), "kill_y", s.cfg.Level.KillY)
		s.Respawn()
	}
}

func (s *Scene) Respawn() {
	s.Teleport(s.spawn)
	s.respawns++
}

// Teleport moves the body without collision and drops its momentum.
func (s *Scene) Teleport(pos mgl64.Vec3) {
	s.body.SetPosition(pos)
	s.ctrl.ResetMotion()
}

// Reload applies new tunables. A changed level is rebuilt in place; player
// box size changes need a restart.
func (s *Scene) Reload(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	if !reflect.DeepEqual(cfg.Level, s.cfg.Level) {
		grid, err := world.Build(cfg.Level)
		if err != nil {
			return fmt.Errorf("rebuild level: %w", err)
		}
		s.grid.Replace(grid)
		s.spawn = mgl64.Vec3(cfg.Level.Spawn)
		s.log.Info("Level rebuilt", "blocks", s.grid.Len())
	}
	if cfg.Player.Width != s.body.Width() || cfg.Player.Height != s.body.Height() {
		s.log.Warn("Player size change ignored until restart",
			"width", cfg.Player.Width, "height", cfg.Player.Height,
			"current_width", s.body.Width(), "current_height", s.body.Height())
	}

	s.ctrl.SetSettings(cfg.Locomotion())
	s.rig.SetEyeHeight(cfg.Player.EyeHeight)
	applyCamera(s.rig, cfg)
	s.cfg = cfg
	s.log.Info("Config applied")
	return nil
}

func (s *Scene) onConfigReload(raw any) {
	evt, ok := raw.(event.ConfigEvent)
	if !ok {
		s.log.Error("Invalid event payload", "event", event.EventConfigReload, "type", raw)
		return
	}
	cfg, ok := evt.Config.(*config.Config)
	if !ok {
		s.log.Error("Config event without config", "type", evt.Config)
		return
	}
	if err := s.Reload(cfg); err != nil {
		s.log.Warn("Config reload failed", "error", err)
	}
}

func applyCamera(rig *camera.Rig, cfg *config.Config) {
	rig.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)
	if cfg.Window.Height > 0 {
		rig.SetAspect(float64(cfg.Window.Width) / float64(cfg.Window.Height))
	}
}

// ViewProjection is the current camera transform.
func (s *Scene) ViewProjection() mgl64.Mat4 {
	return s.rig.ViewProjection(s.body.Position(), s.ctrl.Rotation())
}

// Target returns the block under the crosshair.
func (s *Scene) Target() (camera.Hit, bool) {
	eye := s.rig.Eye(s.body.Position())
	return camera.Raycast(eye, s.rig.Forward(s.ctrl.Rotation()), TargetReach, s.grid)
}

func (s *Scene) Bus() *event.Bus { return s.bus }

func (s *Scene) Config() *config.Config { return s.cfg }

func (s *Scene) Controller() *locomotion.Controller { return s.ctrl }

func (s *Scene) Body() *physics.CharacterBody { return s.body }

func (s *Scene) Rig() *camera.Rig { return s.rig }

func (s *Scene) Grid() *world.Grid { return s.grid }

func (s *Scene) Spawn() mgl64.Vec3 { return s.spawn }
