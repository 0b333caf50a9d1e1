package game

import (
	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/input"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// source reads keyboard, mouse and the first standard gamepad once per Update.
type source struct {
	pub    *input.Publisher
	cfg    config.InputConfig
	cursor *Cursor

	lastX, lastY int
	primed       bool
}

func newSource(pub *input.Publisher, cfg config.InputConfig, cursor *Cursor) *source {
	return &source{pub: pub, cfg: cfg, cursor: cursor}
}

func (s *source) poll() {
	s.handleCapture()
	s.pub.Publish(s.sample())
}

// handleCapture releases the pointer on Escape and takes it back on click.
func (s *source) handleCapture() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && s.cursor.Locked() {
		s.cursor.SetCursorLocked(false)
		s.cursor.SetCursorVisible(true)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && !s.cursor.Locked() {
		s.cursor.SetCursorVisible(false)
		s.cursor.SetCursorLocked(true)
		s.primed = false
	}
}

func (s *source) sample() input.Sample {
	keys := mgl64.Vec2{
		input.KeyAxis(ebiten.IsKeyPressed(ebiten.KeyD), ebiten.IsKeyPressed(ebiten.KeyA)),
		input.KeyAxis(ebiten.IsKeyPressed(ebiten.KeyW), ebiten.IsKeyPressed(ebiten.KeyS)),
	}
	arrows := mgl64.Vec2{
		input.KeyAxis(ebiten.IsKeyPressed(ebiten.KeyArrowRight), ebiten.IsKeyPressed(ebiten.KeyArrowLeft)),
		input.KeyAxis(ebiten.IsKeyPressed(ebiten.KeyArrowUp), ebiten.IsKeyPressed(ebiten.KeyArrowDown)),
	}
	keys = input.Combine(keys, arrows)

	smp := input.Sample{
		Move:   keys,
		Look:   s.mouseDelta(),
		Sprint: ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight),
		Jump:   ebiten.IsKeyPressed(ebiten.KeySpace),
	}

	if ids := ebiten.AppendGamepadIDs(nil); len(ids) > 0 {
		id := ids[0]
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			left := input.Deadzone(mgl64.Vec2{
				ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
				-ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
			}, s.cfg.StickDeadzone)
			smp.Move = input.Combine(smp.Move, left)

			right := input.Deadzone(mgl64.Vec2{
				ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal),
				-ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical),
			}, s.cfg.StickDeadzone)
			smp.Look = smp.Look.Add(right.Mul(s.cfg.StickLookGain))

			smp.Sprint = smp.Sprint || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontTopLeft)
			smp.Jump = smp.Jump || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		}
	}
	return smp
}

// mouseDelta is the cursor motion since the last frame, y up. It reads zero
// while the pointer is free so menus and window drags do not turn the view.
func (s *source) mouseDelta() mgl64.Vec2 {
	if !s.cursor.Locked() {
		s.primed = false
		return mgl64.Vec2{}
	}
	x, y := ebiten.CursorPosition()
	if !s.primed {
		s.lastX, s.lastY = x, y
		s.primed = true
		return mgl64.Vec2{}
	}
	dx, dy := x-s.lastX, y-s.lastY
	s.lastX, s.lastY = x, y
	return mgl64.Vec2{float64(dx), float64(-dy)}.Mul(s.cfg.MouseScale)
}
