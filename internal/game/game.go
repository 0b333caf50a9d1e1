package game

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/input"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/sim"
	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

const (
	drawRadius     = 14.0
	crosshairSize  = 6
	edgeWidth      = 1
	highlightWidth = 2
	labelOffset    = 4
)

var (
	skyColor       = colornames.Lightskyblue
	crosshairColor = colornames.White
	targetColor    = colornames.Yellow
	fallbackColor  = colornames.Lightgray

	materialAliases = map[string]string{
		"grass": "forestgreen",
		"stone": "slategray",
		"wood":  "peru",
		"crate": "burlywood",
		"sand":  "sandybrown",
	}

	cubeCorners = [8]mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1},
		{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1},
	}
	cubeEdges = [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
)

// Game hosts a scene in an ebiten window: one scene step per Update and a
// wireframe first-person view per Draw.
type Game struct {
	ctx    context.Context
	scene  *sim.Scene
	source *source
	dt     float64
	log    *slog.Logger

	width, height int
	showHUD       bool
}

// New wires ebiten input into scene. cursor must be the one the scene's
// router was built with.
func New(ctx context.Context, scene *sim.Scene, cursor *Cursor) *Game {
	cfg := scene.Config()
	tps := cfg.Window.TPS
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return &Game{
		ctx:     ctx,
		scene:   scene,
		source:  newSource(input.NewPublisher(scene.Bus()), cfg.Input, cursor),
		dt:      1 / float64(tps),
		log:     logger.Component("game"),
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
		showHUD: true,
	}
}

// Run opens the window and blocks until it closes or ctx is cancelled.
func (g *Game) Run() error {
	w := g.scene.Config().Window
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(1/g.dt + 0.5))

	g.scene.Start()
	g.log.Info("Window opened", "width", w.Width, "height", w.Height, "tps", ebiten.TPS())
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.showHUD = !g.showHUD
	}
	g.source.poll()
	g.scene.Step(g.dt)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)

	w, h := float64(g.width), float64(g.height)
	vp := g.scene.ViewProjection()
	rig := g.scene.Rig()
	grid := g.scene.Grid()
	pos := g.scene.Body().Position()

	target, hasTarget := g.scene.Target()
	for _, b := range grid.Near(pos.X(), pos.Y(), pos.Z(), drawRadius) {
		if !exposed(grid, b.Pos) {
			continue
		}
		clr, width := materialColor(b.Material), float32(edgeWidth)
		if hasTarget && target.Cell == [3]int{b.Pos.X, b.Pos.Y, b.Pos.Z} {
			clr, width = targetColor, highlightWidth
		}
		origin := mgl64.Vec3{float64(b.Pos.X), float64(b.Pos.Y), float64(b.Pos.Z)}
		for _, e := range cubeEdges {
			p0, p1, ok := rig.ProjectSegment(vp, origin.Add(cubeCorners[e[0]]), origin.Add(cubeCorners[e[1]]), w, h)
			if !ok {
				continue
			}
			vector.StrokeLine(screen, float32(p0.X()), float32(p0.Y()), float32(p1.X()), float32(p1.Y()), width, clr, true)
		}
	}

	cx, cy := float32(w/2), float32(h/2)
	vector.StrokeLine(screen, cx-crosshairSize, cy, cx+crosshairSize, cy, 1, crosshairColor, false)
	vector.StrokeLine(screen, cx, cy-crosshairSize, cx, cy+crosshairSize, 1, crosshairColor, false)

	if g.showHUD {
		if hasTarget {
			g.labelTarget(screen, vp, target, w, h)
		}
		ebitenutil.DebugPrint(screen, g.hud())
	}
}

// labelTarget prints the material next to the centre of the face under the
// crosshair.
func (g *Game) labelTarget(screen *ebiten.Image, vp mgl64.Mat4, target camera.Hit, w, h float64) {
	c := target.Cell
	material, ok := g.scene.Grid().Material(c[0], c[1], c[2])
	if !ok {
		return
	}
	face := mgl64.Vec3{float64(c[0]) + 0.5, float64(c[1]) + 0.5, float64(c[2]) + 0.5}.Add(target.Normal.Mul(0.5))
	p, ok := g.scene.Rig().Project(vp, face, w, h)
	if !ok {
		return
	}
	ebitenutil.DebugPrintAt(screen, material, int(p.X())+labelOffset, int(p.Y())+labelOffset)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.width, g.height = outsideWidth, outsideHeight
		g.scene.Rig().SetAspect(float64(outsideWidth) / float64(outsideHeight))
	}
	return g.width, g.height
}

func (g *Game) hud() string {
	st := g.scene.Status()
	var b strings.Builder
	fmt.Fprintf(&b, "TPS %.0f  FPS %.0f\n", ebiten.ActualTPS(), ebiten.ActualFPS())
	fmt.Fprintf(&b, "pos   %.2f %.2f %.2f\n", st.Position.X(), st.Position.Y(), st.Position.Z())
	fmt.Fprintf(&b, "speed %.2f  moved %.2f  vy %.2f\n", st.Speed, st.GroundSpeed, st.VerticalVelocity)
	fmt.Fprintf(&b, "ground %t  blocked %s  respawns %d\n", st.Grounded, st.Blocked, st.Respawns)
	fmt.Fprintf(&b, "yaw %.1f  pitch %.1f\n", st.Yaw, st.Pitch)
	fmt.Fprintf(&b, "fov %.1f -> %.1f (h %.1f)  sprint %t\n", st.FOV, st.TargetFOV, st.HorizontalFOV, st.Sprinting)
	if st.HasTarget {
		c := st.Target.Cell
		fmt.Fprintf(&b, "target %s (%d,%d,%d) %.1fm\n", st.TargetMaterial, c[0], c[1], c[2], st.Target.Distance)
	}
	b.WriteString("WASD move  Shift sprint  Space jump  Esc release mouse  F3 hud")
	return b.String()
}

// exposed reports whether any face of the block touches air.
func exposed(grid *world.Grid, p world.BlockPos) bool {
	return !grid.IsSolid(p.X, p.Y+1, p.Z) ||
		!grid.IsSolid(p.X, p.Y-1, p.Z) ||
		!grid.IsSolid(p.X+1, p.Y, p.Z) ||
		!grid.IsSolid(p.X-1, p.Y, p.Z) ||
		!grid.IsSolid(p.X, p.Y, p.Z+1) ||
		!grid.IsSolid(p.X, p.Y, p.Z-1)
}

func materialColor(material string) color.Color {
	name := strings.ToLower(material)
	if alias, ok := materialAliases[name]; ok {
		name = alias
	}
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	return fallbackColor
}
