package debug

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/sim"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultTickInterval = time.Second / 60
	defaultMovePulse    = 180 * time.Millisecond
	yawStep             = 5.0
	pitchStep           = 5.0

	ctrlC = 3
)

// Console drives a scene from a raw-mode terminal. The reader goroutine only
// records key state and publishes events; the tick goroutine owns the scene.
type Console struct {
	scene        *sim.Scene
	configPath   string
	tickInterval time.Duration
	movePulse    time.Duration
	out          io.Writer
	commands     chan string

	mu            sync.Mutex
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	lookPending   mgl64.Vec2
	sprint        bool
	commandMode   bool
	commandBuf    []rune
	statusWidth   int

	outMu sync.Mutex

	// tick goroutine only
	lastMove   mgl64.Vec2
	lookActive bool
}

// NewConsole ticks scene at the configured rate. configPath is used by the
// reload command and may be empty.
func NewConsole(scene *sim.Scene, configPath string) *Console {
	interval := defaultTickInterval
	if scene != nil && scene.Config().Window.TPS > 0 {
		interval = time.Second / time.Duration(scene.Config().Window.TPS)
	}
	return &Console{
		scene:        scene,
		configPath:   configPath,
		tickInterval: interval,
		movePulse:    defaultMovePulse,
		out:          os.Stdout,
		commands:     make(chan string, 8),
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.scene == nil {
		return fmt.Errorf("console scene is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		c.printf("\r\n")
	}()

	c.printf("[debug] console started (W/A/S/D pulse, Space jump, arrows look, ] sprint, X clear, : command, q quit)\r\n")
	return c.run(ctx, os.Stdin)
}

// run ticks the scene and reads keys from in until a quit key arrives or ctx
// ends. Raw mode swallows SIGINT, so Ctrl-C is handled here as a key.
func (c *Console) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	tickDone := make(chan struct{})
	defer func() {
		cancel()
		<-tickDone
	}()

	c.scene.Start()
	go func() {
		defer close(tickDone)
		c.tickLoop(ctx)
	}()

	readErr := make(chan error, 1)
	go func() {
		readErr <- c.readKeys(bufio.NewReader(in), cancel)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-readErr:
		return err
	}
}

// readKeys blocks on the reader, so it may outlive run when the context is
// cancelled from outside; the process exits right after in that case.
func (c *Console) readKeys(reader *bufio.Reader, quit context.CancelFunc) error {
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if c.handleKey(reader, b) {
			slog.Debug("debug console quit requested")
			quit()
			return nil
		}
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	dt := c.tickInterval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.commands:
			c.executeCommand(cmd)
			c.renderStatusLine()
		case <-ticker.C:
			c.publishInput(time.Now())
			c.scene.Step(dt)
			c.renderStatusLine()
		}
	}
}

// handleKey reports whether b asked the console to quit.
func (c *Console) handleKey(reader *bufio.Reader, b byte) bool {
	if b == ctrlC {
		return true
	}
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return false
	}

	bus := c.scene.Bus()
	switch b {
	case 'q', 'Q':
		return true
	case ':':
		c.enterCommandMode()
	case 'w', 'W':
		c.pulse(&c.forwardUntil, &c.backwardUntil)
	case 's', 'S':
		c.pulse(&c.backwardUntil, &c.forwardUntil)
	case 'a', 'A':
		c.pulse(&c.leftUntil, &c.rightUntil)
	case 'd', 'D':
		c.pulse(&c.rightUntil, &c.leftUntil)
	case ' ':
		bus.Publish(event.EventJump, event.ButtonEvent{Pressed: true})
		bus.Publish(event.EventJump, event.ButtonEvent{Pressed: false})
	case ']':
		c.mu.Lock()
		c.sprint = !c.sprint
		enabled := c.sprint
		c.mu.Unlock()
		bus.Publish(event.EventSprint, event.ButtonEvent{Pressed: enabled})
		slog.Debug("debug sprint toggled", "enabled", enabled)
	case 'x', 'X':
		c.clearInput()
		bus.Publish(event.EventSprint, event.ButtonEvent{Pressed: false})
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return false
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return false
		}
		switch arrow {
		case 'D': // left
			c.addLook(mgl64.Vec2{-yawStep, 0})
		case 'C': // right
			c.addLook(mgl64.Vec2{yawStep, 0})
		case 'A': // up
			c.addLook(mgl64.Vec2{0, pitchStep})
		case 'B': // down
			c.addLook(mgl64.Vec2{0, -pitchStep})
		}
	}
	return false
}

// publishInput turns the key state into bus events for the next Step. Look
// steps are in degrees and are sent for exactly one tick.
func (c *Console) publishInput(now time.Time) {
	c.mu.Lock()
	move := c.moveLocked(now)
	look := c.lookPending
	c.lookPending = mgl64.Vec2{}
	c.mu.Unlock()

	bus := c.scene.Bus()
	if move != c.lastMove {
		bus.Publish(event.EventMove, event.AxisEvent{Value: move})
		c.lastMove = move
	}

	switch {
	case look != (mgl64.Vec2{}):
		sens := c.scene.Controller().Settings().LookSensitivity
		bus.Publish(event.EventLook, event.AxisEvent{Value: mgl64.Vec2{
			degreesToInput(look.X(), sens.X()),
			degreesToInput(look.Y(), sens.Y()),
		}})
		c.lookActive = true
	case c.lookActive:
		bus.Publish(event.EventLook, event.AxisEvent{})
		c.lookActive = false
	}
}

func degreesToInput(deg, sensitivity float64) float64 {
	if sensitivity == 0 {
		return 0
	}
	return deg / sensitivity
}

func (c *Console) moveLocked(now time.Time) mgl64.Vec2 {
	var move mgl64.Vec2
	if active(&c.forwardUntil, now) {
		move[1]++
	}
	if active(&c.backwardUntil, now) {
		move[1]--
	}
	if active(&c.rightUntil, now) {
		move[0]++
	}
	if active(&c.leftUntil, now) {
		move[0]--
	}
	return move
}

func active(until *time.Time, now time.Time) bool {
	if until.IsZero() {
		return false
	}
	if !now.Before(*until) {
		*until = time.Time{}
		return false
	}
	return true
}

func (c *Console) pulse(on, opposite *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*on = time.Now().Add(c.movePulse)
	*opposite = time.Time{}
}

func (c *Console) addLook(deg mgl64.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookPending = c.lookPending.Add(deg)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.lookPending = mgl64.Vec2{}
	c.sprint = false
	c.mu.Unlock()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	c.printf("\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		c.printf("\r\n")
		if cmd != "" {
			c.commands <- cmd
		}
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		c.printf("\r\n[debug] command cancelled\r\n")
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.printf("\r:%s ", buf)
		c.printf("\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.printf("\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		c.printf("[debug] %s\r\n", c.scene.Status())
	case "tp":
		x, y, z, ok := parseFloats(parts)
		if !ok {
			c.printf("[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		c.scene.Teleport(mgl64.Vec3{x, y, z})
		c.printf("[debug] teleported to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "look":
		x, y, z, ok := parseFloats(parts)
		if !ok {
			c.printf("[debug] usage: :look <x> <y> <z>\r\n")
			return
		}
		c.lookAt(mgl64.Vec3{x, y, z})
		c.printf("[debug] look at (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "block":
		if len(parts) != 4 && len(parts) != 5 {
			c.printf("[debug] usage: :block <x> <y> <z> [material|air]\r\n")
			return
		}
		x, err1 := strconv.Atoi(parts[1])
		y, err2 := strconv.Atoi(parts[2])
		z, err3 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil || err3 != nil {
			c.printf("[debug] invalid block args\r\n")
			return
		}
		grid := c.scene.Grid()
		if len(parts) == 5 {
			if parts[4] == "air" {
				if !grid.Clear(x, y, z) {
					c.printf("[debug] block (%d,%d,%d): already air\r\n", x, y, z)
					return
				}
			} else {
				grid.SetSolid(x, y, z, parts[4])
			}
		}
		material, ok := grid.Material(x, y, z)
		if !ok {
			c.printf("[debug] block (%d,%d,%d): air\r\n", x, y, z)
			return
		}
		c.printf("[debug] block (%d,%d,%d): %s\r\n", x, y, z, material)
	case "fov":
		st := c.scene.Status()
		s := c.scene.Controller().Settings()
		near, far := c.scene.Rig().ClipPlanes()
		c.printf("[debug] fov=%.2f target=%.2f hfov=%.2f normal=%.1f sprint=%.1f smoothing=%.2f clip=%.2f..%.0f aspect=%.2f\r\n",
			st.FOV, st.TargetFOV, st.HorizontalFOV, s.NormalFOV, s.SprintFOV, s.FOVSmoothing, near, far, c.scene.Rig().Aspect())
	case "respawn":
		c.scene.Respawn()
		c.printf("[debug] respawned at %v\r\n", c.scene.Spawn())
	case "reload":
		c.reload()
	default:
		c.printf("[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) reload() {
	if c.configPath == "" {
		c.printf("[debug] no config file to reload\r\n")
		return
	}
	cfg, err := config.LoadValidated(c.configPath)
	if err != nil {
		c.printf("[debug] reload failed: %v\r\n", err)
		return
	}
	if err := c.scene.Reload(cfg); err != nil {
		c.printf("[debug] reload failed: %v\r\n", err)
		return
	}
	c.printf("[debug] reloaded %s\r\n", c.configPath)
}

// lookAt turns the body and camera toward a world point from the eye.
func (c *Console) lookAt(target mgl64.Vec3) {
	eye := c.scene.Rig().Eye(c.scene.Body().Position())
	d := target.Sub(eye)

	yaw := mgl64.RadToDeg(math.Atan2(d.X(), d.Z()))
	horizontal := math.Hypot(d.X(), d.Z())
	pitch := -mgl64.RadToDeg(math.Atan2(d.Y(), horizontal))

	ctrl := c.scene.Controller()
	ctrl.SetYaw(yaw)
	ctrl.SetPitch(pitch)
}

func parseFloats(parts []string) (x, y, z float64, ok bool) {
	if len(parts) != 4 {
		return 0, 0, 0, false
	}
	x, err1 := strconv.ParseFloat(parts[1], 64)
	y, err2 := strconv.ParseFloat(parts[2], 64)
	z, err3 := strconv.ParseFloat(parts[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

func (c *Console) printHelp() {
	c.printf("[debug] keys:\r\n")
	c.printf("  W/S/A/D: pulse movement (~180ms)\r\n")
	c.printf("  Space: jump\r\n")
	c.printf("  ]: toggle sprint\r\n")
	c.printf("  Arrow Left/Right: yaw -/+5\r\n")
	c.printf("  Arrow Up/Down: pitch up/down 5\r\n")
	c.printf("  X: clear all input\r\n")
	c.printf("  : enter command mode\r\n")
	c.printf("  Q or Ctrl-C: quit\r\n")
	c.printf("[debug] commands:\r\n")
	c.printf("  :state\r\n")
	c.printf("  :tp <x> <y> <z>\r\n")
	c.printf("  :look <x> <y> <z>\r\n")
	c.printf("  :block <x> <y> <z> [material|air]\r\n")
	c.printf("  :fov\r\n")
	c.printf("  :respawn\r\n")
	c.printf("  :reload\r\n")
	c.printf("  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	sprint := c.sprint
	width := c.statusWidth
	c.mu.Unlock()

	st := c.scene.Status()
	line := fmt.Sprintf(
		"[MOV:%+.0f,%+.0f SPR:%s | YAW:%.1f PIT:%.1f FOV:%.1f | X:%.2f Y:%.2f Z:%.2f v:%.2f ground:%t hit:%s]",
		c.lastMove.X(), c.lastMove.Y(),
		boolLabel(sprint),
		st.Yaw, st.Pitch, st.FOV,
		st.Position.X(), st.Position.Y(), st.Position.Z(),
		st.Speed, st.Grounded, st.Blocked,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	c.printf("\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
