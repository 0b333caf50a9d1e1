package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Versifine/stride/internal/config"
)

const DefaultMaterial = "stone"

type BlockPos struct {
	X int
	Y int
	Z int
}

type Block struct {
	Pos      BlockPos
	Material string
}

// Grid is a sparse set of solid unit blocks.
type Grid struct {
	mu     sync.RWMutex
	blocks map[BlockPos]string
}

func NewGrid() *Grid {
	return &Grid{blocks: make(map[BlockPos]string)}
}

// Build fills a grid from the level section of the config.
func Build(level config.LevelConfig) (*Grid, error) {
	if level.BlockCount() > config.MaxLevelBlocks {
		return nil, fmt.Errorf("level covers more than %d blocks", config.MaxLevelBlocks)
	}
	g := NewGrid()
	for i, box := range level.Boxes {
		for axis := 0; axis < 3; axis++ {
			if box.Min[axis] > box.Max[axis] {
				return nil, fmt.Errorf("level box %d: min %v exceeds max %v", i, box.Min, box.Max)
			}
		}
		for x := box.Min[0]; x <= box.Max[0]; x++ {
			for y := box.Min[1]; y <= box.Max[1]; y++ {
				for z := box.Min[2]; z <= box.Max[2]; z++ {
					g.SetSolid(x, y, z, box.Material)
				}
			}
		}
	}
	for _, b := range level.Blocks {
		g.SetSolid(b.Pos[0], b.Pos[1], b.Pos[2], b.Material)
	}
	return g, nil
}

func (g *Grid) SetSolid(x, y, z int, material string) {
	if material == "" {
		material = DefaultMaterial
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blocks[BlockPos{X: x, Y: y, Z: z}] = material
}

func (g *Grid) Clear(x, y, z int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := BlockPos{X: x, Y: y, Z: z}
	if _, ok := g.blocks[pos]; !ok {
		return false
	}
	delete(g.blocks, pos)
	return true
}

func (g *Grid) IsSolid(x, y, z int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.blocks[BlockPos{X: x, Y: y, Z: z}]
	return ok
}

func (g *Grid) Material(x, y, z int) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.blocks[BlockPos{X: x, Y: y, Z: z}]
	return m, ok
}

// Replace swaps in the blocks of src. Holders of g see the new level at once.
func (g *Grid) Replace(src *Grid) {
	src.mu.RLock()
	blocks := make(map[BlockPos]string, len(src.blocks))
	for pos, m := range src.blocks {
		blocks[pos] = m
	}
	src.mu.RUnlock()

	g.mu.Lock()
	g.blocks = blocks
	g.mu.Unlock()
}

func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.blocks)
}

// Near returns the blocks whose cell lies within radius of (x, y, z),
// ordered by Y, then X, then Z.
func (g *Grid) Near(x, y, z, radius float64) []Block {
	r2 := radius * radius
	g.mu.RLock()
	out := make([]Block, 0, 64)
	for pos, m := range g.blocks {
		dx := float64(pos.X) + 0.5 - x
		dy := float64(pos.Y) + 0.5 - y
		dz := float64(pos.Z) + 0.5 - z
		if dx*dx+dy*dy+dz*dz > r2 {
			continue
		}
		out = append(out, Block{Pos: pos, Material: m})
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return out
}
