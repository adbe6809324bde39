package game

import (
	"encoding/binary"
	"hash/fnv"
	"strings"
)

// Grid is a square board of alive/dead cells stored row-major.
// Size never changes after NewGrid.
type Grid struct {
	Size  int
	Cells []bool
}

func NewGrid(size int) *Grid {
	if size < 0 {
		size = 0
	}
	return &Grid{Size: size, Cells: make([]bool, size*size)}
}

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

// Alive reports the state of p. Out-of-bounds cells are dead.
func (g *Grid) Alive(p Point) bool {
	if !g.InBounds(p) {
		return false
	}
	return g.Cells[p.Y*g.Size+p.X]
}

// Set changes the state of p. Out-of-bounds writes are ignored.
func (g *Grid) Set(p Point, alive bool) {
	if !g.InBounds(p) {
		return
	}
	g.Cells[p.Y*g.Size+p.X] = alive
}

func (g *Grid) LiveCount() int {
	n := 0
	for _, c := range g.Cells {
		if c {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is alive.
func (g *Grid) Empty() bool {
	for _, c := range g.Cells {
		if c {
			return false
		}
	}
	return true
}

// LiveCells lists alive cells in row-major order.
func (g *Grid) LiveCells() []Point {
	out := make([]Point, 0, 64)
	for i, c := range g.Cells {
		if c {
			out = append(out, Point{X: i % g.Size, Y: i / g.Size})
		}
	}
	return out
}

func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Size: g.Size, Cells: make([]bool, len(g.Cells))}
	copy(out.Cells, g.Cells)
	return out
}

// Hash fingerprints the grid contents.
func (g *Grid) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(g.Size))
	_, _ = h.Write(buf[:])

	row := make([]byte, g.Size)
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			row[x] = 0
			if g.Cells[y*g.Size+x] {
				row[x] = 1
			}
		}
		_, _ = h.Write(row)
	}
	return h.Sum64()
}

// Rows renders the grid as one string per row, '#' for alive and '.' for dead.
func (g *Grid) Rows() []string {
	rows := make([]string, g.Size)
	var b strings.Builder
	for y := 0; y < g.Size; y++ {
		b.Reset()
		for x := 0; x < g.Size; x++ {
			if g.Cells[y*g.Size+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[y] = b.String()
	}
	return rows
}

// GridFromRows parses the Rows format. Any byte other than '#' is dead.
// The grid size is the number of rows; short rows are padded with dead cells.
func GridFromRows(rows []string) *Grid {
	g := NewGrid(len(rows))
	for y, row := range rows {
		for x := 0; x < len(row) && x < g.Size; x++ {
			if row[x] == '#' {
				g.Cells[y*g.Size+x] = true
			}
		}
	}
	return g
}
