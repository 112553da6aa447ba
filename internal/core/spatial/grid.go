package spatial

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCellSize is close to the typical entity extent of the tile set.
const DefaultCellSize = 24.0

// AABB is an axis-aligned box in world units. Min == Max describes a point.
type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// PointBox returns the degenerate box used for entities without a bounding box.
func PointBox(p mgl64.Vec2) AABB {
	return AABB{Min: p, Max: p}
}

// BoxAround returns the box centered on c with the given half extents.
func BoxAround(c, half mgl64.Vec2) AABB {
	return AABB{Min: c.Sub(half), Max: c.Add(half)}
}

// CellCoord is a cell coordinate on the integer grid.
type CellCoord struct {
	X, Y int32
}

type cellKey uint64

func keyOf(c CellCoord) cellKey {
	return cellKey(uint64(uint32(c.X))<<32 | uint64(uint32(c.Y)))
}

func (k cellKey) coord() CellCoord {
	return CellCoord{X: int32(uint32(k >> 32)), Y: int32(uint32(k))}
}

// cellSpan is an inclusive rectangle of cells.
type cellSpan struct {
	lo, hi CellCoord
}

// area saturates at math.MaxInt64.
func (s cellSpan) area() int64 {
	w := int64(s.hi.X) - int64(s.lo.X) + 1
	h := int64(s.hi.Y) - int64(s.lo.Y) + 1
	if w <= 0 || h <= 0 {
		return 0
	}
	if w > math.MaxInt64/h {
		return math.MaxInt64
	}
	return w * h
}

func (s cellSpan) contains(c CellCoord) bool {
	return c.X >= s.lo.X && c.X <= s.hi.X && c.Y >= s.lo.Y && c.Y <= s.hi.Y
}

func (s cellSpan) overlaps(o cellSpan) bool {
	return s.lo.X <= o.hi.X && o.lo.X <= s.hi.X && s.lo.Y <= o.hi.Y && o.lo.Y <= s.hi.Y
}

// MaxSpanCells bounds how many cells one id is written into. Boxes spanning
// more are kept in a side list and matched by span overlap instead.
const MaxSpanCells = 1024

// Grid is a uniform hash grid for broad-phase queries.
// Accessed only from the simulation goroutine, no locks.
type Grid struct {
	cellSize float64
	cells    map[cellKey]map[uint64]struct{} // cell → set of ids
	owners   map[uint64][]cellKey            // id → cells it currently occupies
	large    map[uint64]cellSpan             // ids whose box exceeds MaxSpanCells
}

func New(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[uint64]struct{}),
		owners:   make(map[uint64][]cellKey),
		large:    make(map[uint64]cellSpan),
	}
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// CellOf returns the cell containing a world position.
func (g *Grid) CellOf(p mgl64.Vec2) CellCoord {
	return CellCoord{X: g.toCell(p.X()), Y: g.toCell(p.Y())}
}

// toCell floors v to a cell index, saturating at the int32 range.
func (g *Grid) toCell(v float64) int32 {
	c := math.Floor(v / g.cellSize)
	switch {
	case math.IsNaN(c):
		return 0
	case c <= math.MinInt32:
		return math.MinInt32
	case c >= math.MaxInt32:
		return math.MaxInt32
	}
	return int32(c)
}

// span returns the inclusive cell range covered by box.
func (g *Grid) span(box AABB) cellSpan {
	return cellSpan{lo: g.CellOf(box.Min), hi: g.CellOf(box.Max)}
}

// Update moves id to the cells overlapping box, dropping every previous membership.
func (g *Grid) Update(id uint64, box AABB) {
	g.Remove(id)

	sp := g.span(box)
	if sp.area() > MaxSpanCells {
		g.large[id] = sp
		return
	}
	keys := make([]cellKey, 0, sp.area())
	for cx := int64(sp.lo.X); cx <= int64(sp.hi.X); cx++ {
		for cy := int64(sp.lo.Y); cy <= int64(sp.hi.Y); cy++ {
			k := keyOf(CellCoord{X: int32(cx), Y: int32(cy)})
			cell := g.cells[k]
			if cell == nil {
				cell = make(map[uint64]struct{})
				g.cells[k] = cell
			}
			cell[id] = struct{}{}
			keys = append(keys, k)
		}
	}
	g.owners[id] = keys
}

// Remove takes id out of every cell. Unknown ids are ignored.
func (g *Grid) Remove(id uint64) {
	delete(g.large, id)
	keys, ok := g.owners[id]
	if !ok {
		return
	}
	for _, k := range keys {
		cell := g.cells[k]
		if cell == nil {
			continue
		}
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
	delete(g.owners, id)
}

// Has reports whether id occupies at least one cell.
func (g *Grid) Has(id uint64) bool {
	if _, ok := g.large[id]; ok {
		return true
	}
	_, ok := g.owners[id]
	return ok
}

// Cells returns the cells id currently occupies. Ids wider than
// MaxSpanCells are not written cell by cell and report none.
func (g *Grid) Cells(id uint64) []CellCoord {
	keys := g.owners[id]
	out := make([]CellCoord, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.coord())
	}
	return out
}

// Len returns the number of tracked ids.
func (g *Grid) Len() int { return len(g.owners) + len(g.large) }

// Potential returns every id sharing at least one cell with id, excluding id.
func (g *Grid) Potential(id uint64) []uint64 {
	if sp, ok := g.large[id]; ok {
		seen := g.collect(sp)
		delete(seen, id)
		return sortedIDs(seen)
	}
	keys := g.owners[id]
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{})
	for _, k := range keys {
		for other := range g.cells[k] {
			if other != id {
				seen[other] = struct{}{}
			}
		}
	}
	for other, sp := range g.large {
		for _, k := range keys {
			if sp.contains(k.coord()) {
				seen[other] = struct{}{}
				break
			}
		}
	}
	return sortedIDs(seen)
}

// InRange returns every id in the cells overlapping the square center ± radius.
// Callers that need a true circle re-filter by distance.
func (g *Grid) InRange(center mgl64.Vec2, radius float64) []uint64 {
	if radius < 0 {
		radius = -radius
	}
	return g.Query(BoxAround(center, mgl64.Vec2{radius, radius}))
}

// Query returns every id in the cells overlapping box. The cost is bounded
// by the smaller of the box's cell count and the number of occupied cells.
func (g *Grid) Query(box AABB) []uint64 {
	return sortedIDs(g.collect(g.span(box)))
}

func (g *Grid) collect(sp cellSpan) map[uint64]struct{} {
	seen := make(map[uint64]struct{})
	if sp.area() > int64(len(g.cells)) {
		for k, cell := range g.cells {
			if !sp.contains(k.coord()) {
				continue
			}
			for id := range cell {
				seen[id] = struct{}{}
			}
		}
	} else {
		for cx := int64(sp.lo.X); cx <= int64(sp.hi.X); cx++ {
			for cy := int64(sp.lo.Y); cy <= int64(sp.hi.Y); cy++ {
				for id := range g.cells[keyOf(CellCoord{X: int32(cx), Y: int32(cy)})] {
					seen[id] = struct{}{}
				}
			}
		}
	}
	for id, other := range g.large {
		if sp.overlaps(other) {
			seen[id] = struct{}{}
		}
	}
	return seen
}

// Clear drops all memberships.
func (g *Grid) Clear() {
	clear(g.cells)
	clear(g.owners)
	clear(g.large)
}

func sortedIDs(set map[uint64]struct{}) []uint64 {
	if len(set) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
