// Package render draws the simulation on a terminal through tcell. It is a
// debugging view: one terminal cell per UnitsPerCell world units across and
// twice that down, matching the usual glyph aspect ratio.
package render

import (
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"go.uber.org/zap"
)

// Viewer draws live entities carrying a Transform and a Sprite.
type Viewer struct {
	screen       tcell.Screen
	unitsPerCell float64
	follow       string
	tagStyles    []tagStyle
	log          *zap.Logger

	origin mgl64.Vec2 // world position of the top-left cell
}

type tagStyle struct {
	tag   string
	style tcell.Style
}

type Option func(*Viewer)

// WithFollow centers the view on the first live entity carrying tag.
func WithFollow(tag string) Option {
	return func(v *Viewer) { v.follow = tag }
}

// WithTagStyle draws entities carrying tag in style. The first matching
// option wins.
func WithTagStyle(tag string, style tcell.Style) Option {
	return func(v *Viewer) { v.tagStyles = append(v.tagStyles, tagStyle{tag, style}) }
}

func WithLogger(log *zap.Logger) Option {
	return func(v *Viewer) {
		if log != nil {
			v.log = log
		}
	}
}

// NewViewer wraps an initialized screen.
func NewViewer(screen tcell.Screen, unitsPerCell float64, opts ...Option) *Viewer {
	if unitsPerCell <= 0 {
		unitsPerCell = 1
	}
	v := &Viewer{screen: screen, unitsPerCell: unitsPerCell, log: zap.NewNop()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Origin returns the world position drawn at the top-left cell.
func (v *Viewer) Origin() mgl64.Vec2 { return v.origin }

// SetOrigin pins the view; a follow target overrides it on the next Draw.
func (v *Viewer) SetOrigin(o mgl64.Vec2) { v.origin = o }

type drawable struct {
	e      *ecs.Entity
	pos    mgl64.Vec2
	sprite *component.Sprite
}

// Draw clears the screen and paints every enabled sprite, lower layers first.
func (v *Viewer) Draw(m *ecs.Manager) error {
	w, h := v.screen.Size()
	v.track(m, w, h)

	var items []drawable
	ecs.Each2[ecs.Transform, component.Sprite](m, func(e *ecs.Entity, tr *ecs.Transform, sp *component.Sprite) {
		if !e.IsActive() || !sp.Enabled() {
			return
		}
		items = append(items, drawable{e: e, pos: tr.Position, sprite: sp})
	})
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].sprite.Layer != items[j].sprite.Layer {
			return items[i].sprite.Layer < items[j].sprite.Layer
		}
		return items[i].e.ID() < items[j].e.ID()
	})

	v.screen.Clear()
	for _, it := range items {
		col, row := v.CellOf(it.pos)
		if col < 0 || row < 0 || col >= w || row >= h {
			continue
		}
		glyph := it.sprite.Glyph
		if glyph == 0 {
			glyph = '?'
		}
		v.screen.SetContent(col, row, glyph, nil, v.styleFor(it.e))
	}
	v.screen.Show()
	return nil
}

// CellOf maps a world position to a screen cell under the current origin.
func (v *Viewer) CellOf(p mgl64.Vec2) (col, row int) {
	d := p.Sub(v.origin)
	return int(math.Floor(d.X() / v.unitsPerCell)), int(math.Floor(d.Y() / (2 * v.unitsPerCell)))
}

func (v *Viewer) track(m *ecs.Manager, w, h int) {
	if v.follow == "" {
		return
	}
	for _, e := range m.ByTag(v.follow) {
		if tr, ok := ecs.Lookup[ecs.Transform](e); ok && e.IsActive() {
			half := mgl64.Vec2{float64(w) * v.unitsPerCell / 2, float64(h) * v.unitsPerCell}
			v.origin = tr.Position.Sub(half)
			return
		}
	}
}

func (v *Viewer) styleFor(e *ecs.Entity) tcell.Style {
	for _, ts := range v.tagStyles {
		if e.HasTag(ts.tag) {
			return ts.style
		}
	}
	return tcell.StyleDefault
}

// Close restores the terminal.
func (v *Viewer) Close() {
	v.screen.Fini()
}
