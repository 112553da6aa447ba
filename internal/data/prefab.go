package data

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/service"
	"gopkg.in/yaml.v3"
)

// PrefabDef is one entity template loaded from YAML.
type PrefabDef struct {
	Name     string        `yaml:"name"`
	Tags     []string      `yaml:"tags"`
	Size     [2]float64    `yaml:"size"`  // zero size = no bounding box
	Pivot    [2]float64    `yaml:"pivot"` // box center offset from the position, before scale
	Scale    [2]float64    `yaml:"scale"` // zero = 1,1
	Layer    int           `yaml:"layer"`
	Body     *BodyDef      `yaml:"body"` // nil = no Body, the entity counts as static scenery
	Sprite   string        `yaml:"sprite"`
	Glyph    string        `yaml:"glyph"`
	Script   string        `yaml:"script"`
	Jump     float64       `yaml:"jump"` // Jumper impulse, 0 = cannot jump
	Lifetime time.Duration `yaml:"lifetime"`
}

type BodyDef struct {
	Static           bool       `yaml:"static"`
	Trigger          bool       `yaml:"trigger"`
	TriggerEvents    bool       `yaml:"trigger_events"`
	PlayerControlled bool       `yaml:"player_controlled"`
	IgnoreGravity    bool       `yaml:"ignore_gravity"`
	Velocity         [2]float64 `yaml:"velocity"`
}

// ScriptBinder attaches a named script to an entity. scripting.Engine
// implements it.
type ScriptBinder interface {
	Bind(e *ecs.Entity, script string) error
}

type prefabListFile struct {
	Prefabs []PrefabDef `yaml:"prefabs"`
}

// PrefabTable holds all prefab definitions indexed by name.
type PrefabTable struct {
	defs map[string]*PrefabDef
}

// LoadPrefabTable loads prefab definitions from a YAML file.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab list: %w", err)
	}
	return ParsePrefabTable(raw)
}

// ParsePrefabTable parses YAML prefab definitions. Names must be unique and
// sizes non-negative.
func ParsePrefabTable(raw []byte) (*PrefabTable, error) {
	var f prefabListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefab list: %w", err)
	}
	t := &PrefabTable{defs: make(map[string]*PrefabDef, len(f.Prefabs))}
	for i := range f.Prefabs {
		def := &f.Prefabs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("prefab #%d: missing name", i)
		}
		if _, dup := t.defs[def.Name]; dup {
			return nil, fmt.Errorf("prefab %q: defined twice", def.Name)
		}
		if def.Size[0] < 0 || def.Size[1] < 0 {
			return nil, fmt.Errorf("prefab %q: negative size", def.Name)
		}
		t.defs[def.Name] = def
	}
	return t, nil
}

// Get returns a prefab by name, or nil if not found.
func (t *PrefabTable) Get(name string) *PrefabDef {
	return t.defs[name]
}

func (t *PrefabTable) Count() int {
	return len(t.defs)
}

// Names returns all prefab names in sorted order.
func (t *PrefabTable) Names() []string {
	out := make([]string, 0, len(t.defs))
	for name := range t.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RegisterAll registers every definition on m under its name. Sprite names
// are resolved through assets; scripts is optional.
func (t *PrefabTable) RegisterAll(m *ecs.Manager, assets *service.Assets, scripts ScriptBinder) {
	for _, name := range t.Names() {
		m.RegisterPrefab(name, &prefab{def: t.defs[name], assets: assets, scripts: scripts})
	}
}

type prefab struct {
	def     *PrefabDef
	assets  *service.Assets
	scripts ScriptBinder
}

func (p *prefab) Build(e *ecs.Entity, at ecs.Spawn) error {
	def := p.def
	for _, tag := range def.Tags {
		e.RequestAddTag(tag)
	}

	tr := ecs.Add(e, ecs.NewTransform(at.Position))
	if def.Scale != [2]float64{} {
		tr.Scale = mgl64.Vec2(def.Scale)
	}
	tr.Layer = def.Layer

	if def.Size != [2]float64{} {
		ecs.Add(e, &ecs.BBox{Size: mgl64.Vec2(def.Size), Pivot: mgl64.Vec2(def.Pivot)})
	}

	if b := def.Body; b != nil {
		ecs.Add(e, &component.Body{
			Velocity:         mgl64.Vec2(b.Velocity),
			Static:           b.Static,
			Trigger:          b.Trigger,
			TriggerEvents:    b.TriggerEvents,
			PlayerControlled: b.PlayerControlled,
			IgnoreGravity:    b.IgnoreGravity,
		})
	}

	if def.Sprite != "" || def.Glyph != "" {
		sp := &component.Sprite{Layer: def.Layer, Glyph: '#'}
		if r := []rune(def.Glyph); len(r) > 0 {
			sp.Glyph = r[0]
		}
		if def.Sprite != "" && p.assets != nil {
			sp.Texture = p.assets.Register(def.Sprite)
		}
		ecs.Add(e, sp)
	}

	if def.Jump > 0 {
		ecs.Add(e, &component.Jumper{Impulse: def.Jump})
	}
	if def.Lifetime > 0 {
		ecs.Add(e, &component.Lifetime{Remaining: def.Lifetime})
	}

	if def.Script != "" {
		if p.scripts == nil {
			return fmt.Errorf("prefab %q: script %q but no script engine", def.Name, def.Script)
		}
		if err := p.scripts.Bind(e, def.Script); err != nil {
			return fmt.Errorf("prefab %q: %w", def.Name, err)
		}
	}
	return nil
}
