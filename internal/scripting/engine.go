package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/sim2d/internal/service"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running entity behaviors.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	audio service.Audio
}

// NewEngine creates a Lua engine and loads every script in dir, core/ first.
// A missing directory simply yields an engine with no behaviors.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, audio: service.NopAudio{}}

	if err := e.loadDir(filepath.Join(dir, "core")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load core scripts: %w", err)
	}
	if err := e.loadDir(dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// SetAudio routes "play" commands to a.
func (e *Engine) SetAudio(a service.Audio) {
	if a == nil {
		a = service.NopAudio{}
	}
	e.audio = a
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the engine's VM. Used by tools and tests to
// define behaviors without files.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Contact kinds, matching the Lua handler suffixes.
const (
	KindCollision = "collision"
	KindTrigger   = "trigger"
)

var kinds = []string{KindCollision, KindTrigger}

func handlerName(script, kind string) string {
	return script + "_on_" + kind
}

// HasHandlers reports whether script defines at least one contact handler.
func (e *Engine) HasHandlers(script string) bool {
	for _, k := range kinds {
		if e.vm.GetGlobal(handlerName(script, k)).Type() == lua.LTFunction {
			return true
		}
	}
	return false
}

// EntityView is the read-only snapshot of an entity handed to Lua.
type EntityView struct {
	ID   uint64
	Tags []string
	X, Y float64
}

// ContactContext holds pre-packed data for one contact, seen from Self.
type ContactContext struct {
	Self     EntityView
	Other    EntityView
	OverlapX float64
	OverlapY float64
	NormalX  float64
	NormalY  float64
}

// Command is a single action returned by a Lua handler.
type Command struct {
	Op       string  // "destroy", "add_tag", "remove_tag", "push", "play", "spawn"
	Target   string  // "self" (default) or "other"
	Tag      string  // add_tag / remove_tag
	Event    string  // push: event name, currently "jump"
	Strength float64 // push jump
	Name     string  // play: sound name
	Volume   float64 // play
	Prefab   string  // spawn: prefab placed at the target's position
}

// OnContact calls Lua <script>_on_<kind>(ctx) and returns its commands.
// A missing handler or a Lua error yields nil.
func (e *Engine) OnContact(script, kind string, ctx ContactContext) []Command {
	name := handlerName(script, kind)
	fn := e.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(kind))
	t.RawSetString("self", e.viewTable(ctx.Self))
	t.RawSetString("other", e.viewTable(ctx.Other))
	t.RawSetString("overlap", e.vecTable(ctx.OverlapX, ctx.OverlapY))
	t.RawSetString("normal", e.vecTable(ctx.NormalX, ctx.NormalY))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua contact handler error", zap.String("func", name), zap.Error(err),
			zap.Uint64("entity", ctx.Self.ID))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []Command
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, Command{
				Op:       lStr(row, "op"),
				Target:   lStr(row, "target"),
				Tag:      lStr(row, "tag"),
				Event:    lStr(row, "event"),
				Strength: lFloat(row, "strength"),
				Name:     lStr(row, "name"),
				Volume:   lFloat(row, "volume"),
				Prefab:   lStr(row, "prefab"),
			})
		}
	})
	return cmds
}

// viewTable packs an entity as {id, x, y, tags = {name = true, ...}}.
func (e *Engine) viewTable(v EntityView) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(v.ID))
	t.RawSetString("x", lua.LNumber(v.X))
	t.RawSetString("y", lua.LNumber(v.Y))
	tags := e.vm.NewTable()
	for _, tag := range v.Tags {
		tags.RawSetString(tag, lua.LTrue)
	}
	t.RawSetString("tags", tags)
	return t
}

func (e *Engine) vecTable(x, y float64) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(x))
	t.RawSetString("y", lua.LNumber(y))
	return t
}

// --- Lua helpers ---

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// lFloat reads a number field from a Lua table.
func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
