// Package scene wires a Manager, the built-in systems and the injected
// services into one steppable simulation.
package scene

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/l1jgo/sim2d/internal/config"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
	"github.com/l1jgo/sim2d/internal/data"
	"github.com/l1jgo/sim2d/internal/service"
	"github.com/l1jgo/sim2d/internal/system"
	"go.uber.org/zap"
)

type Scene struct {
	ID       uuid.UUID
	Manager  *ecs.Manager
	Runner   *coresys.Runner
	Services service.Services

	collision *system.CollisionSystem
	log       *zap.Logger
}

// New builds a scene and registers the built-in systems. Every log line of
// the scene carries its run id.
func New(cfg config.SimConfig, services service.Services, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	if services.Audio == nil {
		services.Audio = service.NopAudio{}
	}
	if services.Assets == nil {
		services.Assets = service.NewAssets()
	}
	if services.Input == nil {
		services.Input = service.NewStaticInput()
	}

	id := uuid.New()
	log = log.With(zap.String("scene", id.String()))
	mgr := ecs.NewManager(ecs.WithLogger(log), ecs.WithCellSize(cfg.CellSize))

	s := &Scene{
		ID:        id,
		Manager:   mgr,
		Runner:    coresys.NewRunner(),
		Services:  services,
		collision: system.NewCollisionSystem(mgr),
		log:       log,
	}

	s.Runner.Register(system.NewCommitSystem(mgr))
	s.Runner.Register(system.NewInputSystem(mgr, services.Input, cfg.MoveSpeed))
	s.Runner.Register(system.NewMovementSystem(mgr, mgl64.Vec2{0, cfg.Gravity}))
	s.Runner.Register(system.NewLifetimeSystem(mgr, log))
	s.Runner.Register(s.collision)
	s.Runner.Register(system.NewHierarchySystem(mgr, log))

	log.Info("scene created",
		zap.Float64("cell_size", mgr.Grid().CellSize()),
		zap.Int("systems", s.Runner.Len()),
	)
	return s
}

// AttachRenderer draws every frame through d.
func (s *Scene) AttachRenderer(d system.Drawer) {
	s.Runner.Register(system.NewRenderSystem(s.Manager, d, s.log))
}

// LoadLevel registers the prefab table and builds the level. The level's
// entities become live on the next Step.
func (s *Scene) LoadLevel(lv *data.Level, prefabs *data.PrefabTable, scripts data.ScriptBinder) ([]*ecs.Entity, error) {
	prefabs.RegisterAll(s.Manager, s.Services.Assets, scripts)
	ents, err := lv.Build(s.Manager)
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	s.log.Info("level loaded",
		zap.String("level", lv.Name),
		zap.Int("width", lv.Width()),
		zap.Int("height", lv.Height()),
		zap.Int("entities", len(ents)),
	)
	return ents, nil
}

// Step runs one frame.
func (s *Scene) Step(dt time.Duration) {
	s.Runner.Tick(dt)
}

// Frame returns the number of completed frames.
func (s *Scene) Frame() uint64 { return s.Runner.Frame() }

// Contacts returns the number of touching pairs in the last frame.
func (s *Scene) Contacts() int { return s.collision.Contacts() }

func (s *Scene) Logger() *zap.Logger { return s.log }
