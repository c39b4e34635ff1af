// Package arcade implements an arcade style car controller: an invisible
// sphere body is pushed around by the dynamics engine while a separate car
// entity follows it and owns the heading.
//
// Per tick, Drive and Handbrake prepare the body before integration,
// Turn and SyncPosition update the car after integration.
package arcade

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/sim"
	"github.com/robotalks/arcadecar/pkg/sim/physics"
)

// Engine runs the arcade procedures over all motors of a world.
type Engine struct {
	world *ecs.World

	drive     *ecs.Filter3[physics.Acceleration, Input, Motor]
	turn      *ecs.Filter3[Motor, Input, physics.Velocity]
	handbrake *ecs.Filter2[physics.Damping, Input]
	sync      *ecs.Filter2[Motor, sim.Transform]

	transforms *ecs.Map[sim.Transform]
	cars       *ecs.Map[Car]

	tick  time.Time
	diags Diagnostics
}

// New creates an Engine for motors in w.
func New(w *ecs.World) *Engine {
	return &Engine{
		world:      w,
		drive:      ecs.NewFilter3[physics.Acceleration, Input, Motor](w),
		turn:       ecs.NewFilter3[Motor, Input, physics.Velocity](w),
		handbrake:  ecs.NewFilter2[physics.Damping, Input](w),
		sync:       ecs.NewFilter2[Motor, sim.Transform](w),
		transforms: ecs.NewMap[sim.Transform](w),
		cars:       ecs.NewMap[Car](w),
	}
}

// AddToLoop implements LoopAdder.
func (e *Engine) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPreIntegrate,
		fx.ControlFunc(func(cc fx.ControlContext) error {
			e.report(cc, e.Drive())
			return nil
		}),
		fx.ControlFunc(func(cc fx.ControlContext) error {
			e.Handbrake()
			return nil
		}))
	l.AddController(fx.PrLvPostIntegrate,
		fx.ControlFunc(func(cc fx.ControlContext) error {
			e.report(cc, e.Turn(cc))
			return nil
		}),
		fx.ControlFunc(func(cc fx.ControlContext) error {
			e.report(cc, e.SyncPosition())
			return nil
		}))
}

// Diagnostics returns what was skipped during the latest tick run
// through the loop.
func (e *Engine) Diagnostics() Diagnostics {
	return e.diags
}

func (e *Engine) report(cc fx.ControlContext, diags Diagnostics) {
	if now := cc.Time(); !now.Equal(e.tick) {
		e.tick, e.diags = now, nil
	}
	diags.Warn()
	e.diags = append(e.diags, diags...)
}

// carTransform resolves the transform of a live car entity.
func (e *Engine) carTransform(car ecs.Entity) (*sim.Transform, bool) {
	if car == (ecs.Entity{}) || !e.world.Alive(car) {
		return nil, false
	}
	if !e.cars.Has(car) || !e.transforms.Has(car) {
		return nil, false
	}
	return e.transforms.Get(car), true
}

// isCar excludes car entities from motor queries.
func (e *Engine) isCar(entity ecs.Entity) bool {
	return e.cars.Has(entity)
}
