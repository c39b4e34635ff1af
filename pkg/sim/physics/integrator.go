package physics

import (
	"github.com/mlange-42/ark/ecs"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/sim"
)

// Integrator is a minimal dynamics engine: semi-implicit Euler over
// dynamic bodies with linear damping. Collisions are not resolved.
type Integrator struct {
	filter *ecs.Filter5[sim.Transform, Acceleration, Velocity, Damping, RigidBody]
}

// NewIntegrator creates an Integrator over bodies in w.
func NewIntegrator(w *ecs.World) *Integrator {
	return &Integrator{
		filter: ecs.NewFilter5[sim.Transform, Acceleration, Velocity, Damping, RigidBody](w),
	}
}

// AddToLoop implements LoopAdder.
func (in *Integrator) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvIntegrate, fx.ControlFunc(func(cc fx.ControlContext) error {
		in.Integrate(cc)
		return nil
	}))
}

// Integrate advances all dynamic bodies by the elapsed time.
func (in *Integrator) Integrate(ctx Context) {
	dt := ctx.Elapsed().Seconds()
	if dt <= 0 {
		return
	}
	query := in.filter.Query()
	for query.Next() {
		tr, acc, vel, damping, kind := query.Get()
		if *kind != Dynamic {
			continue
		}
		vel.Linear = vel.Linear.Add(acc.Linear.Mul(dt))
		vel.Linear = vel.Linear.Mul(1 / (1 + dt*damping.Linear))
		tr.Translation = tr.Translation.Add(vel.Linear.Mul(dt))
	}
}
