package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"
	"github.com/mlange-42/ark/ecs"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
	"github.com/robotalks/arcadecar/pkg/sim/bots/car"
	"github.com/robotalks/arcadecar/pkg/sim/physics"
	"github.com/robotalks/arcadecar/pkg/sim/physics/arcade"
	"github.com/robotalks/arcadecar/pkg/sim/record"
	"github.com/robotalks/arcadecar/pkg/sim/visualization/see"
)

const (
	imageSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-150 -150 300 300">
		<g>
			<circle cx="0" cy="0" r="100" fill="none" stroke="black" stroke-width="8" />
			<path d="M 0 -140 L 60 -40 L -60 -40 Z" />
		</g>
	</svg>`
)

var tick = 20 * time.Millisecond

func init() {
	env.SetControllerType(l1.CarControllerType, l1.ControllerMeta{Description: "Simulation: arcade car"})
	env.SetupFlags()
	see.SetupFlags()
	car.SetupFlags()
	record.SetupFlags()
	flag.DurationVar(&tick, "tick", tick, "Fixed simulation timestep.")
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	world := ecs.NewWorld()
	ctl := car.NewConfig().NewController(env, &world)
	vis := see.NewConfig().NewAdapter()
	vis.Mapper = see.MapObjectFunc(func(obj see.VisibleObject) []see.Object {
		return []see.Object{
			see.ObjectFrom("image", obj).With("src", "data:image/svg+xml;utf8,"+imageSVG),
		}
	})
	vis.Subscribe(ctl)

	loop := fx.NewLoop()
	loop.Interval, loop.Timestep = tick, tick
	loop.Add(env, physics.NewIntegrator(&world), arcade.New(&world), ctl, vis)

	if conf := record.NewConfig(); conf.Enabled() {
		rec, err := conf.NewRecorder()
		if err != nil {
			glog.Exitf("recorder: %v", err)
		}
		loop.Add(rec.Subscribe(ctl))
		defer func() {
			ctl.UnsubscribeObjectsChange(rec)
			rec.Close()
		}()
	}

	loop.RunOrFail()
}
