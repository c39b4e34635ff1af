package arcade

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/sim"
	"github.com/robotalks/arcadecar/pkg/sim/physics"
)

func stepOf(elapsed time.Duration) physics.Context {
	return physics.Fixed(context.Background(), time.Unix(100, 0), elapsed)
}

func TestDrive(t *testing.T) {
	testCases := []struct {
		name   string
		yaw    float64
		speed  float64
		accel  float64
		expect mgl64.Vec3
	}{
		{"facing +Z", math.Pi, 10, 1, mgl64.Vec3{0, 0, -10}},
		{"facing -Z", 0, 10, 1, mgl64.Vec3{0, 0, 10}},
		{"facing -Z reverse", 0, 10, -1, mgl64.Vec3{0, 0, -10}},
		{"facing -X half throttle", math.Pi / 2, 4, 0.5, mgl64.Vec3{2, 0, 0}},
		{"idle", math.Pi / 3, 10, 0, mgl64.Vec3{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tw := newTestWorld()
			motor, _ := tw.spawn(mgl64.Vec3{}, tc.yaw, 2, tc.speed, 1)
			tw.accels.Get(motor).Linear = mgl64.Vec3{7, 7, 7}
			tw.inputs.Get(motor).Acceleration = tc.accel
			require.Empty(t, tw.engine.Drive())
			requireVec(t, tc.expect, tw.accels.Get(motor).Linear)
		})
	}
}

func TestDriveOverwritesEachTick(t *testing.T) {
	tw := newTestWorld()
	motor, _ := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
	tw.inputs.Get(motor).Acceleration = 1
	tw.engine.Drive()
	tw.engine.Drive()
	requireVec(t, mgl64.Vec3{0, 0, 10}, tw.accels.Get(motor).Linear)
}

func TestDriveHandbrakeKeepsAcceleration(t *testing.T) {
	tw := newTestWorld()
	motor, _ := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
	prior := mgl64.Vec3{1, 2, 3}
	tw.accels.Get(motor).Linear = prior
	*tw.inputs.Get(motor) = Input{Acceleration: 1, Handbrake: true}
	require.Empty(t, tw.engine.Drive())
	require.Equal(t, prior, tw.accels.Get(motor).Linear)

	tw.inputs.Get(motor).Handbrake = false
	tw.engine.Drive()
	requireVec(t, mgl64.Vec3{0, 0, 10}, tw.accels.Get(motor).Linear)
}

func TestHandbrake(t *testing.T) {
	for _, prior := range []float64{0, 1, 5, 0.3, 42} {
		for _, pulled := range []bool{false, true} {
			tw := newTestWorld()
			motor, _ := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
			tw.dampings.Get(motor).Linear = prior
			tw.inputs.Get(motor).Handbrake = pulled
			tw.engine.Handbrake()
			expect := BaseDamping
			if pulled {
				expect = HandbrakeDamping
			}
			require.Equal(t, expect, tw.dampings.Get(motor).Linear, "prior %v pulled %v", prior, pulled)
		}
	}
}

func TestTurn(t *testing.T) {
	testCases := []struct {
		name     string
		velocity mgl64.Vec3
		turn     float64
		expect   float64
	}{
		{"at rest", mgl64.Vec3{}, 1, 0},
		{"half ramp", mgl64.Vec3{0, 0, -5}, 1, 0.05},
		{"ramp end", mgl64.Vec3{10, 0, 0}, 1, 0.1},
		{"saturated", mgl64.Vec3{0, 0, 20}, 1, 0.1},
		{"saturated right", mgl64.Vec3{0, 0, 20}, -1, -0.1},
		{"no steering", mgl64.Vec3{0, 0, 20}, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tw := newTestWorld()
			motor, car := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
			tw.velocities.Get(motor).Linear = tc.velocity
			tw.inputs.Get(motor).Turn = tc.turn
			require.Empty(t, tw.engine.Turn(stepOf(100*time.Millisecond)))
			require.InDelta(t, tc.expect, tw.transforms.Get(car).Yaw().Radians(), epsilon)
			require.Equal(t, mgl64.QuatIdent(), tw.transforms.Get(motor).Rotation)
		})
	}
}

func TestTurnAccumulates(t *testing.T) {
	tw := newTestWorld()
	motor, car := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
	tw.velocities.Get(motor).Linear = mgl64.Vec3{0, 0, -20}
	tw.inputs.Get(motor).Turn = 1
	for i := 0; i < 5; i++ {
		tw.engine.Turn(stepOf(100 * time.Millisecond))
	}
	require.InDelta(t, 0.5, tw.transforms.Get(car).Yaw().Radians(), 1e-6)
	requireVec(t, mgl64.Vec3{-math.Sin(0.5), 0, -math.Cos(0.5)}, tw.transforms.Get(car).Forward())
}

func TestSyncPosition(t *testing.T) {
	tw := newTestWorld()
	motor, car := tw.spawn(mgl64.Vec3{}, math.Pi/4, 3, 10, 1)
	tw.transforms.Get(motor).Translation = mgl64.Vec3{2, 5, -1}
	rotation := tw.transforms.Get(car).Rotation

	require.Empty(t, tw.engine.SyncPosition())
	requireVec(t, mgl64.Vec3{2, 3.5, -1}, tw.transforms.Get(car).Translation)
	require.Equal(t, rotation, tw.transforms.Get(car).Rotation)

	require.Empty(t, tw.engine.SyncPosition())
	requireVec(t, mgl64.Vec3{2, 3.5, -1}, tw.transforms.Get(car).Translation)
	require.Equal(t, rotation, tw.transforms.Get(car).Rotation)
}

func TestMultipleMotors(t *testing.T) {
	tw := newTestWorld()
	m1, c1 := tw.spawn(mgl64.Vec3{0, 0, 0}, 0, 2, 10, 1)
	m2, c2 := tw.spawn(mgl64.Vec3{10, 0, 0}, math.Pi, 4, 5, 1)
	tw.inputs.Get(m1).Acceleration = 1
	tw.inputs.Get(m2).Acceleration = 1
	tw.engine.Drive()
	requireVec(t, mgl64.Vec3{0, 0, 10}, tw.accels.Get(m1).Linear)
	requireVec(t, mgl64.Vec3{0, 0, -5}, tw.accels.Get(m2).Linear)

	tw.transforms.Get(m1).Translation = mgl64.Vec3{1, 1, 1}
	tw.transforms.Get(m2).Translation = mgl64.Vec3{9, 2, 9}
	tw.engine.SyncPosition()
	requireVec(t, mgl64.Vec3{1, 0, 1}, tw.transforms.Get(c1).Translation)
	requireVec(t, mgl64.Vec3{9, 0, 9}, tw.transforms.Get(c2).Translation)
}

// danglingMotors spawns one motor per kind of unresolvable car reference.
func danglingMotors(tw *testWorld) []ecs.Entity {
	w := &tw.world
	var motors []ecs.Entity

	despawned := SpawnCar(w, sim.TransformAt(mgl64.Vec3{}))
	motors = append(motors, NewBundle(despawned, mgl64.Vec3{}, 2, 10, 1).Spawn(w))
	w.RemoveEntity(despawned)

	tr := sim.TransformAt(mgl64.Vec3{})
	unmarked := ecs.NewMap2[sim.Transform, physics.Velocity](w).NewEntity(&tr, &physics.Velocity{})
	motors = append(motors, NewBundle(unmarked, mgl64.Vec3{}, 2, 10, 1).Spawn(w))

	noTransform := ecs.NewMap2[Car, physics.Damping](w).NewEntity(&Car{}, &physics.Damping{})
	motors = append(motors, NewBundle(noTransform, mgl64.Vec3{}, 2, 10, 1).Spawn(w))

	motors = append(motors, NewBundle(ecs.Entity{}, mgl64.Vec3{}, 2, 10, 1).Spawn(w))
	return motors
}

func TestMissingCar(t *testing.T) {
	tw := newTestWorld()
	motor, car := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
	dangling := danglingMotors(tw)
	for _, m := range append(dangling, motor) {
		*tw.inputs.Get(m) = Input{Acceleration: 1, Turn: 1}
		tw.velocities.Get(m).Linear = mgl64.Vec3{0, 0, -20}
		tw.transforms.Get(m).Translation = mgl64.Vec3{0, 3, 0}
	}

	procs := []struct {
		proc Procedure
		run  func() Diagnostics
	}{
		{ProcDrive, tw.engine.Drive},
		{ProcTurn, func() Diagnostics { return tw.engine.Turn(stepOf(100 * time.Millisecond)) }},
		{ProcSyncPosition, tw.engine.SyncPosition},
	}
	for _, p := range procs {
		diags := p.run()
		require.Len(t, diags, len(dangling), "procedure %s", p.proc)
		reported := make(map[ecs.Entity]bool)
		for _, diag := range diags {
			require.Equal(t, p.proc, diag.Procedure)
			require.True(t, errors.Is(diag, ErrCarNotFound))
			require.Contains(t, diag.Error(), string(p.proc))
			reported[diag.Motor] = true
		}
		for _, m := range dangling {
			require.True(t, reported[m], "motor %v not reported by %s", m, p.proc)
		}
	}

	requireVec(t, mgl64.Vec3{0, 0, 10}, tw.accels.Get(motor).Linear)
	require.InDelta(t, 0.1, tw.transforms.Get(car).Yaw().Radians(), epsilon)
	requireVec(t, mgl64.Vec3{0, 2, 0}, tw.transforms.Get(car).Translation)

	for _, m := range dangling {
		require.Equal(t, mgl64.Vec3{}, tw.accels.Get(m).Linear)
	}

	tw.engine.Handbrake()
	for _, m := range append(dangling, motor) {
		require.Equal(t, BaseDamping, tw.dampings.Get(m).Linear)
	}
}

func TestDiagnosticsOf(t *testing.T) {
	var diags Diagnostics
	diags = diags.add(ProcDrive, ecs.Entity{}, ecs.Entity{})
	diags = diags.add(ProcTurn, ecs.Entity{}, ecs.Entity{})
	diags = diags.add(ProcDrive, ecs.Entity{}, ecs.Entity{})
	require.Len(t, diags.Of(ProcDrive), 2)
	require.Len(t, diags.Of(ProcTurn), 1)
	require.Empty(t, diags.Of(ProcSyncPosition))
}

func TestSpawnScenario(t *testing.T) {
	tw := newTestWorld()
	w := &tw.world

	facingPlusZ := sim.TransformAt(mgl64.Vec3{})
	facingPlusZ.RotateY(math.Pi)
	car := SpawnCar(w, facingPlusZ)
	motor := NewBundle(car, mgl64.Vec3{0, 0, 0}, 2, 10, 1).Spawn(w)
	require.Equal(t, mgl64.Vec3{0, 1, 0}, tw.transforms.Get(motor).Translation)

	*tw.inputs.Get(motor) = Input{Acceleration: 1}
	require.Empty(t, tw.engine.Drive())
	requireVec(t, mgl64.Vec3{0, 0, -10}, tw.accels.Get(motor).Linear)

	yaw := tw.transforms.Get(car).Yaw().Radians()
	require.Empty(t, tw.engine.Turn(stepOf(time.Second)))
	require.InDelta(t, yaw, tw.transforms.Get(car).Yaw().Radians(), epsilon)

	tw.engine.Handbrake()
	require.Equal(t, 1.0, tw.dampings.Get(motor).Linear)

	tw.transforms.Get(motor).Translation = mgl64.Vec3{0, 5, 0}
	require.Empty(t, tw.engine.SyncPosition())
	requireVec(t, mgl64.Vec3{0, 4, 0}, tw.transforms.Get(car).Translation)
}

func TestEngineInLoop(t *testing.T) {
	tw := newTestWorld()
	motor, car := tw.spawn(mgl64.Vec3{}, 0, 2, 10, 1)
	dangling := danglingMotors(tw)
	*tw.inputs.Get(motor) = Input{Acceleration: 1, Turn: 1}

	loop := fx.NewLoop()
	loop.Timestep = 100 * time.Millisecond
	loop.Add(physics.NewIntegrator(&tw.world), tw.engine)

	start := time.Unix(1000, 0)
	loop.Step(context.Background(), start)

	// drive pushes along +Z for a car facing -Z; the integrated velocity
	// is already visible to turn in the same tick.
	vel := tw.velocities.Get(motor).Linear
	require.InDelta(t, 1/1.1, vel.Z(), epsilon)
	require.InDelta(t, TurnRate(1, vel.Len(), 1)*0.1, tw.transforms.Get(car).Yaw().Radians(), epsilon)

	body := tw.transforms.Get(motor).Translation
	requireVec(t, mgl64.Vec3{body.X(), 0, body.Z()}, tw.transforms.Get(car).Translation)
	require.Greater(t, body.Z(), 0.0)

	diags := tw.engine.Diagnostics()
	require.Len(t, diags.Of(ProcDrive), len(dangling))
	require.Len(t, diags.Of(ProcTurn), len(dangling))
	require.Len(t, diags.Of(ProcSyncPosition), len(dangling))
	require.Empty(t, diags.Of(ProcHandbrake))

	loop.Step(context.Background(), start.Add(loop.Timestep))
	require.Len(t, tw.engine.Diagnostics(), 3*len(dangling))

	tw.inputs.Get(motor).Handbrake = true
	loop.Step(context.Background(), start.Add(2*loop.Timestep))
	require.Equal(t, HandbrakeDamping, tw.dampings.Get(motor).Linear)
}
