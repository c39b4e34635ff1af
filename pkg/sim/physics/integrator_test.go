package physics

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/arcadecar/pkg/sim"
)

func requireVec(t *testing.T, expect, actual mgl64.Vec3) {
	t.Helper()
	for i := range expect {
		require.InDelta(t, expect[i], actual[i], 1e-9, "component %d of %v", i, actual)
	}
}

func TestIntegrate(t *testing.T) {
	testCases := []struct {
		name    string
		kind    RigidBody
		accel   mgl64.Vec3
		vel     mgl64.Vec3
		damping float64
		dt      time.Duration
		expectV mgl64.Vec3
		expectX mgl64.Vec3
	}{
		{
			name:    "at rest",
			expectV: mgl64.Vec3{},
			expectX: mgl64.Vec3{},
			dt:      time.Second,
		},
		{
			name:    "accelerate without damping",
			accel:   mgl64.Vec3{0, 0, -10},
			dt:      time.Second,
			expectV: mgl64.Vec3{0, 0, -10},
			expectX: mgl64.Vec3{0, 0, -10},
		},
		{
			name:    "damped coasting",
			vel:     mgl64.Vec3{4, 0, 0},
			damping: 1,
			dt:      time.Second,
			expectV: mgl64.Vec3{2, 0, 0},
			expectX: mgl64.Vec3{2, 0, 0},
		},
		{
			name:    "handbrake damping",
			vel:     mgl64.Vec3{12, 0, 0},
			damping: 5,
			dt:      time.Second,
			expectV: mgl64.Vec3{2, 0, 0},
			expectX: mgl64.Vec3{2, 0, 0},
		},
		{
			name:    "static body untouched",
			kind:    Static,
			accel:   mgl64.Vec3{1, 1, 1},
			vel:     mgl64.Vec3{1, 1, 1},
			dt:      time.Second,
			expectV: mgl64.Vec3{1, 1, 1},
			expectX: mgl64.Vec3{},
		},
		{
			name:    "no elapsed time",
			accel:   mgl64.Vec3{1, 1, 1},
			vel:     mgl64.Vec3{1, 1, 1},
			expectV: mgl64.Vec3{1, 1, 1},
			expectX: mgl64.Vec3{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			bodies := ecs.NewMap5[sim.Transform, Acceleration, Velocity, Damping, RigidBody](&w)
			tr := sim.TransformAt(mgl64.Vec3{})
			kind := tc.kind
			e := bodies.NewEntity(&tr, &Acceleration{Linear: tc.accel}, &Velocity{Linear: tc.vel},
				&Damping{Linear: tc.damping}, &kind)

			NewIntegrator(&w).Integrate(Fixed(context.Background(), time.Now(), tc.dt))

			velocities := ecs.NewMap[Velocity](&w)
			transforms := ecs.NewMap[sim.Transform](&w)
			requireVec(t, tc.expectV, velocities.Get(e).Linear)
			requireVec(t, tc.expectX, transforms.Get(e).Translation)
		})
	}
}

func TestRigidBodyString(t *testing.T) {
	require.Equal(t, "dynamic", Dynamic.String())
	require.Equal(t, "static", Static.String())
	require.Equal(t, "kinematic", Kinematic.String())
	require.Equal(t, "unknown", RigidBody(42).String())
}
