package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/models"
)

type oscillator struct{}

func (oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (oscillator) StateDim() int   { return 2 }
func (oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestVesselTurnRate(t *testing.T) {
	// Constant rudder: r(t) = K*delta*(1 - exp(-t/T)).
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 5e-3},
		{"rk4", NewRK4(), 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := models.NewVessel(models.DefaultVesselParams(), models.VesselState{U: 4})
			if err != nil {
				t.Fatal(err)
			}
			v.WithIntegrator(tt.integ)

			for i := 0; i < 50; i++ {
				if err := v.Update(0.2, 0.1); err != nil {
					t.Fatal(err)
				}
			}

			want := 0.2 * (1 - math.Exp(-5.0/2.0))
			if math.Abs(v.State.R-want) > tt.tol {
				t.Errorf("yaw rate after 5s: got %.8f, want %.8f", v.State.R, want)
			}
		})
	}
}

func TestEulerStraightLine(t *testing.T) {
	v, _ := models.NewVessel(models.DefaultVesselParams(), models.VesselState{U: 4})
	v.WithIntegrator(NewEuler())

	for i := 0; i < 10; i++ {
		_ = v.Update(0, 0.1)
	}

	if math.Abs(v.State.X-4) > 1e-12 || v.State.Y != 0 {
		t.Errorf("expected (4, 0), got (%f, %f)", v.State.X, v.State.Y)
	}
}
