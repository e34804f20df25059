package dynamo

import "math"

const twoPi = 2 * math.Pi

// NormalizeAngle wraps a into (-π, π]. Runs in constant time for any finite
// magnitude; non-finite input yields NaN.
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return math.NaN()
	}
	w := math.Mod(a+math.Pi, twoPi)
	if w <= 0 {
		w += twoPi
	}
	return w - math.Pi
}

// AngleDiff returns the signed shortest rotation from b to a.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(a - b)
}

// Bearing is the direction of travel from p to q, measured counter-clockwise
// from the +x axis. ok is false when the points coincide.
func Bearing(p, q Point) (angle float64, ok bool) {
	dx, dy := q.X-p.X, q.Y-p.Y
	if dx == 0 && dy == 0 {
		return 0, false
	}
	return math.Atan2(dy, dx), true
}

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func isInf(v float64) bool { return math.IsInf(v, 0) || math.IsNaN(v) }
