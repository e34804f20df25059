package route

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// Resample inserts evenly spaced points so that no segment is longer than
// spacing, and drops consecutive duplicates. spacing <= 0 only drops
// duplicates.
func Resample(path dynamo.Path, spacing float64) (dynamo.Path, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", dynamo.ErrDegeneratePath)
	}
	out := dynamo.Path{path[0]}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		d := a.Dist(b)
		if d == 0 {
			continue
		}
		n := 1
		if spacing > 0 {
			n = int(math.Ceil(d / spacing))
		}
		for k := 1; k <= n; k++ {
			f := float64(k) / float64(n)
			out = append(out, dynamo.Point{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f})
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Length is the polyline length in metres.
func Length(path dynamo.Path) float64 {
	if len(path) < 2 {
		return 0
	}
	return lo.Sum(lo.Map(path[1:], func(p dynamo.Point, i int) float64 {
		return path[i].Dist(p)
	}))
}

// Offset translates every point by (dx, dy).
func Offset(path dynamo.Path, dx, dy float64) dynamo.Path {
	return lo.Map(path, func(p dynamo.Point, _ int) dynamo.Point {
		return dynamo.Point{X: p.X + dx, Y: p.Y + dy}
	})
}
