package route

import (
	"fmt"
	"sort"

	"github.com/san-kum/shipsim/internal/dynamo"
)

var shapes = map[string]func() dynamo.Path{
	"corner": func() dynamo.Path {
		return dynamo.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	},
	"straight": func() dynamo.Path {
		return dynamo.Path{{X: 0, Y: 0}, {X: 1000, Y: 0}}
	},
	"zigzag": func() dynamo.Path {
		p := dynamo.Path{{X: 0, Y: 0}}
		for i := 1; i <= 6; i++ {
			y := 60.0
			if i%2 == 0 {
				y = 0
			}
			p = append(p, dynamo.Point{X: float64(i) * 150, Y: y})
		}
		return p
	},
	"lawnmower": func() dynamo.Path {
		// survey pattern: 300 m legs, 80 m apart
		p := dynamo.Path{}
		for leg := 0; leg < 4; leg++ {
			y := float64(leg) * 80
			if leg%2 == 0 {
				p = append(p, dynamo.Point{X: 0, Y: y}, dynamo.Point{X: 300, Y: y})
			} else {
				p = append(p, dynamo.Point{X: 300, Y: y}, dynamo.Point{X: 0, Y: y})
			}
		}
		return p
	},
	"square": func() dynamo.Path {
		return dynamo.Path{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}, {X: 0, Y: 200}, {X: 0, Y: 0}}
	},
}

// Shape returns a fresh copy of a named preset geometry.
func Shape(name string) (dynamo.Path, error) {
	fn, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown route shape: %s (available: %v)", name, ShapeNames())
	}
	return fn(), nil
}

func ShapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
