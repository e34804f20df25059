package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// RenderTrack draws the path, the vessel track and the final pose onto a
// new w x h cell canvas.
func RenderTrack(path dynamo.Path, samples []dynamo.Sample, w, h int) *Canvas {
	c := NewCanvas(w, h)
	track := lo.Map(samples, func(s dynamo.Sample, _ int) dynamo.Point {
		return dynamo.Point{X: s.X, Y: s.Y}
	})
	v := FitViewport(c, 0.05, append(append([]dynamo.Point(nil), path...), track...)...)

	c.DrawPolyline(v, path)
	for _, p := range track {
		c.Set(v.Project(p))
	}
	if len(samples) > 0 {
		last := samples[len(samples)-1]
		c.DrawVessel(v, dynamo.Pose{X: last.X, Y: last.Y, Heading: last.Heading}, 6/v.Scale)
	}
	return c
}

// Series extracts a named sample column. Angles are returned in degrees.
func Series(samples []dynamo.Sample, name string) ([]float64, bool) {
	var fn func(dynamo.Sample) float64
	switch name {
	case "x":
		fn = func(s dynamo.Sample) float64 { return s.X }
	case "y":
		fn = func(s dynamo.Sample) float64 { return s.Y }
	case "heading":
		fn = func(s dynamo.Sample) float64 { return dynamo.Degrees(s.Heading) }
	case "desired":
		fn = func(s dynamo.Sample) float64 { return dynamo.Degrees(s.DesiredHeading) }
	case "rudder":
		fn = func(s dynamo.Sample) float64 { return dynamo.Degrees(s.Rudder) }
	case "yaw_rate":
		fn = func(s dynamo.Sample) float64 { return dynamo.Degrees(s.YawRate) }
	case "cross_track":
		fn = func(s dynamo.Sample) float64 { return s.CrossTrack }
	default:
		return nil, false
	}
	return lo.Map(samples, func(s dynamo.Sample, _ int) float64 { return fn(s) }), true
}

// SeriesNames lists the names accepted by Series.
func SeriesNames() []string {
	return []string{"x", "y", "heading", "desired", "rudder", "yaw_rate", "cross_track"}
}

// RenderSeries plots values as an ascii line chart.
func RenderSeries(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
