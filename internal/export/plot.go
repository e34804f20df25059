// Package export renders runs to image files and SVG snapshots.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/shipsim/internal/dynamo"
)

var (
	pathColor    = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	trackColor   = color.RGBA{R: 0, G: 110, B: 200, A: 255}
	desiredColor = color.RGBA{R: 230, G: 140, B: 0, A: 255}
	rudderColor  = color.RGBA{R: 200, G: 30, B: 40, A: 255}
)

var errNoSamples = errors.New("no samples to plot")

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
)

func sampleXYs(samples []dynamo.Sample, fn func(dynamo.Sample) (float64, float64)) plotter.XYs {
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X, pts[i].Y = fn(s)
	}
	return pts
}

func newLine(pts plotter.XYs, c color.Color, width float64, dashed bool) (*plotter.Line, error) {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(width)
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}
	return line, nil
}

// Trajectory plots the reference path and the vessel track in the plane.
func Trajectory(path dynamo.Path, samples []dynamo.Sample) (*plot.Plot, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errNoSamples
	}

	p := plot.New()
	p.Title.Text = "Trajectory"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	ref, err := newLine(lo.Map(path, func(q dynamo.Point, _ int) plotter.XY {
		return plotter.XY{X: q.X, Y: q.Y}
	}), pathColor, 1.5, true)
	if err != nil {
		return nil, err
	}
	track, err := newLine(sampleXYs(samples, func(s dynamo.Sample) (float64, float64) {
		return s.X, s.Y
	}), trackColor, 2, false)
	if err != nil {
		return nil, err
	}

	start, err := plotter.NewScatter(plotter.XYs{{X: samples[0].X, Y: samples[0].Y}})
	if err != nil {
		return nil, err
	}
	start.GlyphStyle.Color = trackColor
	start.GlyphStyle.Radius = vg.Points(4)

	p.Add(ref, track, start)
	p.Legend.Add("path", ref)
	p.Legend.Add("vessel", track)
	p.Legend.Top = true
	return p, nil
}

// Angles plots heading, desired heading and rudder in degrees over time.
func Angles(samples []dynamo.Sample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}

	p := plot.New()
	p.Title.Text = "Heading and rudder"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (deg)"
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		c      color.Color
		dashed bool
		fn     func(dynamo.Sample) float64
	}{
		{"heading", trackColor, false, func(s dynamo.Sample) float64 { return s.Heading }},
		{"desired", desiredColor, true, func(s dynamo.Sample) float64 { return s.DesiredHeading }},
		{"rudder", rudderColor, false, func(s dynamo.Sample) float64 { return s.Rudder }},
	}
	for _, sr := range series {
		line, err := newLine(sampleXYs(samples, func(s dynamo.Sample) (float64, float64) {
			return s.Time, dynamo.Degrees(sr.fn(s))
		}), sr.c, 1.5, sr.dashed)
		if err != nil {
			return nil, err
		}
		p.Add(line)
		p.Legend.Add(sr.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// CrossTrack plots the signed cross-track error over time.
func CrossTrack(samples []dynamo.Sample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}

	p := plot.New()
	p.Title.Text = "Cross-track error"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "e (m)"
	p.Add(plotter.NewGrid())

	line, err := newLine(sampleXYs(samples, func(s dynamo.Sample) (float64, float64) {
		return s.Time, s.CrossTrack
	}), trackColor, 1.5, false)
	if err != nil {
		return nil, err
	}
	p.Add(line)
	return p, nil
}

// Save writes p to file. The extension picks the format (png, svg, pdf, ...).
func Save(p *plot.Plot, file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	return p.Save(plotWidth, plotHeight, file)
}

// WriteRunPlots saves trajectory, angles and cross-track plots into dir and
// returns the file names written.
func WriteRunPlots(dir, format string, path dynamo.Path, samples []dynamo.Sample) ([]string, error) {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}

	traj, err := Trajectory(path, samples)
	if err != nil {
		return nil, err
	}
	angles, err := Angles(samples)
	if err != nil {
		return nil, err
	}
	xte, err := CrossTrack(samples)
	if err != nil {
		return nil, err
	}

	plots := []struct {
		name string
		p    *plot.Plot
	}{
		{"trajectory", traj},
		{"angles", angles},
		{"cross_track", xte},
	}
	files := make([]string, 0, len(plots))
	for _, pl := range plots {
		file := filepath.Join(dir, pl.name+"."+format)
		if err := Save(pl.p, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}
