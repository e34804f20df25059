package viz

import (
	"math"
	"strings"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// BrailleBlank is the empty braille cell. Set dots are OR-ed onto it.
const BrailleBlank rune = 0x2800

// Braille dots, 2 columns by 4 rows per cell:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid of Width x Height cells, i.e. 2*Width by
// 4*Height dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// cell returns the grid cell and dot mask for dot (x, y), ok false when
// outside the canvas.
func (c *Canvas) cell(x, y int) (*rune, rune, bool) {
	if x < 0 || y < 0 {
		return nil, 0, false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return nil, 0, false
	}
	return &c.Grid[row][col], pixelMap[y%4][x%2], true
}

// Set lights dot (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if r, bit, ok := c.cell(x, y); ok {
		*r |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if r, bit, ok := c.cell(x, y); ok {
		*r = BrailleBlank | (*r &^ bit)
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	r, bit, ok := c.cell(x, y)
	return ok && *r&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = BrailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world metres onto canvas dots with a uniform scale and
// north up.
type Viewport struct {
	MinX, MinY float64
	Scale      float64 // dots per metre
	DotsW      int
	DotsH      int
}

// FitViewport frames pts on c with a relative margin on every side.
func FitViewport(c *Canvas, margin float64, pts ...dynamo.Point) Viewport {
	v := Viewport{DotsW: c.Width * 2, DotsH: c.Height * 4, Scale: 1}
	if len(pts) == 0 {
		return v
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX := math.Max(maxX-minX, 1)
	spanY := math.Max(maxY-minY, 1)
	minX -= spanX * margin
	minY -= spanY * margin
	spanX *= 1 + 2*margin
	spanY *= 1 + 2*margin

	v.Scale = math.Min(float64(v.DotsW-1)/spanX, float64(v.DotsH-1)/spanY)
	// centre the shorter axis
	v.MinX = minX - (float64(v.DotsW-1)/v.Scale-spanX)/2
	v.MinY = minY - (float64(v.DotsH-1)/v.Scale-spanY)/2
	return v
}

// Project returns the dot for world point p. y grows downward on screen.
func (v Viewport) Project(p dynamo.Point) (int, int) {
	x := int(math.Round((p.X - v.MinX) * v.Scale))
	y := v.DotsH - 1 - int(math.Round((p.Y-v.MinY)*v.Scale))
	return x, y
}

// DrawPolyline joins consecutive points.
func (c *Canvas) DrawPolyline(v Viewport, pts []dynamo.Point) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.Project(pts[i-1])
		x1, y1 := v.Project(pts[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// DrawVessel draws a short heading tick from the vessel position.
func (c *Canvas) DrawVessel(v Viewport, pose dynamo.Pose, length float64) {
	tip := dynamo.Point{
		X: pose.X + length*math.Cos(pose.Heading),
		Y: pose.Y + length*math.Sin(pose.Heading),
	}
	x0, y0 := v.Project(pose.Point())
	x1, y1 := v.Project(tip)
	c.DrawLine(x0, y0, x1, y1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			c.Set(x0+dx, y0+dy)
		}
	}
}
