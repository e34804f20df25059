package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/shipsim/internal/viz"
)

// braille dot bit for sub-pixel (row, col) within a cell
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG draws every set dot of a braille canvas as a circle, scale
// pixels per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a1420"/>
<g fill="%s">
`, width, height, width, height, fill)

	for row, cells := range canvas.Grid {
		for col, r := range cells {
			if r <= viz.BrailleBlank {
				continue
			}
			bits := r - viz.BrailleBlank
			for dy := range dotBits {
				for dx, bit := range dotBits[dy] {
					if bits&bit == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, scale*0.4)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
