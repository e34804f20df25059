package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

var framePalette = color.Palette{
	color.RGBA{R: 10, G: 20, B: 32, A: 255},
	color.RGBA{R: 0, G: 230, B: 180, A: 255},
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	if err := saveGIF(m.gifPath, m.frames); err != nil {
		m.message = err.Error()
	} else if len(m.frames) > 0 {
		m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.frames = nil
}

func (m *Model) captureFrame() {
	m.frames = append(m.frames, CanvasImage(m.canvas, 8, 16))
}

// CanvasImage rasterises a canvas at charW x charH pixels per cell.
func CanvasImage(c *Canvas, charW, charH int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), framePalette)
	dotW, dotH := charW/2, charH/4
	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

func saveGIF(path string, frames []*image.Paletted) error {
	if len(frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
