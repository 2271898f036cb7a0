package host

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Display adapts a Framebuffer to the drivers.Displayer interface so tinyfont
// can draw on it.
type Display struct {
	FB *Framebuffer
}

var _ drivers.Displayer = Display{}

func (d Display) Size() (x, y int16) {
	if d.FB == nil {
		return 0, 0
	}
	return int16(d.FB.Width()), int16(d.FB.Height())
}

func (d Display) SetPixel(x, y int16, c color.RGBA) {
	if d.FB == nil {
		return
	}
	d.FB.SetPixel(int(x), int(y), rgb565(c.R, c.G, c.B))
}

func (d Display) Display() error { return nil }
