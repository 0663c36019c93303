// Package gfx draws the experiment screens into a HAL framebuffer.
package gfx

import (
	"image/color"

	"visuomotor/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
	Red   = color.RGBA{R: 255, A: 255}
	Green = color.RGBA{G: 255, A: 255}
	Blue  = color.RGBA{B: 255, A: 255}
)

// Canvas draws into an RGB565 framebuffer. It implements drivers.Displayer.
type Canvas struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*Canvas)(nil)

// NewCanvas returns a canvas over fb, or nil when fb is not drawable.
func NewCanvas(fb hal.Framebuffer) *Canvas {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	return &Canvas{fb: fb}
}

// Width returns the framebuffer width in pixels.
func (c *Canvas) Width() int { return c.fb.Width() }

// Height returns the framebuffer height in pixels.
func (c *Canvas) Height() int { return c.fb.Height() }

func (c *Canvas) Size() (x, y int16) {
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	buf := c.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= c.fb.Width() || iy < 0 || iy >= c.fb.Height() {
		return
	}
	off := iy*c.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	pixel := hal.RGB565(col.R, col.G, col.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Display presents the frame.
func (c *Canvas) Display() error { return c.fb.Present() }

// Clear fills the frame with col.
func (c *Canvas) Clear(col color.RGBA) { c.fb.ClearRGB(col.R, col.G, col.B) }

// Circle draws a one pixel outline.
func (c *Canvas) Circle(x, y, r int, col color.RGBA) {
	if r <= 0 {
		c.SetPixel(int16(x), int16(y), col)
		return
	}
	tinydraw.Circle(c, int16(x), int16(y), int16(r), col)
}

// Disc draws a filled circle.
func (c *Canvas) Disc(x, y, r int, col color.RGBA) {
	tinydraw.FilledCircle(c, int16(x), int16(y), int16(r), col)
}

// TextScale enlarges the bitmap font so prompts stay legible on large screens.
const TextScale = 2

// Text draws s with its top-left corner at (x, y).
func (c *Canvas) Text(x, y int, s string, col color.RGBA) {
	d := &scaled{c: c, k: TextScale}
	font := &freemono.Bold9pt7b
	h := int16(font.YAdvance)
	tinyfont.WriteLine(d, font, int16(x/TextScale), int16(y/TextScale)+h, s, col)
}

// scaled maps each pixel of a smaller virtual display onto a k x k block.
type scaled struct {
	c *Canvas
	k int16
}

func (s *scaled) Size() (x, y int16) {
	w, h := s.c.Size()
	return w / s.k, h / s.k
}

func (s *scaled) SetPixel(x, y int16, col color.RGBA) {
	for dy := int16(0); dy < s.k; dy++ {
		for dx := int16(0); dx < s.k; dx++ {
			s.c.SetPixel(x*s.k+dx, y*s.k+dy, col)
		}
	}
}

func (s *scaled) Display() error { return s.c.Display() }
