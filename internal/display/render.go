package display

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Face7x13 glyph advance, used to truncate lines to the panel width.
const glyphWidth = 7

const marginX = 4

// Renderer rasterizes snapshots into monochrome images sized for the
// panel.
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Render draws the snapshot: title, timeline, Bluetooth status and the
// transient info line, top to bottom.
func (r *Renderer) Render(s Snapshot) image.Image {
	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(basicfont.Face7x13)

	lineHeight := (r.height - 10) / 4
	y := lineHeight

	for _, line := range []string{s.Title, s.Timeline(), s.BTStatus, s.Info} {
		dc.DrawString(r.fit(line), marginX, float64(y))
		y += lineHeight
	}

	return dc.Image()
}

func (r *Renderer) fit(line string) string {
	maxChars := (r.width - 2*marginX) / glyphWidth
	if maxChars < 1 || len(line) <= maxChars {
		return line
	}
	return line[:maxChars]
}

// Pack1bpp converts the image to the panel wire format: one bit per pixel,
// MSB first within each byte, rows padded to whole bytes. Set bits are
// white; ink is zero.
func Pack1bpp(img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	stride := (w + 7) / 8
	buf := make([]byte, stride*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			if c.Y >= 128 {
				buf[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return buf
}
