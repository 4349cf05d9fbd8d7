package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Frame is a decoded raster in 8-bit RGB, row-major, 3 bytes per pixel.
// Frames are ephemeral: they belong to the request that decoded them and are
// never retained by the session state.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// RGBAt returns the pixel at (x, y). Out-of-range coordinates return black.
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, 0, 0
	}
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// FromImage converts any decoded image to an RGB frame. Palette, grayscale
// and alpha formats are flattened to plain RGB.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	f := &Frame{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*3),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			f.Pix[i] = c.R
			f.Pix[i+1] = c.G
			f.Pix[i+2] = c.B
			i += 3
		}
	}
	return f
}

// DecodeError indicates a malformed frame payload. It always wraps the
// underlying cause so corrupt captures surface instead of being swallowed.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frame decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("frame decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
