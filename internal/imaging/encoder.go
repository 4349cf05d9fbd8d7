package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// ToImage rebuilds a standard library image from the frame.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			src := (y*f.Width + x) * 3
			dst := img.PixOffset(x, y)
			img.Pix[dst] = f.Pix[src]
			img.Pix[dst+1] = f.Pix[src+1]
			img.Pix[dst+2] = f.Pix[src+2]
			img.Pix[dst+3] = 0xFF
		}
	}
	return img
}

// EncodeJPEG serializes the frame as JPEG, used when shipping frames to a
// remote inference sidecar.
func (f *Frame) EncodeJPEG(quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.ToImage(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
