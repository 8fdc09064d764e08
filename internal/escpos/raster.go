// internal/escpos/raster.go
package escpos

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrUnsupportedFormat is returned when a source image's color model is
// neither RGB-family nor grayscale.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// PrintMode selects the raster magnification mode byte of GS v 0
type PrintMode byte

const (
	ModeNormal       PrintMode = 0x00
	ModeDoubleWidth  PrintMode = 0x01
	ModeDoubleHeight PrintMode = 0x02
	ModeDoubleBoth   PrintMode = 0x03
)

// DefaultThreshold is the default grayscale cutoff for binarization.
const DefaultThreshold = 128

var rasterHeader = []byte{0x1D, 0x76, 0x30} // GS v 0

// Rasterize converts a source image into a complete ESC/POS raster command:
// header, mode byte, row-byte-width and pixel-height as little-endian 16-bit
// pairs, then the packed monochrome rows. A pixel prints (bit set) when its
// luma is at or below the threshold. Rows are byte-aligned; the unused low
// bits of a partial final byte stay zero (white).
func Rasterize(img image.Image, threshold uint8, mode PrintMode) ([]byte, error) {
	if err := checkColorModel(img.ColorModel()); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d image", ErrUnsupportedFormat, width, height)
	}

	rowBytes := (width + 7) / 8

	out := make([]byte, 0, 8+rowBytes*height)
	out = append(out, rasterHeader...)
	out = append(out, byte(mode))
	out = append(out, byte(rowBytes%256), byte(rowBytes/256))
	out = append(out, byte(height%256), byte(height/256))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for xByte := 0; xByte < rowBytes; xByte++ {
			var packed byte
			for bit := 0; bit < 8; bit++ {
				x := bounds.Min.X + xByte*8 + bit
				if x >= bounds.Max.X {
					break
				}
				if luma(img.At(x, y)) <= threshold {
					packed |= 0x80 >> uint(bit)
				}
			}
			out = append(out, packed)
		}
	}

	return out, nil
}

// luma approximates perceptual luminance with integer weights summing to 128,
// so the final shift by 7 is exact.
func luma(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	// RGBA returns 16-bit components; scale down to 8-bit first.
	r8 := r >> 8
	g8 := g >> 8
	b8 := b >> 8
	return uint8((r8*38 + g8*75 + b8*15) >> 7)
}

// checkColorModel rejects color models the binarization step cannot interpret.
func checkColorModel(m color.Model) error {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.GrayModel, color.Gray16Model:
		return nil
	}
	if _, ok := m.(color.Palette); ok {
		return nil
	}
	return fmt.Errorf("%w: source is neither RGB nor grayscale", ErrUnsupportedFormat)
}
