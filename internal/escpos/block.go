// internal/escpos/block.go
package escpos

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/text/encoding"
)

// Block is one unit of printable ticket content. Encode returns the raw
// ESC/POS byte sequence for the block. The supplied encoder converts literal
// text payloads only; command bytes are always emitted as-is. A nil encoder
// passes text through as UTF-8.
type Block interface {
	Encode(enc *encoding.Encoder) ([]byte, error)
}

// encodeText converts a text payload with the caller-supplied character
// encoding, falling back to raw UTF-8 bytes when no encoder is given.
func encodeText(enc *encoding.Encoder, s string) ([]byte, error) {
	if enc == nil {
		return []byte(s), nil
	}
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}
	return out, nil
}

// Text is a single styled line of text.
type Text struct {
	Content string
	Style   *TextStyle
}

// Encode emits the style commands followed by the encoded content and a line feed.
func (t *Text) Encode(enc *encoding.Encoder) ([]byte, error) {
	payload, err := encodeText(enc, t.Content)
	if err != nil {
		return nil, err
	}
	out := t.Style.Encode()
	out = append(out, payload...)
	out = append(out, ESC_POS_COMMANDS.LINE_FEED...)
	return out, nil
}

// Blank feeds the given number of empty lines. It carries no bytes of its
// own; the ticket assembler realizes it as a feed command.
type Blank struct {
	Count int
}

// Encode returns nothing; see Ticket.Serialize.
func (b *Blank) Encode(enc *encoding.Encoder) ([]byte, error) {
	return nil, nil
}

// Image prints a bitmap through the rasterizer.
type Image struct {
	Source    image.Image
	Threshold uint8
	Mode      PrintMode
}

// Encode rasterizes the source image into a raster command payload.
func (i *Image) Encode(enc *encoding.Encoder) ([]byte, error) {
	threshold := i.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return Rasterize(i.Source, threshold, i.Mode)
}

// QRCode prints its content as a QR symbol.
type QRCode struct {
	Content string

	// ModuleSize and ECLevel default to 6 and level M when zero.
	ModuleSize byte
	ECLevel    byte
}

const (
	defaultQRModuleSize = 6
	defaultQRECLevel    = 0x31 // level M
)

// Encode emits the four-command QR sequence: centered justification, module
// size, error-correction level and the store command carrying the payload,
// then the print command.
func (q *QRCode) Encode(enc *encoding.Encoder) ([]byte, error) {
	payload, err := encodeText(enc, q.Content)
	if err != nil {
		return nil, err
	}

	size := q.ModuleSize
	if size == 0 {
		size = defaultQRModuleSize
	}
	level := q.ECLevel
	if level == 0 {
		level = defaultQRECLevel
	}

	var out []byte
	out = append(out, ESC_POS_COMMANDS.ALIGN_CENTER...)
	out = append(out, ESC_POS_COMMANDS.QR_MODULE_SIZE...)
	out = append(out, size)
	out = append(out, ESC_POS_COMMANDS.QR_EC_LEVEL...)
	out = append(out, level)
	out = append(out, qrStoreHeader(len(payload))...)
	out = append(out, payload...)
	out = append(out, ESC_POS_COMMANDS.QR_PRINT...)
	return out, nil
}

// DividingLine prints a horizontal rule built by repeating a character across
// the full print width.
type DividingLine struct {
	Char         string
	PrintDensity int // dots across the printable area, e.g. 384 for 58mm paper
	FontDensity  int // dots per character cell, e.g. 12
}

// Encode repeats the divider character PrintDensity/FontDensity times and
// prints it as an unstyled text line.
func (d *DividingLine) Encode(enc *encoding.Encoder) ([]byte, error) {
	if d.FontDensity <= 0 {
		return nil, fmt.Errorf("dividing line font density must be positive, got %d", d.FontDensity)
	}
	repeat := d.PrintDensity / d.FontDensity
	line := &Text{Content: strings.Repeat(d.Char, repeat)}
	return line.Encode(enc)
}

// ColumnGroup renders several text cells on one physical line. Cells are
// concatenated with no separator; column layout comes from fixed-width
// padding applied upstream.
type ColumnGroup struct {
	Columns []Text
}

// Encode concatenates each cell's style commands and content, terminating the
// whole group with a single line feed.
func (g *ColumnGroup) Encode(enc *encoding.Encoder) ([]byte, error) {
	var out []byte
	for i := range g.Columns {
		cell := &g.Columns[i]
		payload, err := encodeText(enc, cell.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, cell.Style.Encode()...)
		out = append(out, payload...)
	}
	out = append(out, ESC_POS_COMMANDS.LINE_FEED...)
	return out, nil
}

// Barcode prints its content as a CODE128 symbol.
type Barcode struct {
	Content string
}

// Encode emits the CODE128 command with a one-byte length prefix.
func (b *Barcode) Encode(enc *encoding.Encoder) ([]byte, error) {
	payload, err := encodeText(enc, b.Content)
	if err != nil {
		return nil, err
	}
	if len(payload) > 255 {
		return nil, fmt.Errorf("barcode payload too long: %d bytes", len(payload))
	}

	var out []byte
	out = append(out, ESC_POS_COMMANDS.BARCODE_CODE128...)
	out = append(out, byte(len(payload)))
	out = append(out, payload...)
	out = append(out, ESC_POS_COMMANDS.LINE_FEED...)
	return out, nil
}
