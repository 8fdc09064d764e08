package escpos

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func boolPtr(v bool) *bool              { return &v }
func alignPtr(a Alignment) *Alignment   { return &a }
func scalePtr(s ScaleLevel) *ScaleLevel { return &s }
func bgPtr(b Background) *Background    { return &b }
func intPtr(v int) *int                 { return &v }

func TestTextEncode_NilStyle(t *testing.T) {
	block := &Text{Content: "hello"}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := append([]byte("hello"), 0x0A)
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestTextEncode_StyleOrder(t *testing.T) {
	block := &Text{
		Content: "x",
		Style: &TextStyle{
			Alignment: alignPtr(AlignCenter),
			Bold:      boolPtr(true),
		},
	}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Alignment always precedes weight.
	var want []byte
	want = append(want, ESC_POS_COMMANDS.ALIGN_CENTER...)
	want = append(want, ESC_POS_COMMANDS.TEXT_BOLD_ON...)
	want = append(want, 'x', 0x0A)
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestTextEncode_Charset(t *testing.T) {
	block := &Text{Content: "é"}

	out, err := block.Encode(charmap.CodePage437.NewEncoder())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// é is 0x82 in code page 437.
	want := []byte{0x82, 0x0A}
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestStyleEncode_AllAttributes(t *testing.T) {
	style := &TextStyle{
		Alignment:  alignPtr(AlignRight),
		Bold:       boolPtr(false),
		Light:      boolPtr(true),
		Font:       intPtr(1),
		Scale:      scalePtr(ScaleL2),
		Background: bgPtr(BackgroundBlack),
	}

	var want []byte
	want = append(want, ESC_POS_COMMANDS.ALIGN_RIGHT...)
	want = append(want, ESC_POS_COMMANDS.TEXT_BOLD_OFF...)
	want = append(want, 0x1B, 0x4D, 0x01)
	want = append(want, ESC_POS_COMMANDS.TEXT_LIGHT_ON...)
	want = append(want, 0x1D, 0x21, 0x22)
	want = append(want, ESC_POS_COMMANDS.INVERT_ON...)

	out := style.Encode()
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestStyleEncode_UnknownScaleFallsBack(t *testing.T) {
	style := &TextStyle{Scale: scalePtr(ScaleLevel("huge"))}

	out := style.Encode()
	want := []byte{0x1D, 0x21, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("Unknown scale should fall back to no scaling, got % X", out)
	}
}

func TestStyleEncode_Nil(t *testing.T) {
	var style *TextStyle
	if out := style.Encode(); out != nil {
		t.Errorf("Nil style should emit nothing, got % X", out)
	}
}

func TestDividingLineEncode(t *testing.T) {
	block := &DividingLine{Char: "-", PrintDensity: 384, FontDensity: 12}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := append([]byte(strings.Repeat("-", 32)), 0x0A)
	if !bytes.Equal(out, want) {
		t.Errorf("Expected 32 dashes and a line feed, got % X", out)
	}
}

func TestDividingLineEncode_InvalidFontDensity(t *testing.T) {
	block := &DividingLine{Char: "-", PrintDensity: 384, FontDensity: 0}

	if _, err := block.Encode(nil); err == nil {
		t.Error("Expected error for zero font density")
	}
}

func TestQRCodeEncode(t *testing.T) {
	block := &QRCode{Content: "ABC"}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var want []byte
	want = append(want, ESC_POS_COMMANDS.ALIGN_CENTER...)
	want = append(want, ESC_POS_COMMANDS.QR_MODULE_SIZE...)
	want = append(want, 6)
	want = append(want, ESC_POS_COMMANDS.QR_EC_LEVEL...)
	want = append(want, 0x31)
	// Store: count bytes carry payload length + 3, little-endian.
	want = append(want, 0x1D, 0x28, 0x6B, 0x06, 0x00, 0x31, 0x50, 0x30)
	want = append(want, []byte("ABC")...)
	want = append(want, ESC_POS_COMMANDS.QR_PRINT...)

	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestQRCodeEncode_LongPayloadLength(t *testing.T) {
	content := strings.Repeat("a", 300)
	block := &QRCode{Content: content}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// 300 + 3 = 303 = 0x012F little-endian.
	idx := bytes.Index(out, []byte{0x1D, 0x28, 0x6B, 0x2F, 0x01, 0x31, 0x50, 0x30})
	if idx < 0 {
		t.Error("Store command should carry a little-endian 16-bit count of payload+3")
	}
}

func TestBarcodeEncode(t *testing.T) {
	block := &Barcode{Content: "12345"}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var want []byte
	want = append(want, 0x1D, 0x6B, 0x49, 0x05)
	want = append(want, []byte("12345")...)
	want = append(want, 0x0A)
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestBarcodeEncode_TooLong(t *testing.T) {
	block := &Barcode{Content: strings.Repeat("1", 256)}

	if _, err := block.Encode(nil); err == nil {
		t.Error("Expected error for barcode payload over 255 bytes")
	}
}

func TestColumnGroupEncode_SingleLineFeed(t *testing.T) {
	group := &ColumnGroup{
		Columns: []Text{
			{Content: "Item      "},
			{Content: "     9.99"},
		},
	}

	out, err := group.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if n := bytes.Count(out, []byte{0x0A}); n != 1 {
		t.Errorf("Column group should emit exactly one line feed, got %d", n)
	}
	if !bytes.HasSuffix(out, []byte{0x0A}) {
		t.Error("Line feed should terminate the group")
	}
	if !bytes.Contains(out, []byte("Item      ")) || !bytes.Contains(out, []byte("     9.99")) {
		t.Error("All cells should appear in the output")
	}
}

func TestBlankEncode_NoBytes(t *testing.T) {
	block := &Blank{Count: 3}

	out, err := block.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if out != nil {
		t.Errorf("Blank should carry no bytes of its own, got % X", out)
	}
}
