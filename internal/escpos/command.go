// internal/escpos/command.go
package escpos

// ESC_POS_COMMANDS contains all fixed ESC/POS command definitions used by the encoders
var ESC_POS_COMMANDS = struct {
	// Basic commands
	INITIALIZE []byte
	TEXT_RESET []byte

	// Text alignment
	ALIGN_LEFT   []byte
	ALIGN_CENTER []byte
	ALIGN_RIGHT  []byte

	// Text weight
	TEXT_BOLD_ON    []byte
	TEXT_BOLD_OFF   []byte
	TEXT_LIGHT_ON   []byte
	TEXT_LIGHT_OFF  []byte

	// Background (inverse video)
	INVERT_ON  []byte
	INVERT_OFF []byte

	// Paper handling
	LINE_FEED  []byte
	FEED_LINES []byte // + line count byte

	// QR code (GS ( k function prefixes)
	QR_MODULE_SIZE []byte // + size byte
	QR_EC_LEVEL    []byte // + level byte
	QR_STORE       []byte // + pL pH 0x31 0x50 0x30 + data
	QR_PRINT       []byte

	// Barcode
	BARCODE_CODE128 []byte // + length byte + data

	// Cutting
	CUT_FULL    []byte
	CUT_PARTIAL []byte
}{
	// Basic commands
	INITIALIZE: []byte{0x1B, 0x40},       // ESC @
	TEXT_RESET: []byte{0x1B, 0x21, 0x00}, // ESC ! 0

	// Text alignment
	ALIGN_LEFT:   []byte{0x1B, 0x61, 0x00}, // ESC a 0
	ALIGN_CENTER: []byte{0x1B, 0x61, 0x01}, // ESC a 1
	ALIGN_RIGHT:  []byte{0x1B, 0x61, 0x02}, // ESC a 2

	// Text weight
	TEXT_BOLD_ON:   []byte{0x1B, 0x45, 0x01}, // ESC E 1
	TEXT_BOLD_OFF:  []byte{0x1B, 0x45, 0x00}, // ESC E 0
	TEXT_LIGHT_ON:  []byte{0x1B, 0x47, 0x00}, // ESC G 0 (cancel double-strike)
	TEXT_LIGHT_OFF: []byte{0x1B, 0x47, 0x01}, // ESC G 1

	// Background (inverse video)
	INVERT_ON:  []byte{0x1D, 0x42, 0x01}, // GS B 1
	INVERT_OFF: []byte{0x1D, 0x42, 0x00}, // GS B 0

	// Paper handling
	LINE_FEED:  []byte{0x0A},       // LF
	FEED_LINES: []byte{0x1B, 0x64}, // ESC d + n

	// QR code
	QR_MODULE_SIZE: []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x43}, // GS ( k fn 167
	QR_EC_LEVEL:    []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x45}, // GS ( k fn 169
	QR_STORE:       []byte{0x1D, 0x28, 0x6B},                         // GS ( k pL pH 31 50 30
	QR_PRINT:       []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x51, 0x30},

	// Barcode
	BARCODE_CODE128: []byte{0x1D, 0x6B, 0x49}, // GS k I + n + data

	// Cutting
	CUT_FULL:    []byte{0x1D, 0x56, 0x00}, // GS V 0
	CUT_PARTIAL: []byte{0x1D, 0x56, 0x01}, // GS V 1
}

// scaleCommands maps the nine discrete scale levels l0..l8 to GS ! multiplier
// commands. Width and height grow together: level n selects (n+1)x(n+1).
var scaleCommands = map[ScaleLevel][]byte{
	ScaleL0: {0x1D, 0x21, 0x00},
	ScaleL1: {0x1D, 0x21, 0x11},
	ScaleL2: {0x1D, 0x21, 0x22},
	ScaleL3: {0x1D, 0x21, 0x33},
	ScaleL4: {0x1D, 0x21, 0x44},
	ScaleL5: {0x1D, 0x21, 0x55},
	ScaleL6: {0x1D, 0x21, 0x66},
	ScaleL7: {0x1D, 0x21, 0x77},
	ScaleL8: {0x1D, 0x21, 0x88},
}

// FeedLines builds a "print and feed n lines" command. The count occupies a
// single byte; larger values are capped at 255.
func FeedLines(lines int) []byte {
	if lines < 0 {
		lines = 0
	}
	if lines > 255 {
		lines = 255
	}
	cmd := make([]byte, 0, 3)
	cmd = append(cmd, ESC_POS_COMMANDS.FEED_LINES...)
	cmd = append(cmd, byte(lines))
	return cmd
}

// SelectFont builds a font-select command for the given font index.
func SelectFont(font int) []byte {
	if font < 0 {
		font = 0
	}
	if font > 255 {
		font = 255
	}
	return []byte{0x1B, 0x4D, byte(font)} // ESC M n
}

// qrStoreHeader builds the "store QR data" command prefix for a payload of the
// given length. Per the ESC/POS spec the two count bytes carry length+3
// (payload plus the trailing 31 50 30 function selector), little-endian.
func qrStoreHeader(payloadLen int) []byte {
	total := payloadLen + 3
	cmd := make([]byte, 0, 8)
	cmd = append(cmd, ESC_POS_COMMANDS.QR_STORE...)
	cmd = append(cmd, byte(total%256), byte(total/256), 0x31, 0x50, 0x30)
	return cmd
}
