// internal/escpos/style.go
package escpos

// Alignment selects horizontal text justification
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// ScaleLevel is one of the nine discrete font scale levels l0..l8
type ScaleLevel string

const (
	ScaleL0 ScaleLevel = "l0"
	ScaleL1 ScaleLevel = "l1"
	ScaleL2 ScaleLevel = "l2"
	ScaleL3 ScaleLevel = "l3"
	ScaleL4 ScaleLevel = "l4"
	ScaleL5 ScaleLevel = "l5"
	ScaleL6 ScaleLevel = "l6"
	ScaleL7 ScaleLevel = "l7"
	ScaleL8 ScaleLevel = "l8"
)

// Background selects normal or inverse (white-on-black) printing
type Background string

const (
	BackgroundWhite Background = "white"
	BackgroundBlack Background = "black"
)

// TextStyle describes the optional style attributes of a text block. Nil
// fields leave the printer at its current setting; the ticket assembler
// reinjects a style reset before every block so attributes never leak
// across blocks.
type TextStyle struct {
	Alignment  *Alignment  `json:"alignment,omitempty"`
	Bold       *bool       `json:"bold,omitempty"`
	Light      *bool       `json:"light,omitempty"`
	Font       *int        `json:"font,omitempty"`
	Scale      *ScaleLevel `json:"scale,omitempty"`
	Background *Background `json:"background,omitempty"`
}

// styleRule binds one optional style field to the command it emits. Rules are
// evaluated in a fixed order: alignment, bold, font, light, scale, background.
type styleRule func(s *TextStyle) []byte

var styleRules = []styleRule{
	func(s *TextStyle) []byte {
		if s.Alignment == nil {
			return nil
		}
		switch *s.Alignment {
		case AlignCenter:
			return ESC_POS_COMMANDS.ALIGN_CENTER
		case AlignRight:
			return ESC_POS_COMMANDS.ALIGN_RIGHT
		default:
			return ESC_POS_COMMANDS.ALIGN_LEFT
		}
	},
	func(s *TextStyle) []byte {
		if s.Bold == nil {
			return nil
		}
		if *s.Bold {
			return ESC_POS_COMMANDS.TEXT_BOLD_ON
		}
		return ESC_POS_COMMANDS.TEXT_BOLD_OFF
	},
	func(s *TextStyle) []byte {
		if s.Font == nil {
			return nil
		}
		return SelectFont(*s.Font)
	},
	func(s *TextStyle) []byte {
		if s.Light == nil {
			return nil
		}
		if *s.Light {
			return ESC_POS_COMMANDS.TEXT_LIGHT_ON
		}
		return ESC_POS_COMMANDS.TEXT_LIGHT_OFF
	},
	func(s *TextStyle) []byte {
		if s.Scale == nil {
			return nil
		}
		if cmd, ok := scaleCommands[*s.Scale]; ok {
			return cmd
		}
		// Unrecognized labels fall back to no scaling rather than failing.
		return scaleCommands[ScaleL0]
	},
	func(s *TextStyle) []byte {
		if s.Background == nil {
			return nil
		}
		if *s.Background == BackgroundBlack {
			return ESC_POS_COMMANDS.INVERT_ON
		}
		return ESC_POS_COMMANDS.INVERT_OFF
	},
}

// Encode emits the command bytes for every set style attribute, in rule order.
func (s *TextStyle) Encode() []byte {
	if s == nil {
		return nil
	}
	var out []byte
	for _, rule := range styleRules {
		out = append(out, rule(s)...)
	}
	return out
}
