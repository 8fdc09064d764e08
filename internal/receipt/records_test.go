package receipt

import (
	"errors"
	"image"
	"testing"

	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/escpos"
)

func TestBuildTicket_UnknownTypeSkipped(t *testing.T) {
	records := []Record{
		{Type: RecordText, Value: "hello"},
		{Type: RecordType("hologram"), Value: "???"},
		{Type: RecordText, Value: "world"},
	}

	ticket := BuildTicket(records, nil, zap.NewNop())

	if len(ticket.Blocks) != 2 {
		t.Errorf("Unknown record types should be skipped, got %d blocks", len(ticket.Blocks))
	}
}

func TestBuildTicket_UnresolvedImageSkipped(t *testing.T) {
	failing := func(ref string) (image.Image, error) {
		return nil, errors.New("not found")
	}

	records := []Record{
		{Type: RecordImage, Value: "logo.png"},
		{Type: RecordText, Value: "after"},
	}

	ticket := BuildTicket(records, failing, zap.NewNop())

	if len(ticket.Blocks) != 1 {
		t.Errorf("Failed image should be skipped without failing the ticket, got %d blocks", len(ticket.Blocks))
	}
}

func TestBuildTicket_ImageWithoutResolverSkipped(t *testing.T) {
	records := []Record{{Type: RecordImage, Value: "logo.png"}}

	ticket := BuildTicket(records, nil, zap.NewNop())
	if len(ticket.Blocks) != 0 {
		t.Errorf("Image without a resolver should be skipped, got %d blocks", len(ticket.Blocks))
	}
}

func TestBuildTicket_BlankCount(t *testing.T) {
	records := []Record{
		{Type: RecordBlank, Value: "3"},
		{Type: RecordBlank, Value: "junk"},
	}

	ticket := BuildTicket(records, nil, zap.NewNop())
	if len(ticket.Blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(ticket.Blocks))
	}

	first, ok := ticket.Blocks[0].(*escpos.Blank)
	if !ok || first.Count != 3 {
		t.Errorf("Expected blank of 3 lines, got %+v", ticket.Blocks[0])
	}
	second, ok := ticket.Blocks[1].(*escpos.Blank)
	if !ok || second.Count != 1 {
		t.Errorf("Unparseable count should default to 1 line, got %+v", ticket.Blocks[1])
	}
}

func TestBuildTicket_DividingLineDefaults(t *testing.T) {
	records := []Record{{Type: RecordDividingLine}}

	ticket := BuildTicket(records, nil, zap.NewNop())
	line, ok := ticket.Blocks[0].(*escpos.DividingLine)
	if !ok {
		t.Fatalf("Expected a dividing line block, got %+v", ticket.Blocks[0])
	}
	if line.Char != "-" {
		t.Errorf("Empty divider should default to '-', got %q", line.Char)
	}
	if line.PrintDensity != 384 || line.FontDensity != 12 {
		t.Errorf("Expected 58mm density defaults, got %d/%d", line.PrintDensity, line.FontDensity)
	}
}

func TestBuildColumnGroup_SplitsAndNormalizes(t *testing.T) {
	record := Record{Type: RecordColumn, Value: "Coffee|2|9.9"}

	group := buildColumnGroup(record)
	if len(group.Columns) != 3 {
		t.Fatalf("Expected 3 cells, got %d", len(group.Columns))
	}
	if group.Columns[0].Content != "Coffee" {
		t.Errorf("Text cell should pass through, got %q", group.Columns[0].Content)
	}
	if group.Columns[1].Content != "2.00" {
		t.Errorf("Numeric cell should normalize to two decimals, got %q", group.Columns[1].Content)
	}
	if group.Columns[2].Content != "9.90" {
		t.Errorf("Amount should normalize to two decimals, got %q", group.Columns[2].Content)
	}
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9.9", "9.90"},
		{"12", "12.00"},
		{"  3.5 ", "3.50"},
		{"-1.5", "-1.50"},
		{"Coffee", "Coffee"},
		{"", ""},
		{"2x", "2x"},
	}
	for _, c := range cases {
		if got := normalizeAmount(c.in); got != c.want {
			t.Errorf("normalizeAmount(%q) = %q, expected %q", c.in, got, c.want)
		}
	}
}

func TestToTextStyle(t *testing.T) {
	bold := true
	light := false
	font := 1
	rs := &RecordStyle{
		Alignment:       "center",
		BackgroundColor: "black",
		Font:            &font,
		IsBold:          &bold,
		IsLight:         &light,
		Scale:           "l2",
	}

	style := rs.toTextStyle()

	if style.Alignment == nil || *style.Alignment != escpos.AlignCenter {
		t.Error("Alignment should convert to the typed constant")
	}
	if style.Background == nil || *style.Background != escpos.BackgroundBlack {
		t.Error("Background color should convert to the typed constant")
	}
	if style.Bold == nil || !*style.Bold {
		t.Error("Bold flag should carry over")
	}
	if style.Light == nil || *style.Light {
		t.Error("Light flag should carry over")
	}
	if style.Font == nil || *style.Font != 1 {
		t.Error("Font index should carry over")
	}
	if style.Scale == nil || *style.Scale != escpos.ScaleL2 {
		t.Error("Scale label should carry over")
	}
}

func TestToTextStyle_Nil(t *testing.T) {
	var rs *RecordStyle
	if style := rs.toTextStyle(); style != nil {
		t.Error("Nil record style should stay nil")
	}
}

func TestToTextStyle_AbsentFieldsStayNil(t *testing.T) {
	style := (&RecordStyle{}).toTextStyle()

	if style.Alignment != nil || style.Background != nil || style.Scale != nil {
		t.Error("Absent fields must stay nil so printer defaults apply")
	}
}
