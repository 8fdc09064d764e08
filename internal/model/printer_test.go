package model

import "testing"

func TestPrinterDisplayName(t *testing.T) {
	named := Printer{ID: "aa:bb:cc:dd:ee:ff", Name: "Printer_1234"}
	if got := named.DisplayName(); got != "Printer_1234" {
		t.Errorf("Expected advertised name, got %q", got)
	}

	anonymous := Printer{ID: "aa:bb:cc:dd:ee:ff"}
	if got := anonymous.DisplayName(); got != "Unknown printer (aa:bb:cc:dd:ee:ff)" {
		t.Errorf("Anonymous printer should fall back to its identifier, got %q", got)
	}
}

func TestPrinterEqual(t *testing.T) {
	a := Printer{ID: "aa", Name: "one"}
	b := Printer{ID: "aa", Name: "two"}
	c := Printer{ID: "bb"}

	if !a.Equal(b) {
		t.Error("Printers with the same identifier are the same device")
	}
	if a.Equal(c) {
		t.Error("Different identifiers are different devices")
	}
}
