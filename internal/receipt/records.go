// internal/receipt/records.go
package receipt

import (
	"image"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/escpos"
)

// RecordType identifies what a record renders as
type RecordType string

const (
	RecordBarcode      RecordType = "barcode"
	RecordBlank        RecordType = "blank"
	RecordColumn       RecordType = "column"
	RecordDividingLine RecordType = "dividingLine"
	RecordImage        RecordType = "image"
	RecordQRCode       RecordType = "qrCode"
	RecordText         RecordType = "text"
)

// Record is one untyped receipt entry as submitted by clients.
type Record struct {
	Type  RecordType   `json:"type"`
	Value string       `json:"value"`
	Style *RecordStyle `json:"style,omitempty"`
}

// RecordStyle is the loosely-typed style payload attached to a record.
type RecordStyle struct {
	Alignment       string `json:"alignment,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Font            *int   `json:"font,omitempty"`
	IsBold          *bool  `json:"isBold,omitempty"`
	IsLight         *bool  `json:"isLight,omitempty"`
	Scale           string `json:"scale,omitempty"`
}

// ImageResolver maps an image reference (URL, asset name, base64 key) to
// pixel data. Returning an error skips the record with a diagnostic instead
// of failing the ticket.
type ImageResolver func(ref string) (image.Image, error)

const (
	// defaultPrintDensity/defaultFontDensity describe 58mm paper with a
	// 12-dot font cell, the dividing-line default.
	defaultPrintDensity = 384
	defaultFontDensity  = 12

	columnSeparator = "|"
)

// BuildTicket maps an ordered list of records onto a fresh ticket. Records
// with unknown types are skipped with a warning, never an error; images that
// fail to resolve are skipped too.
func BuildTicket(records []Record, resolver ImageResolver, logger *zap.Logger) *escpos.Ticket {
	ticket := escpos.NewTicket()

	for i, record := range records {
		switch record.Type {
		case RecordText:
			ticket.Append(&escpos.Text{
				Content: record.Value,
				Style:   record.Style.toTextStyle(),
			})

		case RecordBlank:
			count := 1
			if n, err := strconv.Atoi(strings.TrimSpace(record.Value)); err == nil && n > 0 {
				count = n
			}
			ticket.Append(&escpos.Blank{Count: count})

		case RecordColumn:
			ticket.Append(buildColumnGroup(record))

		case RecordDividingLine:
			char := record.Value
			if char == "" {
				char = "-"
			}
			ticket.Append(&escpos.DividingLine{
				Char:         char,
				PrintDensity: defaultPrintDensity,
				FontDensity:  defaultFontDensity,
			})

		case RecordImage:
			if resolver == nil {
				logger.Warn("No image resolver configured, skipping image record", zap.Int("index", i))
				continue
			}
			img, err := resolver(record.Value)
			if err != nil {
				logger.Warn("Failed to resolve image record, skipping",
					zap.Int("index", i),
					zap.String("ref", record.Value),
					zap.Error(err),
				)
				continue
			}
			ticket.Append(&escpos.Image{Source: img})

		case RecordQRCode:
			ticket.Append(&escpos.QRCode{Content: record.Value})

		case RecordBarcode:
			ticket.Append(&escpos.Barcode{Content: record.Value})

		default:
			logger.Warn("Unknown record type, skipping",
				zap.Int("index", i),
				zap.String("type", string(record.Type)),
			)
		}
	}

	return ticket
}

// buildColumnGroup splits a column record's value on "|" into cells. Cells
// that parse as decimal amounts are normalized to two fraction digits, the
// usual money column on a receipt.
func buildColumnGroup(record Record) *escpos.ColumnGroup {
	style := record.Style.toTextStyle()
	cells := strings.Split(record.Value, columnSeparator)

	group := &escpos.ColumnGroup{Columns: make([]escpos.Text, 0, len(cells))}
	for _, cell := range cells {
		group.Columns = append(group.Columns, escpos.Text{
			Content: normalizeAmount(cell),
			Style:   style,
		})
	}
	return group
}

// normalizeAmount rewrites a numeric cell as a fixed two-decimal amount;
// non-numeric cells pass through untouched.
func normalizeAmount(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" || !strings.ContainsAny(trimmed, "0123456789") {
		return cell
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return cell
	}
	return amount.StringFixed(2)
}

// toTextStyle converts a record style payload into typed style attributes.
// Absent fields stay nil so the printer keeps its defaults.
func (rs *RecordStyle) toTextStyle() *escpos.TextStyle {
	if rs == nil {
		return nil
	}

	style := &escpos.TextStyle{
		Bold:  rs.IsBold,
		Light: rs.IsLight,
		Font:  rs.Font,
	}

	switch rs.Alignment {
	case "left":
		a := escpos.AlignLeft
		style.Alignment = &a
	case "center":
		a := escpos.AlignCenter
		style.Alignment = &a
	case "right":
		a := escpos.AlignRight
		style.Alignment = &a
	}

	switch rs.BackgroundColor {
	case "black":
		b := escpos.BackgroundBlack
		style.Background = &b
	case "white":
		b := escpos.BackgroundWhite
		style.Background = &b
	}

	if rs.Scale != "" {
		s := escpos.ScaleLevel(rs.Scale)
		style.Scale = &s
	}

	return style
}
