package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTXT:
		return FormatTXT, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", common.NewAppError("EXPORT_FORMAT", fmt.Sprintf("unsupported export format %q", s), common.ErrInvalidInput)
	}
}

// Ext returns the file extension (without dot) for the format.
func (f Format) Ext() string { return string(f) }

// Service renders analysis sections and order records into export payloads.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Sections renders display sections in the requested format. Header
// sections are included as ordinary rows so the grouping survives export.
func (s *Service) Sections(sections []entity.Section, format Format) ([]byte, error) {
	start := time.Now()
	var (
		out []byte
		err error
	)
	switch format {
	case FormatCSV:
		out, err = sectionsCSV(sections)
	case FormatTXT:
		out = sectionsTXT(sections)
	case FormatJSON:
		out, err = sectionsJSON(sections)
	default:
		return nil, common.NewAppError("EXPORT_FORMAT", fmt.Sprintf("format %q cannot encode sections", format), common.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.sections.ok",
		"format", string(format),
		"sections", len(sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func sectionsCSV(sections []entity.Section) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, sec := range sections {
		if err := w.Write([]string{sec.Content}); err != nil {
			return nil, common.NewAppError("EXPORT_CSV", "failed to write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, common.NewAppError("EXPORT_CSV", "failed to flush csv", err)
	}
	return buf.Bytes(), nil
}

func sectionsTXT(sections []entity.Section) []byte {
	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		parts = append(parts, sec.Content)
	}
	return []byte(strings.Join(parts, "\n\n"))
}

func sectionsJSON(sections []entity.Section) ([]byte, error) {
	contents := make([]string, 0, len(sections))
	for _, sec := range sections {
		contents = append(contents, sec.Content)
	}
	out, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return nil, common.NewAppError("EXPORT_JSON", "failed to encode sections", err)
	}
	return out, nil
}

// OrderXLSX returns an XLSX workbook with one row per order item plus the
// order header fields repeated on each row.
func (s *Service) OrderXLSX(o *entity.Order) ([]byte, error) {
	if o == nil {
		return nil, common.NewAppError("INVALID_ARGUMENT", "order is nil", common.ErrInvalidInput)
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Zamówienie"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook only carries ours.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Nr zamówienia",
		"Data zamówienia",
		"Dostawca",
		"Pozycja",
		"Nazwa",
		"Ilość",
		"Jedn.",
		"Cena jedn.",
		"Wartość",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	row := 2
	for _, it := range o.Items {
		write(1, row, o.OrderNumber)
		write(2, row, o.OrderDate)
		write(3, row, o.Supplier.Name)
		write(4, row, it.Position)
		write(5, row, it.Name)
		write(6, row, it.Quantity)
		write(7, row, string(it.Unit))
		if it.UnitPrice != nil {
			write(8, row, *it.UnitPrice)
		}
		if it.TotalPrice != nil {
			write(9, row, *it.TotalPrice)
		}
		row++
	}
	if o.TotalValue != nil {
		write(8, row, "Razem netto:")
		write(9, row, *o.TotalValue)
	}

	_ = f.SetColWidth(sheet, "A", "B", 16)
	_ = f.SetColWidth(sheet, "C", "C", 30)
	_ = f.SetColWidth(sheet, "E", "E", 42)
	_ = f.SetColWidth(sheet, "H", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewAppError("EXPORT_XLSX", "xlsx write failed", err)
	}

	s.logger.Info("export.xlsx.ok",
		"order_number", o.OrderNumber,
		"rows", len(o.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
