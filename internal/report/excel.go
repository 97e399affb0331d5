package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetWriter writes tabular report data, one sheet at a time.
type SheetWriter interface {
	// Sheet starts a new sheet and writes its bold header row.
	Sheet(name string, header []string) error

	// Row appends a data row to the current sheet.
	Row(values ...interface{}) error

	// Save writes the workbook to w.
	Save(w io.Writer) error

	// SaveToFile writes the workbook to disk.
	SaveToFile(path string) error

	// Close releases resources.
	Close() error
}

// excelWriter implements SheetWriter on top of excelize.
type excelWriter struct {
	file    *excelize.File
	sheet   string
	nextRow int
}

// NewExcelWriter creates a workbook-backed SheetWriter.
func NewExcelWriter() SheetWriter {
	return &excelWriter{file: excelize.NewFile()}
}

func (w *excelWriter) Sheet(name string, header []string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.sheet == "" {
		// First sheet reuses the default one excelize creates.
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.sheet = name
	w.nextRow = 1

	if len(header) == 0 {
		return nil
	}

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := w.Row(cells...); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = w.file.SetCellStyle(w.sheet, first, last, style)
	}
	return nil
}

func (w *excelWriter) Row(values ...interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.nextRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.nextRow++
	return nil
}

func (w *excelWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *excelWriter) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

func (w *excelWriter) Close() error {
	return w.file.Close()
}
