package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Editor is a workbook opened for in-place editing of its active sheet.
type Editor struct {
	file     *excelize.File
	filepath string
	sheet    string
}

// OpenFile opens an existing Excel file and binds its active sheet
func OpenFile(filepath string) (*Editor, error) {
	file, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, &FileAccessError{Path: filepath, Op: "open", Err: err}
	}
	return &Editor{
		file:     file,
		filepath: filepath,
		sheet:    file.GetSheetName(file.GetActiveSheetIndex()),
	}, nil
}

// NewEditor wraps an already loaded workbook. Save requires a path, so
// in-memory workbooks are persisted with SaveAs.
func NewEditor(file *excelize.File) *Editor {
	return &Editor{
		file:  file,
		sheet: file.GetSheetName(file.GetActiveSheetIndex()),
	}
}

// Sheet returns the name of the sheet every operation works on.
func (e *Editor) Sheet() string {
	return e.sheet
}

// File exposes the underlying workbook.
func (e *Editor) File() *excelize.File {
	return e.file
}

// GetCellValue returns the displayed value of a cell
func (e *Editor) GetCellValue(cell string) (string, error) {
	return e.file.GetCellValue(e.sheet, cell)
}

// SetCellValue sets a value in a specific cell
func (e *Editor) SetCellValue(cell string, value interface{}) error {
	return e.file.SetCellValue(e.sheet, cell, value)
}

// IsProcessed reports whether the sentinel cell holds any value.
func (e *Editor) IsProcessed(sentinel Cell) (bool, error) {
	value, err := e.file.GetCellValue(e.sheet, sentinel.String())
	if err != nil {
		return false, fmt.Errorf("failed to read sentinel %s: %w", sentinel, err)
	}
	return value != "", nil
}

// MaxColumn returns the highest column holding a value, 0 for an empty
// sheet. Columns that only carry a width or style are not counted.
func (e *Editor) MaxColumn() (int, error) {
	rows, err := e.file.GetRows(e.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to get rows: %w", err)
	}
	maxCol := 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	return maxCol, nil
}

// MaxRow returns the index of the last populated row, 0 for an empty sheet.
func (e *Editor) MaxRow() (int, error) {
	rows, err := e.file.GetRows(e.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to get rows: %w", err)
	}
	return len(rows), nil
}

// Save saves the Excel file to the original filepath
func (e *Editor) Save() error {
	if e.filepath == "" {
		return fmt.Errorf("no filepath specified, use SaveAs instead")
	}
	if err := e.file.SaveAs(e.filepath); err != nil {
		return &FileAccessError{Path: e.filepath, Op: "save", Err: err}
	}
	return nil
}

// SaveAs saves the Excel file with a new name
func (e *Editor) SaveAs(filepath string) error {
	if err := e.file.SaveAs(filepath); err != nil {
		return &FileAccessError{Path: filepath, Op: "save", Err: err}
	}
	e.filepath = filepath
	return nil
}

// Close closes the Excel file
func (e *Editor) Close() error {
	return e.file.Close()
}

// cellContent is everything the block mover carries from one cell to another.
type cellContent struct {
	value   string
	kind    excelize.CellType
	formula string
	style   int
}

func (c cellContent) empty() bool {
	return c.value == "" && c.formula == ""
}

func (e *Editor) readCell(cell string) (cellContent, error) {
	var c cellContent
	var err error

	if c.value, err = e.file.GetCellValue(e.sheet, cell, excelize.Options{RawCellValue: true}); err != nil {
		return c, fmt.Errorf("failed to read %s: %w", cell, err)
	}
	if c.kind, err = e.file.GetCellType(e.sheet, cell); err != nil {
		return c, fmt.Errorf("failed to read type of %s: %w", cell, err)
	}
	if c.formula, err = e.file.GetCellFormula(e.sheet, cell); err != nil {
		return c, fmt.Errorf("failed to read formula of %s: %w", cell, err)
	}
	if c.style, err = e.file.GetCellStyle(e.sheet, cell); err != nil {
		return c, fmt.Errorf("failed to read style of %s: %w", cell, err)
	}
	return c, nil
}

// writeCell stores c into cell, keeping its type. The style is only
// replaced when withStyle is set.
func (e *Editor) writeCell(cell string, c cellContent, withStyle bool) error {
	var err error
	switch {
	case c.formula != "":
		err = e.file.SetCellFormula(e.sheet, cell, c.formula)
	case c.empty():
		err = e.clearCell(cell)
	case c.kind == excelize.CellTypeBool:
		err = e.file.SetCellBool(e.sheet, cell, c.value == "1" || strings.EqualFold(c.value, "true"))
	case c.kind == excelize.CellTypeNumber || c.kind == excelize.CellTypeUnset:
		err = e.file.SetCellValue(e.sheet, cell, parseNumericValue(c.value))
	case c.kind == excelize.CellTypeDate:
		if date, ok := parseDateValue(c.value); ok {
			err = e.file.SetCellValue(e.sheet, cell, date)
		} else {
			err = e.file.SetCellStr(e.sheet, cell, c.value)
		}
	default:
		err = e.file.SetCellStr(e.sheet, cell, c.value)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}

	if withStyle {
		if err := e.file.SetCellStyle(e.sheet, cell, cell, c.style); err != nil {
			return fmt.Errorf("failed to copy style to %s: %w", cell, err)
		}
	}
	return nil
}

// clearCell drops the value and formula of a cell, leaving its style.
func (e *Editor) clearCell(cell string) error {
	formula, err := e.file.GetCellFormula(e.sheet, cell)
	if err != nil {
		return err
	}
	if formula != "" {
		if err := e.file.SetCellFormula(e.sheet, cell, ""); err != nil {
			return err
		}
	}

	value, err := e.file.GetCellValue(e.sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	if value == "" && formula == "" {
		return nil
	}
	return e.file.SetCellDefault(e.sheet, cell, "")
}

// parseNumericValue parses a string as an int64 or float64, returning the
// original string if it is not a number.
func parseNumericValue(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}

	if intVal, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return floatVal
	}

	return value
}

// dateLayouts are the ISO 8601 forms stored in t="d" cells.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDateValue(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
