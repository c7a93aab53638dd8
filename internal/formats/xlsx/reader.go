// Package xlsx decodes Excel workbooks into table datasets.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetkit/internal/table"
)

var (
	// ErrDecode is returned when the input is not a readable workbook.
	ErrDecode = errors.New("could not decode workbook")

	// ErrSheetNotFound is returned when the requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmptySheet is returned when a sheet has no header row or no data rows,
	// so its columns cannot be inferred.
	ErrEmptySheet = errors.New("sheet has no rows")
)

// Extensions lists the workbook file extensions ReadFile accepts.
var Extensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// ReadFile reads the raw bytes of a workbook file.
func ReadFile(path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range Extensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("expected an .xlsx file, got %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return data, nil
}

func open(data []byte) (*excelize.File, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return f, nil
}

// ListSheets returns the sheet names of a workbook in tab order.
func ListSheets(data []byte) ([]string, error) {
	f, err := open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// LoadSheet decodes one sheet. The first row names the columns. Every later
// non-blank row becomes a table row.
func LoadSheet(data []byte, sheet string) (*table.Dataset, error) {
	f, err := open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := f.GetSheetList()
	found := false
	for _, n := range names {
		if n == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q — available sheets: %v", ErrSheetNotFound, sheet, names)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	columns := headerNames(rows[0], width)

	var records []table.Row
	for i, raw := range rows[1:] {
		if blank(raw) {
			continue
		}
		rec := make(table.Row, len(columns))
		for j, col := range columns {
			if j >= len(raw) || raw[j] == "" {
				rec[col] = table.Empty()
				continue
			}
			rec[col] = cellValue(f, sheet, i+2, j+1, raw[j])
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}

	return table.NewDataset(columns, records)
}

// headerNames turns the header row into unique column names. Blank headers
// become "Column N" and repeats get a " (2)", " (3)" suffix.
func headerNames(header []string, width int) []string {
	seen := make(map[string]int, width)
	columns := make([]string, width)
	for j := 0; j < width; j++ {
		name := ""
		if j < len(header) {
			name = strings.TrimSpace(header[j])
		}
		if name == "" {
			name = fmt.Sprintf("Column %d", j+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = fmt.Sprintf("%s (%d)", base, seen[base])
		}
		seen[name]++
		columns[j] = name
	}
	return columns
}

func cellValue(f *excelize.File, sheet string, row, col int, raw string) table.Value {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return table.Text(raw)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return table.Text(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		return table.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return table.Number(n)
		}
	}
	return table.Text(raw)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Decoder reads workbooks with excelize.
type Decoder struct{}

// ListSheets implements the session decoder.
func (Decoder) ListSheets(data []byte) ([]string, error) {
	return ListSheets(data)
}

// LoadSheet implements the session decoder.
func (Decoder) LoadSheet(data []byte, sheet string) (*table.Dataset, error) {
	return LoadSheet(data, sheet)
}
