package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptySheet        = errors.New("spreadsheet has no header row")
)

// Sheet is the first worksheet of a spreadsheet: its header and data rows.
type Sheet struct {
	Header []string
	Rows   [][]any
}

// SpreadsheetSource stores uploaded spreadsheets under BaseDir and reads
// them back as cell rows.
type SpreadsheetSource struct {
	BaseDir string
}

func NewSpreadsheetSource(baseDir string) *SpreadsheetSource {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &SpreadsheetSource{BaseDir: baseDir}
}

// Supported reports whether name has an extension the source can read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// Save copies r into a new file under BaseDir keeping the extension of name.
func (s *SpreadsheetSource) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !Supported(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
	if err := os.MkdirAll(s.BaseDir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	out, err := os.CreateTemp(s.BaseDir, "household-import-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return out.Name(), nil
}

// Consume reads the spreadsheet at path and removes the file whatever the
// outcome.
func (s *SpreadsheetSource) Consume(ctx context.Context, path string) (Sheet, error) {
	resolved := s.resolve(path)
	defer os.Remove(resolved)

	return s.Read(ctx, resolved)
}

// Read parses the spreadsheet at path and leaves the file in place.
func (s *SpreadsheetSource) Read(ctx context.Context, path string) (Sheet, error) {
	if err := ctx.Err(); err != nil {
		return Sheet{}, err
	}

	resolved := s.resolve(path)
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".xlsx":
		return readXLSX(resolved)
	case ".csv":
		return readCSV(resolved)
	default:
		return Sheet{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(resolved))
	}
}

func (s *SpreadsheetSource) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.BaseDir, path)
}

func readCSV(path string) (Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("read csv %s: %w", path, err)
	}

	table := make([][]any, 0, len(records))
	for _, record := range records {
		cells := make([]any, len(record))
		for i, value := range record {
			cells[i] = value
		}
		table = append(table, cells)
	}
	return toSheet(table)
}

func readXLSX(path string) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, ErrEmptySheet
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("read sheet %s: %w", name, err)
	}

	table := make([][]any, 0, len(rows))
	for r, row := range rows {
		cells := make([]any, len(row))
		for c, raw := range row {
			cells[c] = xlsxCell(f, name, c+1, r+1, raw)
		}
		table = append(table, cells)
	}
	return toSheet(table)
}

// xlsxCell returns numeric cells as float64 so date serials survive; text
// cells keep their exact characters, leading zeros included.
func xlsxCell(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return raw
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	kind, err := f.GetCellType(sheet, axis)
	if err != nil {
		return raw
	}
	switch kind {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}

func toSheet(table [][]any) (Sheet, error) {
	if len(table) == 0 {
		return Sheet{}, ErrEmptySheet
	}

	header := make([]string, len(table[0]))
	for i, cell := range table[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	rows := make([][]any, 0, len(table)-1)
	for _, cells := range table[1:] {
		if blank(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return Sheet{Header: header, Rows: rows}, nil
}

func blank(cells []any) bool {
	for _, cell := range cells {
		if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}
