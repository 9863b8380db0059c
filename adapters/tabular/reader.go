package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"solardash/domain/core"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrRowLimit is returned when input has more data rows than ReaderConfig.MaxRows
var ErrRowLimit = errors.New("row limit exceeded")

// FileTypeOf maps a filename to a reader by extension
func FileTypeOf(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", core.ErrUnsupportedInput, filepath.Ext(name))
	}
}

// ReadCSV reads delimited text with a header row. Every row must have the same
// number of fields as the header.
func ReadCSV(r io.Reader, cfg ReaderConfig) (*Table, error) {
	start := time.Now()
	br := bufio.NewReaderSize(r, 64*1024)

	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	delim := cfg.Delimiter
	if delim == 0 {
		sample, _ := br.Peek(br.Size())
		delim = DetectDelimiter(firstLine(sample))
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Headers: trimAll(header), Delimiter: delim}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if cfg.MaxRows > 0 && len(table.Rows) >= cfg.MaxRows {
			return nil, fmt.Errorf("%w: more than %d data rows", ErrRowLimit, cfg.MaxRows)
		}
		table.Rows = append(table.Rows, trimAll(row))
	}

	log.Printf("[tabular] CSV read in %.2fms (%d columns, %d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(table.Headers), len(table.Rows))
	return table, nil
}

// ReadXLSX reads the configured (or first) sheet of a workbook. The first
// non-empty row is the header.
func ReadXLSX(r io.Reader, cfg ReaderConfig) (*Table, error) {
	start := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheet := cfg.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	table := &Table{Sheet: sheet}
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if table.Headers == nil {
			table.Headers = trimAll(row)
			continue
		}
		if len(row) > len(table.Headers) {
			return nil, fmt.Errorf("row %d has %d cells but the header has %d", i+1, len(row), len(table.Headers))
		}
		if cfg.MaxRows > 0 && len(table.Rows) >= cfg.MaxRows {
			return nil, fmt.Errorf("%w: more than %d data rows", ErrRowLimit, cfg.MaxRows)
		}
		// GetRows drops trailing empty cells
		padded := make([]string, len(table.Headers))
		copy(padded, trimAll(row))
		table.Rows = append(table.Rows, padded)
	}
	if table.Headers == nil {
		return nil, fmt.Errorf("no header row")
	}

	log.Printf("[tabular] XLSX sheet %s read in %.2fms (%d columns, %d rows)",
		sheet, float64(time.Since(start).Nanoseconds())/1e6, len(table.Headers), len(table.Rows))
	return table, nil
}

// DetectDelimiter picks the candidate that splits the header line most often.
// Quoted sections are skipped. Ties keep the earlier candidate, so ',' wins by default.
func DetectDelimiter(line string) rune {
	candidates := []rune{',', ';', '\t', '|'}
	counts := make(map[rune]int, len(candidates))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		counts[r]++
	}
	best := ','
	for _, c := range candidates {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func firstLine(sample []byte) string {
	if i := bytes.IndexAny(sample, "\r\n"); i >= 0 {
		return string(sample[:i])
	}
	return string(sample)
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
