package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Row is one data line of an upload mapped against a layout's headers.
type Row struct {
	// Number is the line number a spreadsheet user sees; the header is line 1.
	Number int      `json:"rowNumber"`
	Fields []string `json:"fields"`
}

// Value returns the trimmed field at column i.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// ParseLine splits one CSV line into fields. Double quoted fields may hold
// commas, "" inside quotes is a literal quote, and an unterminated quote
// runs to the end of the line. It never fails.
func ParseLine(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes && c == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case inQuotes:
			field.WriteByte(c)
		case c == '"':
			inQuotes = true
		case c == ',':
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	return append(fields, field.String())
}

// MapRows maps CSV text against headers. Blank lines are dropped, the first
// remaining line is the header, and every data row is padded or truncated to
// len(headers). Rows are numbered from 2.
func MapRows(text string, headers []string) []Row {
	_, rows := mapLines(splitLines(text), headers)
	return rows
}

// splitLines splits on \n and \r\n and removes a leading byte order mark.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, string(byteOrderMark))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func mapLines(lines []string, headers []string) ([]string, []Row) {
	records := make([][]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, ParseLine(line))
	}
	return mapRecords(records, headers)
}

// mapRecords treats records[0] as the header row and maps the rest.
func mapRecords(records [][]string, headers []string) ([]string, []Row) {
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		rows = append(rows, Row{
			Number: i + 2,
			Fields: padRow(record, len(headers)),
		})
	}
	return header, rows
}

// readUpload maps an uploaded CSV or XLSX payload. It returns the file's own
// header row alongside the data rows.
func readUpload(fileName string, payload []byte, headers []string) ([]string, []Row, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt", "":
		header, rows := mapLines(splitLines(string(payload)), headers)
		return header, rows, nil
	case ".xlsx", ".xlsm":
		records, err := readExcel(payload)
		if err != nil {
			return nil, nil, err
		}
		header, rows := mapRecords(filterEmptyRows(records), headers)
		return header, rows, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xlsx: %v", ErrUnsupportedFormat, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: excel file has no sheets", ErrUnsupportedFormat)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func padRow(row []string, length int) []string {
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func filterEmptyRows(rows [][]string) [][]string {
	var filtered [][]string
	for _, row := range rows {
		keep := false
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				keep = true
				break
			}
		}
		if keep {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
