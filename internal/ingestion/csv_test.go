package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"empty fields", "a,,c,", []string{"a", "", "c", ""}},
		{"empty line", "", []string{""}},
		{"quoted comma", `"Main, Suite 2",x`, []string{"Main, Suite 2", "x"}},
		{"escaped quote", `"He said ""hi""",y`, []string{`He said "hi"`, "y"}},
		{"unterminated quote", `a,"b,c`, []string{"a", "b,c"}},
		{"quoted empty", `"",z`, []string{"", "z"}},
		{"spaces kept", " a , b ", []string{" a ", " b "}},
		{"unicode", "Zürich Tower,Ünit 1", []string{"Zürich Tower", "Ünit 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestParseLineRoundTripsUnquotedValues(t *testing.T) {
	inputs := [][]string{
		{"Repair elevator motor", "MC Royal", "Main Building"},
		{"x"},
		{"", "", ""},
		{"2026-02-01", "NORMAL", "MAINTENANCE", ""},
	}
	for _, fields := range inputs {
		assert.Equal(t, fields, ParseLine(strings.Join(fields, ",")))
	}
}

func TestMapRowsPadsAndNumbers(t *testing.T) {
	headers := []string{"A", "B", "C"}
	text := "\ufeffA,B,C\r\n1,2,3\r\n\r\n4\n   \n5,6,7,8,9\n"

	rows := MapRows(text, headers)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Number: 2, Fields: []string{"1", "2", "3"}}, rows[0])
	assert.Equal(t, Row{Number: 3, Fields: []string{"4", "", ""}}, rows[1])
	assert.Equal(t, Row{Number: 4, Fields: []string{"5", "6", "7"}}, rows[2])
	for _, row := range rows {
		assert.Len(t, row.Fields, len(headers))
	}
}

func TestMapRowsHeaderOnlyOrBlank(t *testing.T) {
	assert.Empty(t, MapRows("A,B\n", []string{"A", "B"}))
	assert.Empty(t, MapRows("\n\n", []string{"A", "B"}))
}

func TestRowValueTrims(t *testing.T) {
	row := Row{Number: 2, Fields: []string{"  MC Royal  "}}
	assert.Equal(t, "MC Royal", row.Value(0))
	assert.Equal(t, "", row.Value(5))
}

func TestReadUploadExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"A", "B", "C"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"x", "y"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"z", "w", "v", "extra"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	header, rows, err := readUpload("upload.XLSX", buf.Bytes(), []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Number: 2, Fields: []string{"x", "y", ""}}, rows[0])
	assert.Equal(t, Row{Number: 3, Fields: []string{"z", "w", "v"}}, rows[1])
}

func TestReadUploadRejectsUnknownFormats(t *testing.T) {
	_, _, err := readUpload("report.pdf", []byte("%PDF"), []string{"A"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = readUpload("broken.xlsx", []byte("not a zip"), []string{"A"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
