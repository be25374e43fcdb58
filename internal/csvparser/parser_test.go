package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/shelf-inventory/internal/config"
)

func settings() config.CSVSettings {
	return config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2, BarcodeColumn: "barcode"}
}

func TestParse_SingleHeader(t *testing.T) {
	input := "\ufeffBarcode,Title, Call_Number\n39001,  Moby Dick ,PS2384 .M6\n\n39002,Walden\n"

	table, err := Parse(strings.NewReader(input), settings())
	require.NoError(t, err)

	assert.Equal(t, []string{"Barcode", "Title", "Call_Number"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Moby Dick", table.Rows[0]["Title"])
	assert.Equal(t, "", table.Rows[1]["Call_Number"], "missing trailing column is empty")
	assert.Len(t, table.RawRows, 3, "csv reader drops blank lines")
}

func TestParse_Delimiters(t *testing.T) {
	for delim, input := range map[string]string{
		"|":   "barcode|title\n1|A\n",
		"tab": "barcode\ttitle\n1\tA\n",
		";":   "barcode;title\n1;A\n",
	} {
		s := settings()
		s.Delimiter = delim
		table, err := Parse(strings.NewReader(input), s)
		require.NoError(t, err, delim)
		assert.Equal(t, []string{"1"}, table.Column("BARCODE"), delim)
	}
}

func TestParse_MultiLineHeaders(t *testing.T) {
	input := "Item,,Location,\nBarcode,Title,Code,Name\n1,A,STACKS,Main Stacks\n"
	s := settings()
	s.HeaderRows = 2
	s.DataStartRow = 3

	table, err := Parse(strings.NewReader(input), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"Item Barcode", "Title", "Location Code", "Location Name"}, table.Headers)
	assert.Equal(t, "Main Stacks", table.Rows[0]["Location Name"])
}

func TestParse_EmptyHeadersGetColumnNames(t *testing.T) {
	table, err := Parse(strings.NewReader("barcode,\n1,x\n"), settings())
	require.NoError(t, err)
	assert.Equal(t, []string{"barcode", "Column_2"}, table.Headers)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""), settings())
	assert.Error(t, err)

	s := settings()
	s.HeaderRows = 0
	_, err = Parse(strings.NewReader("a\n"), s)
	assert.Error(t, err)
}

func TestTable_HeaderIndexAndColumn(t *testing.T) {
	table := &Table{
		Headers: []string{"Barcode", "Title"},
		Rows:    []map[string]string{{"Barcode": "1"}, {"Barcode": "2"}},
	}

	assert.Equal(t, 0, table.HeaderIndex(" barcode "))
	assert.Equal(t, -1, table.HeaderIndex("missing"))
	assert.Equal(t, []string{"1", "2"}, table.Column("barcode"))
	assert.Nil(t, table.Column("missing"))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.csv")
	require.NoError(t, os.WriteFile(path, []byte("barcode\n1\n2\n"), 0o644))

	table, err := ParseFile(path, settings())
	require.NoError(t, err)
	assert.Equal(t, path, table.SourceFile)
	assert.Len(t, table.Rows, 2)

	_, err = ParseFile(filepath.Join(t.TempDir(), "nope.csv"), settings())
	assert.Error(t, err)
}
