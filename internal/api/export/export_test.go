package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"pgregory.net/rapid"
)

func sample(rows int) Table {
	t := Table{Title: "Client Management", Header: []string{"Client Name", "Email", "Status"}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("Client %d", i+1), fmt.Sprintf("c%d@ppf.test", i+1), "Active"})
	}
	return t
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sample(2)))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Client Name", "Email", "Status"},
		{"Client 1", "c1@ppf.test", "Active"},
		{"Client 2", "c2@ppf.test", "Active"},
	}, lines)
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, sample(3)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Client Management"}, f.GetSheetList())
	rows, err := f.GetRows("Client Management")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, []string{"Client Name", "Email", "Status"}, rows[0])
	require.Equal(t, []string{"Client 3", "c3@ppf.test", "Active"}, rows[3])
}

func TestWrite_PDF(t *testing.T) {
	var one, many bytes.Buffer
	require.NoError(t, Write(&one, PDF, sample(3)))
	require.NoError(t, Write(&many, PDF, sample(80)))

	require.True(t, bytes.HasPrefix(one.Bytes(), []byte("%PDF-")))
	require.Contains(t, strings.TrimSpace(one.String()), "%%EOF")
	require.Equal(t, 1, strings.Count(one.String(), "/Type /Page\n"))
	require.Greater(t, strings.Count(many.String(), "/Type /Page\n"), 1, "long tables continue on new pages")
}

func TestWrite_PDFEmptyAndUnicode(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Title: "Usuarios", Header: []string{"Nombre"}, Rows: [][]string{{"José Núñez"}}}
	require.NoError(t, Write(&buf, PDF, tbl))
	require.NoError(t, Write(&buf, PDF, Table{Title: "Empty", Header: []string{"A"}}))
}

func TestWrite_UnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, Format("doc"), sample(1)))
}

func TestSheetName(t *testing.T) {
	require.Equal(t, "Sheet1", SheetName(""))
	require.Equal(t, "ClientsQ1", SheetName("Clients/Q1"))
	require.Equal(t, "Sheet1", SheetName("''"))

	rapid.Check(t, func(t *rapid.T) {
		name := SheetName(rapid.String().Draw(t, "title"))
		if n := len([]rune(name)); n == 0 || n > 31 {
			t.Fatalf("sheet name %q has %d runes", name, n)
		}
		if strings.ContainsAny(name, `[]:*?/\`) || strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
			t.Fatalf("sheet name %q has a reserved character", name)
		}
	})
}

func TestFormat(t *testing.T) {
	require.Equal(t, "application/pdf", PDF.ContentType())
	require.Contains(t, CSV.ContentType(), "text/csv")
	require.Equal(t, "Export Excel", XLSX.Label())
}
