package render

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

var page = Page{
	Query:      "人",
	SearchedAt: "2024/3/5 10:02:03",
	Rows: []Row{
		{Text: "3人", Row: 0, Checked: false},
		{Text: "5人", Row: 1, Checked: true},
	},
}

func TestTSV(t *testing.T) {
	expected := "Text\tRow\tChecked\n3人\t0\tfalse\n5人\t1\ttrue\n"

	var b bytes.Buffer
	if err := (TSV{}).Render(&b, page); err != nil {
		t.Fatalf("Unexpected error rendering TSV (%v)", err)
	}

	if b.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %q\n   got:      %q\n", expected, b.String())
	}
}

func TestXLSX(t *testing.T) {
	var b bytes.Buffer
	if err := (XLSX{Sheet: "Search"}).Render(&b, page); err != nil {
		t.Fatalf("Unexpected error rendering XLSX (%v)", err)
	}

	f, err := excelize.OpenReader(&b)
	if err != nil {
		t.Fatalf("Invalid XLSX (%v)", err)
	}

	defer f.Close()

	rows, err := f.GetRows("Search")
	if err != nil {
		t.Fatalf("Error reading worksheet (%v)", err)
	}

	expected := [][]string{
		{"Text", "Row", "Checked"},
		{"3人", "0", "FALSE"},
		{"5人", "1", "TRUE"},
	}

	for i, row := range expected {
		if i >= len(rows) || len(rows[i]) < 3 || !reflect.DeepEqual(rows[i][:3], row) {
			t.Errorf("Incorrect row %v\n   expected: %v\n   got:      %v\n", i, row, rows)
		}
	}

	if v, _ := f.GetCellValue("Search", "F2"); v != "2024/3/5 10:02:03" {
		t.Errorf("Incorrect search time - expected:%v, got:%v", "2024/3/5 10:02:03", v)
	}
}
