package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/xuri/excelize/v2"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func sampleRows() []model.TidyRow {
	date, month := str("2025-01-26"), str("2025-01-01")
	return []model.TidyRow{
		{Chain: "KROGER", Units: f64(10), Dollars: f64(25.5), Stores: f64(3), Brand: "NEOLEA", ReportDate: date, ReportMonth: month, Period: model.Period4Weeks, SourceFile: "SPINS ending 01-26-25.xlsx"},
		{Chain: "WHOLE FOODS, INC", Dollars: f64(1200.75), Brand: "NEOLEA", Period: model.PeriodUnknown, SourceFile: "b.csv"},
		{Chain: "PUBLIX", Units: f64(1234567.5), Dollars: f64(-3), Stores: f64(0), Brand: "NEOLEA", ReportDate: date, ReportMonth: month, Period: model.PeriodYTD, SourceFile: "SPINS ending 01-26-25.xlsx"},
	}
}

func TestWriteCSV_Golden(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	g := goldie.New(t)
	g.Assert(t, "tidy_rows", buf.Bytes())
}

func TestWriteCSV_EmptyKeepsHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	g := goldie.New(t)
	g.Assert(t, "tidy_empty", buf.Bytes())
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exports", "tidy.xlsx")
	if err := WriteXLSX(path, sampleRows()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	if got := f.GetSheetList(); len(got) != 1 || got[0] != TidySheetName {
		t.Fatalf("sheets=%v", got)
	}
	rows, err := f.GetRows(TidySheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows=%d want 4", len(rows))
	}
	for i, h := range model.TidyColumns {
		if rows[0][i] != h {
			t.Fatalf("header[%d]=%q want %q", i, rows[0][i], h)
		}
	}
	if rows[1][2] != "25.5" || rows[2][1] != "" || rows[3][7] != "YTD" {
		t.Fatalf("unexpected data rows: %v", rows[1:])
	}
}

func TestWriteCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "tidy.csv")
	if err := WriteCSVFile(path, sampleRows()); err != nil {
		t.Fatalf("write csv file: %v", err)
	}
}
