package importer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/excel"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

func TestIngestAll_ContinuesPastBadFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good ending 02-23-25.xlsx")
	buildWorkbook(t, good, sheetData{name: "Ret_Brand_Pivot", rows: pivotRows()})
	empty := filepath.Join(dir, "empty.xlsx")
	buildWorkbook(t, empty, sheetData{name: "Sheet1", rows: [][]interface{}{{"nothing here"}}})
	binary := filepath.Join(dir, "binary.xlsb")
	if err := os.WriteFile(binary, []byte("not a zip"), 0644); err != nil {
		t.Fatalf("write corrupt xlsb: %v", err)
	}

	batch := newTestCoordinator(nil).IngestAll([]string{binary, good, empty})

	if !reflect.DeepEqual(batch.Columns, model.TidyColumns) {
		t.Fatalf("columns=%v", batch.Columns)
	}
	if len(batch.Files) != 3 {
		t.Fatalf("files=%d", len(batch.Files))
	}
	wantStatus := []FileStatus{FileError, FileImported, FileSkipped}
	for i, fr := range batch.Files {
		if fr.Status != wantStatus[i] {
			t.Fatalf("file %s status=%s want %s", fr.Name, fr.Status, wantStatus[i])
		}
	}
	if batch.Imported() != 1 || len(batch.Rows) != 3 {
		t.Fatalf("imported=%d rows=%d", batch.Imported(), len(batch.Rows))
	}
	for _, row := range batch.Rows {
		if row.SourceFile != "good ending 02-23-25.xlsx" {
			t.Fatalf("source file=%q", row.SourceFile)
		}
	}
}

func TestIngestAll_EmptyBatchKeepsColumns(t *testing.T) {
	t.Parallel()

	batch := newTestCoordinator(nil).IngestAll(nil)
	if len(batch.Rows) != 0 || len(batch.Columns) != len(model.TidyColumns) {
		t.Fatalf("unexpected empty batch: %+v", batch)
	}
}

func TestIngestAll_RecoversPanics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.xlsx")
	buildWorkbook(t, good, sheetData{name: "Ret_Brand_Pivot", rows: pivotRows()})

	coord := newTestCoordinator(nil)
	coord.open = func(path string) (excel.Workbook, error) {
		if filepath.Base(path) == "boom.xlsx" {
			panic("corrupt workbook")
		}
		return excel.Open(path)
	}

	batch := coord.IngestAll([]string{filepath.Join(dir, "boom.xlsx"), good})
	if batch.Files[0].Status != FileError || batch.Files[0].Error == "" {
		t.Fatalf("panic must be recorded as error: %+v", batch.Files[0])
	}
	if batch.Files[1].Status != FileImported || len(batch.Rows) != 3 {
		t.Fatalf("batch must continue after panic: %+v", batch.Files[1])
	}
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.xlsb", "a.xlsx", "c.csv", "notes.txt", "~$a.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.xlsb"),
		filepath.Join(dir, "c.csv"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}

	if _, err := DiscoverFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
