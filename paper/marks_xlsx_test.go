package paper

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestMarksWorkbook_Breakdown(t *testing.T) {
	doc := Paper{Valid: true, Questions: []Question{
		{Number: "1", Marks: "5"},
		{Number: "2", SubQuestions: []SubQuestion{{Label: "ক", Marks: "২"}, {Label: "খ", Marks: "3"}}},
		{Number: "3", Marks: "see note"},
	}}

	buf := &bytes.Buffer{}
	n, err := MarksWorkbook{}.Render(context.Background(), doc, LabelsFor("en"), buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected non-zero bytes")
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	if sheet := file.GetSheetName(0); sheet != marksSheetName {
		t.Fatalf("unexpected sheet %q", sheet)
	}
	rows, err := file.GetRows(marksSheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	// header, q1, q2, two parts, q3, total
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "Question" || rows[0][2] != "Total Marks" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[2][2] != "5" {
		t.Fatalf("expected summed part marks on question 2, got %v", rows[2])
	}
	if rows[3][1] != "ক" || rows[3][3] != "2" {
		t.Fatalf("unexpected part row %v", rows[3])
	}
	if rows[5][2] != "see note" {
		t.Fatalf("expected label marks kept, got %v", rows[5])
	}

	formula, err := file.GetCellFormula(marksSheetName, "C7")
	if err != nil {
		t.Fatalf("get formula: %v", err)
	}
	if formula != "SUM(C2:C6)" {
		t.Fatalf("unexpected total formula %q", formula)
	}
	total, err := file.GetCellValue(marksSheetName, "C7")
	if err != nil {
		t.Fatalf("get total: %v", err)
	}
	if total != "10" {
		t.Fatalf("expected total 10, got %q", total)
	}
}
