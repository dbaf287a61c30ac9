package paper

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const marksSheetName = "Marks"

var bengaliDigits = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
)

// MarksWorkbook writes the marks breakdown of a paper as XLSX: one row per
// question, one per sub-question, and a total row.
type MarksWorkbook struct{}

// Render writes the workbook and returns the bytes written.
func (MarksWorkbook) Render(ctx context.Context, doc Paper, labels Labels, w io.Writer) (int64, error) {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	defaultSheet := file.GetSheetName(0)
	if defaultSheet != marksSheetName {
		if err := file.SetSheetName(defaultSheet, marksSheetName); err != nil {
			return 0, err
		}
	}

	stream, err := file.NewStreamWriter(marksSheetName)
	if err != nil {
		return 0, err
	}
	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}

	headers := []interface{}{
		excelize.Cell{StyleID: headerID, Value: labels.Question},
		excelize.Cell{StyleID: headerID, Value: labels.Part},
		excelize.Cell{StyleID: headerID, Value: labels.TotalMarks},
		excelize.Cell{StyleID: headerID, Value: labels.PartMarks},
	}
	if err := stream.SetRow("A1", headers); err != nil {
		return 0, err
	}

	rowIndex := 2
	total := 0.0
	for _, q := range doc.Questions {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		value, counted := questionMarks(q)
		if counted {
			total += value
		}
		row := []interface{}{q.Number, "", marksCell(q.Marks, value, counted), nil}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), row); err != nil {
			return 0, err
		}
		rowIndex++

		for _, sub := range q.SubQuestions {
			partValue, ok := parseMarks(sub.Marks)
			row := []interface{}{q.Number, sub.Label, nil, marksCell(sub.Marks, partValue, ok)}
			if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), row); err != nil {
				return 0, err
			}
			rowIndex++
		}
	}

	totalRow := []interface{}{
		excelize.Cell{StyleID: headerID, Value: labels.TotalMarks},
		nil,
		excelize.Cell{StyleID: headerID, Value: total, Formula: fmt.Sprintf("SUM(C2:C%d)", max(rowIndex-1, 2))},
	}
	if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), totalRow); err != nil {
		return 0, err
	}
	if err := stream.Flush(); err != nil {
		return 0, err
	}

	return file.WriteTo(w)
}

// questionMarks is the question's own marks, or the sum of its parts when the
// question carries none.
func questionMarks(q Question) (float64, bool) {
	if q.Marks != "" {
		return parseMarks(q.Marks)
	}
	sum, counted := 0.0, false
	for _, sub := range q.SubQuestions {
		if value, ok := parseMarks(sub.Marks); ok {
			sum += value
			counted = true
		}
	}
	return sum, counted
}

func parseMarks(label string) (float64, bool) {
	label = strings.TrimSpace(bengaliDigits.Replace(label))
	if label == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func marksCell(label string, value float64, numeric bool) interface{} {
	if numeric {
		return value
	}
	if label == "" {
		return nil
	}
	return label
}
