package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/policyregex/internal/record"
	"github.com/hyperifyio/policyregex/internal/stats"
)

const (
	resultsSheet  = "Results"
	coverageSheet = "Coverage"
)

func cellValue(v record.Value) any {
	switch v.Kind() {
	case record.KindNull:
		return ""
	case record.KindInt:
		n, _ := v.IntValue()
		return n
	case record.KindFloat:
		f, _ := v.FloatValue()
		return f
	}
	return Display(v)
}

// WriteXLSX writes a workbook with one row per document and one column per
// field on the Results sheet, and the field statistics on the Coverage sheet.
func WriteXLSX(path string, s record.Set) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(coverageSheet); err != nil {
		return err
	}

	fields := s.Fields()
	write := func(sheet string, col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	if err := write(resultsSheet, 1, 1, "document"); err != nil {
		return err
	}
	for i, name := range fields {
		if err := write(resultsSheet, i+2, 1, name); err != nil {
			return err
		}
	}
	row := 2
	for _, doc := range s.Documents() {
		if err := write(resultsSheet, 1, row, doc); err != nil {
			return err
		}
		for i, name := range fields {
			if err := write(resultsSheet, i+2, row, cellValue(s[doc][name])); err != nil {
				return err
			}
		}
		row++
	}
	_ = f.SetColWidth(resultsSheet, "A", "A", 28)
	if len(fields) > 0 {
		last, _ := excelize.ColumnNumberToName(len(fields) + 1)
		_ = f.SetColWidth(resultsSheet, "B", last, 22)
	}

	sum := stats.Summarize(s)
	headers := []string{"field", "successful", "total", "rate", "status"}
	for i, h := range headers {
		if err := write(coverageSheet, i+1, 1, h); err != nil {
			return err
		}
	}
	for r, fs := range sum.Fields {
		vals := []any{fs.Name, fs.Successful, fs.Total, fs.Rate, string(fs.Status)}
		for c, v := range vals {
			if err := write(coverageSheet, c+1, r+2, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(coverageSheet, "A", "A", 40)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
