// Package report renders result sets and their field statistics as a
// console summary, an XLSX workbook and a PDF coverage report.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperifyio/policyregex/internal/record"
	"github.com/hyperifyio/policyregex/internal/stats"
)

// Display renders a value for humans: null as "-", lists joined with "; ".
func Display(v record.Value) string {
	switch v.Kind() {
	case record.KindNull:
		return "-"
	case record.KindString:
		s, _ := v.Str()
		return s
	case record.KindList:
		items, _ := v.Items()
		if len(items) == 0 {
			return "[]"
		}
		return strings.Join(items, "; ")
	case record.KindInt:
		n, _ := v.IntValue()
		return strconv.FormatInt(n, 10)
	case record.KindFloat:
		f, _ := v.FloatValue()
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// WriteText prints the per-field table and the working/total line for
// company to w.
func WriteText(w io.Writer, company string, sum stats.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", company)
	fmt.Fprintf(&b, "%-40s %10s %8s  %s\n", "FIELD", "SUCCESS", "RATE", "STATUS")
	for _, f := range sum.Fields {
		fmt.Fprintf(&b, "%-40s %4d/%-5d %7.1f%%  %s\n", truncate(f.Name, 40), f.Successful, f.Total, f.Rate, f.Status)
		for _, s := range f.Samples {
			fmt.Fprintf(&b, "    %s: %s\n", s.Document, truncate(Display(s.Value), 80))
		}
	}
	fmt.Fprintf(&b, "Working fields: %d/%d (%.1f%%)\n", sum.Working, len(sum.Fields), sum.Completion)
	_, err := io.WriteString(w, b.String())
	return err
}
