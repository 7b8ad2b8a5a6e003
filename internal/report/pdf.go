package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/policyregex/internal/stats"
	"github.com/hyperifyio/policyregex/internal/textnorm"
)

// WriteCoveragePDF renders the field statistics of company as a one-table
// PDF. Text is transliterated to ASCII for the core Helvetica font.
func WriteCoveragePDF(path, company string, sum stats.Summary, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.AddPage()
	pdf.CellFormat(0, 8, textnorm.ASCII("Extraction coverage: "+company), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Generated "+generated.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Working fields: %d/%d (%.1f%%)", sum.Working, len(sum.Fields), sum.Completion), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	widths := []float64{95, 30, 25, 30}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Field", "Success", "Rate", "Status"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, f := range sum.Fields {
		switch f.Status {
		case stats.OK:
			pdf.SetTextColor(0, 110, 0)
		case stats.Warn:
			pdf.SetTextColor(170, 110, 0)
		default:
			pdf.SetTextColor(180, 0, 0)
		}
		pdf.CellFormat(widths[0], 6, truncate(textnorm.ASCII(f.Name), 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d/%d", f.Successful, f.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.1f%%", f.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, string(f.Status), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetTextColor(0, 0, 0)
	return pdf.OutputFileAndClose(path)
}
