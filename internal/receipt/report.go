// internal/receipt/report.go
package receipt

import (
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// RenderIssuedReport writes a landscape A4 table of currently issued
// books to w. Like receipts, the output depends only on the inputs.
func (g *Generator) RenderIssuedReport(title string, rows []api.Transaction, generatedAt time.Time, w io.Writer) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, g.org, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, "Generated "+api.FormatDisplay(generatedAt), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	headers := []string{"Book", "Borrower", "Issue Date", "Due Date", "Status", "Renewals"}
	widths := []float64{90, 60, 35, 35, 30, 20}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, txn := range rows {
		pdf.CellFormat(widths[0], 7, txn.BookTitle, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, txn.UserFullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, displayDate(txn.IssueDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, displayDate(txn.DueDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 7, string(txn.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 7, strconv.Itoa(txn.RenewalCount), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}

func displayDate(wire string) string {
	t, err := api.ParseDate(wire)
	if err != nil {
		return wire
	}
	return api.FormatDisplay(t)
}
