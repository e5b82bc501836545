// internal/receipt/receipt.go

// Package receipt renders printable documents for committed lending
// transactions. Rendering is a pure function of its inputs: no network
// calls, no mutable state, identical inputs produce identical bytes.
package receipt

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// SnapshotSource fetches the book/user snapshots a historical
// transaction needs before its receipt can be produced.
type SnapshotSource interface {
	GetBook(ctx context.Context, id string) (*api.Book, error)
	GetUser(ctx context.Context, id string) (*api.User, error)
}

// Data is everything a receipt renders. Assemble it once, render as
// often as needed.
type Data struct {
	TransactionID string
	Book          api.Book
	User          api.User
	IssueDate     time.Time
	DueDate       time.Time
	IssuedBy      string
	Language      string // BCP-47-ish tag, "en" when empty
	GeneratedAt   time.Time
}

// Generator renders receipts and reports with a fixed organization
// header.
type Generator struct {
	org         string
	subtitle    string
	unicodeFont string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithUnicodeFont registers a TTF file used for book titles and names
// outside the Latin range (e.g. Devanagari). Without it the built-in
// Helvetica is used for everything.
func WithUnicodeFont(path string) GeneratorOption {
	return func(g *Generator) { g.unicodeFont = path }
}

// NewGenerator creates a generator with the given header lines.
func NewGenerator(org, subtitle string, opts ...GeneratorOption) *Generator {
	g := &Generator{org: org, subtitle: subtitle}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build assembles receipt data for a committed transaction. Only
// ISSUE transactions get receipts. The book/user snapshots are
// fetched from src on demand; a failed fetch is reported for this
// transaction alone and blocks nothing else.
func Build(ctx context.Context, src SnapshotSource, txn api.Transaction, issuedBy, language string, generatedAt time.Time) (*Data, error) {
	if txn.TransactionType != api.TxnIssue {
		return nil, fmt.Errorf("receipts are generated for issue transactions only, got %s", txn.TransactionType)
	}

	book, err := src.GetBook(ctx, txn.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load book snapshot for transaction %s: %w", txn.ID, err)
	}
	user, err := src.GetUser(ctx, txn.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user snapshot for transaction %s: %w", txn.ID, err)
	}

	issued, err := api.ParseDate(txn.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("transaction %s has an unparseable issue date: %w", txn.ID, err)
	}
	due, err := api.ParseDate(txn.DueDate)
	if err != nil {
		return nil, fmt.Errorf("transaction %s has an unparseable due date: %w", txn.ID, err)
	}

	if issuedBy == "" {
		issuedBy = txn.IssuedByUserFullName
	}

	return &Data{
		TransactionID: txn.ID,
		Book:          *book,
		User:          *user,
		IssueDate:     issued,
		DueDate:       due,
		IssuedBy:      issuedBy,
		Language:      language,
		GeneratedAt:   generatedAt,
	}, nil
}

// Render writes the A4 issue receipt for d to w.
func (g *Generator) Render(d Data, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(d.GeneratedAt)

	titleFont := "Helvetica"
	if g.unicodeFont != "" {
		pdf.AddUTF8Font("unicode", "", g.unicodeFont)
		pdf.AddUTF8Font("unicode", "B", g.unicodeFont)
		titleFont = "unicode"
	}

	pdf.AddPage()

	// Organization header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, g.org, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, g.subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Book Issue Receipt", "B", 1, "C", false, 0, "")
	pdf.Ln(6)

	leftX := pdf.GetX()
	topY := pdf.GetY()
	colWidth := 90.0

	g.section(pdf, "Book Details")
	g.row(pdf, titleFont, colWidth, "Title:", d.Book.Title)
	g.row(pdf, titleFont, colWidth, "Author:", d.Book.AuthorPrimary)
	g.row(pdf, "Helvetica", colWidth, "ISBN:", orNA(d.Book.ISBN))
	g.row(pdf, "Helvetica", colWidth, "Accession No:", d.Book.AccessionNumber)
	g.row(pdf, titleFont, colWidth, "Publisher:", orNA(d.Book.Publisher))
	g.row(pdf, titleFont, colWidth, "Edition:", orNA(d.Book.Edition))

	pdf.SetXY(leftX+colWidth+10, topY)
	g.sectionAt(pdf, leftX+colWidth+10, "User Details")
	g.rowAt(pdf, leftX+colWidth+10, colWidth, "Name:", d.User.FullName)
	g.rowAt(pdf, leftX+colWidth+10, colWidth, "Email:", d.User.Email)
	g.rowAt(pdf, leftX+colWidth+10, colWidth, "Employee ID:", d.User.EmployeeID)
	g.rowAt(pdf, leftX+colWidth+10, colWidth, "Department:", orNA(d.User.Department))
	g.rowAt(pdf, leftX+colWidth+10, colWidth, "Division:", orNA(d.User.Division))

	pdf.SetXY(leftX, topY+60)
	g.section(pdf, "Issue Details")
	g.row(pdf, "Helvetica", 0, "Transaction ID:", d.TransactionID)
	g.row(pdf, "Helvetica", 0, "Issue Date:", api.FormatLong(d.IssueDate))
	g.row(pdf, "Helvetica", 0, "Due Date:", api.FormatLong(d.DueDate))
	g.row(pdf, "Helvetica", 0, "Issued By:", orNA(d.IssuedBy))

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5,
		"Please return or renew the book on or before the due date. "+
			"Keep this receipt until the book is returned.", "", "C", false)
	pdf.Ln(4)
	pdf.CellFormat(0, 5, fmt.Sprintf("(c) %d %s", d.GeneratedAt.Year(), g.org), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

func (g *Generator) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 7, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (g *Generator) sectionAt(pdf *gofpdf.Fpdf, x float64, title string) {
	pdf.SetX(x)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 7, title, "B", 1, "L", false, 0, "")
	pdf.SetX(x)
	pdf.Ln(1)
}

func (g *Generator) row(pdf *gofpdf.Fpdf, valueFont string, width float64, label, value string) {
	valueWidth := 0.0 // zero extends to the right margin
	if width > 0 {
		valueWidth = width - 32
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(32, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont(valueFont, "", 9)
	pdf.CellFormat(valueWidth, 6, value, "", 1, "L", false, 0, "")
}

func (g *Generator) rowAt(pdf *gofpdf.Fpdf, x float64, width float64, label, value string) {
	pdf.SetX(x)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(32, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(width-32, 6, value, "", 1, "L", false, 0, "")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
