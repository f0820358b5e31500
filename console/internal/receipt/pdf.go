// Package receipt renders paid invoices as printable PDFs.
package receipt

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/anavsan/anavsan/console/internal/payment"
)

var (
	colorPrimary   = [3]int{17, 94, 89}  // teal
	colorPaid      = [3]int{22, 163, 74} // badge
	colorTextDark  = [3]int{31, 41, 55}
	colorTextMuted = [3]int{107, 114, 128}
	colorTableHead = [3]int{243, 244, 246}
	colorGridLine  = [3]int{229, 231, 235}
)

// Issuer is printed in the receipt header.
type Issuer struct {
	Name    string
	Address string
	Email   string
}

// DefaultIssuer is used when none is configured.
var DefaultIssuer = Issuer{
	Name:    "Anavsan Inc.",
	Address: "548 Market St, San Francisco, CA 94104",
	Email:   "billing@anavsan.com",
}

// Generator renders receipts.
type Generator struct {
	Issuer Issuer
}

// NewGenerator returns a generator for issuer.
func NewGenerator(issuer Issuer) *Generator {
	return &Generator{Issuer: issuer}
}

// Generate renders r into PDF bytes.
func (g *Generator) Generate(r *payment.Receipt) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders r as a one-page PDF onto w.
func (g *Generator) Write(w io.Writer, r *payment.Receipt) error {
	if r == nil {
		return fmt.Errorf("receipt: nil receipt")
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Receipt "+r.Number, true)
	pdf.SetAuthor(g.Issuer.Name, true)
	pdf.AddPage()

	g.writeHeader(pdf, r)
	g.writeMeta(pdf, r)
	g.writeLines(pdf, r)
	g.writeTotals(pdf, r)
	g.writeFooter(pdf)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("receipt: PDF output: %w", err)
	}
	return nil
}

// Save writes r to <dir>/<number>.pdf and returns the path.
func (g *Generator) Save(dir string, r *payment.Receipt) (string, error) {
	if r == nil {
		return "", fmt.Errorf("receipt: nil receipt")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("receipt: create dir: %w", err)
	}
	path := filepath.Join(dir, r.Number+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("receipt: create file: %w", err)
	}
	if err := g.Write(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("receipt: close file: %w", err)
	}
	return path, nil
}

func (g *Generator) writeHeader(pdf *fpdf.Fpdf, r *payment.Receipt) {
	pageWidth, _ := pdf.GetPageSize()
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, pageWidth, 6, "F")

	pdf.SetY(18)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(120, 10, g.Issuer.Name, "", 0, "L", false, 0, "")

	// PAID badge
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(colorPaid[0], colorPaid[1], colorPaid[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 10, "PAID", "", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, g.Issuer.Address, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, g.Issuer.Email, "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (g *Generator) writeMeta(pdf *fpdf.Fpdf, r *payment.Receipt) {
	rows := [][2]string{
		{"Receipt number", r.Number},
		{"Date paid", r.PaidAt.Format("January 2, 2006")},
		{"Payment method", r.Method.Label()},
		{"Billing period", r.PeriodStart.Format("Jan 2, 2006") + " to " + r.PeriodEnd.Format("Jan 2, 2006")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
		pdf.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, payment.Money(r.Total)+" paid", "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (g *Generator) writeLines(pdf *fpdf.Fpdf, r *payment.Receipt) {
	widths := []float64{85, 20, 30, 35}
	headers := []string{"Description", "Qty", "Unit price", "Amount"}
	aligns := []string{"L", "C", "R", "R"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(colorTableHead[0], colorTableHead[1], colorTableHead[2])
	pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "B", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range r.Lines {
		cells := []string{
			l.Description,
			fmt.Sprintf("%d", l.Quantity),
			payment.Money(l.UnitPrice),
			payment.Money(l.Amount),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, c, "B", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (g *Generator) writeTotals(pdf *fpdf.Fpdf, r *payment.Receipt) {
	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", payment.Money(r.Subtotal), false},
		{"Tax", payment.Money(r.Tax), false},
		{"Total", payment.Money(r.Total), true},
		{"Amount paid", payment.Money(r.Total), true},
	}
	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(135, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, row.value, "", 1, "R", false, 0, "")
	}
}

func (g *Generator) writeFooter(pdf *fpdf.Fpdf) {
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, "Questions about this receipt? Contact "+g.Issuer.Email, "", 1, "C", false, 0, "")
}
