// Package payslip renders a salary record as a one-page PDF.
package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type Line struct {
	Label  string
	Amount decimal.Decimal
}

type Slip struct {
	EmployeeName string
	EmployeeID   string
	Email        string
	Department   string
	Position     string
	Period       time.Time
	Status       string
	PayDate      *time.Time

	Earnings   []Line
	Deductions []Line
	Gross      decimal.Decimal
	Deducted   decimal.Decimal
	Net        decimal.Decimal
}

// Render writes s to a PDF document and returns its bytes.
func Render(s Slip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s", s.Period.Format("January 2006")), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := [][2]string{
		{"Employee", s.EmployeeName},
		{"Employee ID", s.EmployeeID},
		{"Email", s.Email},
		{"Department", s.Department},
		{"Position", s.Position},
		{"Period", s.Period.Format("January 2006")},
		{"Status", s.Status},
	}
	if s.PayDate != nil {
		header = append(header, [2]string{"Paid on", s.PayDate.Format(time.DateOnly)})
	}
	for _, h := range header {
		pdf.CellFormat(40, 7, h[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, h[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Earnings", s.Earnings, "Gross salary", s.Gross)
	section(pdf, "Deductions", s.Deductions, "Total deductions", s.Deducted)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 9, "Net salary", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, s.Net.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, lines []Line, totalLabel string, total decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		pdf.CellFormat(120, 7, l.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, l.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, totalLabel, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, total.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Ln(4)
}
