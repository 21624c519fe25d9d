// Package statement renders a computed settlement as a one-page PDF.
package statement

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"github.com/warp/settlement-engine/settlement"
)

// Statement is the input to Render.
type Statement struct {
	Number       string
	EmployeeID   string
	EmployeeName string
	IssuedOn     calendar.Date
	Payload      *settlement.Payload
}

// New builds a statement for a successful computation with a fresh
// document number.
func New(emp records.Employee, payload *settlement.Payload, issuedOn calendar.Date) Statement {
	return Statement{
		Number:       "FNF-" + uuid.NewString(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		IssuedOn:     issuedOn,
		Payload:      payload,
	}
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Component", 45, "L"},
	{"Days", 20, "R"},
	{"Rate / Day", 30, "R"},
	{"Amount", 35, "R"},
	{"Reference", 60, "L"},
}

// Render writes the statement as an A4 PDF.
func Render(w io.Writer, st Statement) error {
	if st.Payload == nil {
		return errors.New("statement: no payload to render")
	}
	p := st.Payload

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Full & Final Settlement "+st.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Full & Final Settlement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(format string, args ...any) {
		pdf.Cell(0, 7, fmt.Sprintf(format, args...))
		pdf.Ln(6)
	}
	line("Statement: %s", st.Number)
	line("Issued on: %s", st.IssuedOn)
	line("Employee: %s (%s)", st.EmployeeName, st.EmployeeID)
	line("Cutoff date: %s", p.Cutoff)
	line("Worked period: %s to %s", p.WorkedWindow.Start, p.WorkedWindow.End)
	if p.CompanyCurrency != "" {
		line("Currency: %s", p.CompanyCurrency)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range p.Payables {
		ref := item.ReferenceDocument
		if ref == "" {
			ref = "-"
		}
		cells := []string{
			item.Component,
			item.DayCount.StringFixed(2),
			item.RatePerDay.StringFixed(2),
			item.Amount.StringFixed(2),
			ref,
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 8, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(columns[0].width+columns[1].width+columns[2].width, 8, "Total payable", "1", 0, "L", true, 0, "")
	pdf.CellFormat(columns[3].width, 8, p.TotalPayable.StringFixed(2), "1", 0, "R", true, 0, "")
	pdf.CellFormat(columns[4].width, 8, p.CompanyCurrency, "1", 0, "L", true, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line("Service: %d years, %d months, %d days (%s years)",
		p.Service.Years, p.Service.Months, p.Service.Days, p.Service.TotalYears.StringFixed(2))

	return pdf.Output(w)
}
