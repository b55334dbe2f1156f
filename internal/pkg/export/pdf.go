package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PayslipPDF renders one payslip as an A4 page.
func PayslipPDF(p payroll.Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s", p.EmployeeCode), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Employee: %s (%s)", p.EmployeeName, p.EmployeeCode))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Rate type: %s   Hourly rate: %s", p.RateType, p.HourlyRate.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Days worked: %d   Hours: %.2f   Overtime: %.2f   Night: %.2f",
		p.DaysWorked, p.TotalHours, p.OvertimeHours, p.NightDiffHours))
	pdf.Ln(10)

	section(pdf, "Earnings")
	line(pdf, "Basic pay", p.Earnings.BasePay)
	line(pdf, "Overtime pay", p.Earnings.OvertimePay)
	line(pdf, "Holiday / rest day pay", p.Earnings.HolidayPay)
	line(pdf, "Night differential", p.Earnings.NightDifferential)
	line(pdf, "Leave pay", p.Earnings.LeavePay)
	total(pdf, "Gross pay", p.Earnings.GrossPay)

	if len(p.Bonuses) > 0 {
		section(pdf, "Bonuses")
		for _, name := range sortedKeys(p.Bonuses) {
			line(pdf, name, p.Bonuses[name])
		}
		total(pdf, "Total bonuses", p.TotalBonuses)
	}

	d := p.Deductions
	section(pdf, "Deductions")
	line(pdf, "Social insurance", d.SocialInsuranceEmployee)
	line(pdf, "Health insurance", d.HealthInsuranceEmployee)
	line(pdf, "Housing fund", d.HousingFundEmployee)
	line(pdf, "Withholding tax", d.IncomeTax)
	if !d.LatePenalty.IsZero() {
		line(pdf, "Late", d.LatePenalty)
	}
	if !d.UndertimePenalty.IsZero() {
		line(pdf, "Undertime", d.UndertimePenalty)
	}
	for _, name := range sortedKeys(d.IndividualDetail) {
		line(pdf, name, d.IndividualDetail[name])
	}
	total(pdf, "Total deductions", d.TotalDeductions)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, p.NetPay.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.CellFormat(120, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, amount.StringFixed(2), "", 1, "R", false, 0, "")
}

func total(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, label, "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, amount.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
