package export

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

var registerHeaders = []string{
	"Employee Code", "Employee Name", "Days Worked", "Hours", "Overtime Hours", "Night Hours",
	"Basic Pay", "Overtime Pay", "Holiday Pay", "Night Differential", "Leave Pay", "Gross Pay",
	"Bonuses", "Social Insurance", "Health Insurance", "Housing Fund", "Withholding Tax",
	"Other Deductions", "Total Deductions", "Net Pay",
}

// RegisterXLSX renders a run's payslips as one row per employee plus a totals row.
func RegisterXLSX(run payroll.PayrollRun, payslips []payroll.Payslip) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Payroll Register %s to %s", run.PeriodStart.Format("2006-01-02"), run.PeriodEnd.Format("2006-01-02"))
	if err := f.SetCellValue(registerSheet, "A1", title); err != nil {
		return nil, err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(registerSheet, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Border:    []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	const headerRow = 3
	for i, h := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(registerSheet, cell, h); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(registerHeaders), headerRow)
	if err := f.SetCellStyle(registerSheet, first, last, headerStyle); err != nil {
		return nil, err
	}

	row := headerRow + 1
	for _, p := range payslips {
		if err := f.SetSheetRow(registerSheet, cellName(1, row), &[]interface{}{
			p.EmployeeCode, p.EmployeeName, p.DaysWorked, p.TotalHours, p.OvertimeHours, p.NightDiffHours,
			money(p.Earnings.BasePay), money(p.Earnings.OvertimePay), money(p.Earnings.HolidayPay),
			money(p.Earnings.NightDifferential), money(p.Earnings.LeavePay), money(p.Earnings.GrossPay),
			money(p.TotalBonuses), money(p.Deductions.SocialInsuranceEmployee), money(p.Deductions.HealthInsuranceEmployee),
			money(p.Deductions.HousingFundEmployee), money(p.Deductions.IncomeTax),
			money(p.Deductions.Individual.Add(p.Deductions.LatePenalty).Add(p.Deductions.UndertimePenalty)),
			money(p.Deductions.TotalDeductions), money(p.NetPay),
		}); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetCellValue(registerSheet, cellName(1, row), "TOTAL"); err != nil {
		return nil, err
	}
	for col := 7; col <= len(registerHeaders); col++ {
		from, to := cellName(col, headerRow+1), cellName(col, row-1)
		if row-1 < headerRow+1 {
			continue
		}
		if err := f.SetCellFormula(registerSheet, cellName(col, row), fmt.Sprintf("SUM(%s:%s)", from, to)); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(registerSheet, cellName(7, headerRow+1), cellName(len(registerHeaders), row), moneyStyle); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(registerSheet, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(registerSheet, "B", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(registerSheet, "C", "T", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
