// Package pdf renders payslips and settlement statements as PDF bytes
// for the HTTP layer to serve.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"mawared/internal/domain/employee"
	"mawared/internal/domain/payroll"
	"mawared/internal/domain/settlement"
)

func Payslip(emp employee.Employee, run payroll.Run, item payroll.Item) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", emp.FirstName, emp.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", emp.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %04d-%02d (%s)", run.Period.Year, run.Period.Month, run.Period.Cycle))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Basic salary: %.3f", item.BasicSalary))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Housing allowances: %.3f", item.HousingAllowances))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Other allowances: %.3f", item.OtherAllowances))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Absence deduction: %.3f", item.AbsenceDeduction))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Leave deduction: %.3f", item.LeaveDeduction))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Permission deduction: %.3f", item.PermissionDeduction))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Social insurance: %.3f", item.InsuranceEmployee))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net salary: %.3f", item.NetSalary))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func SettlementStatement(emp employee.Employee, result settlement.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "End of Service Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", emp.FirstName, emp.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Exit date: %s", result.ExitDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Reason: %s", result.Reason))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Tenure: %dy %dm %dd (%d days)",
		result.Tenure.Years, result.Tenure.Months, result.Tenure.Days, result.Tenure.TotalDays))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Remuneration basis: %.3f", result.RemunerationBasis))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Daily rate: %.3f", result.DailyRate))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Base indemnity: %.3f", result.BaseIndemnity))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Multiplier: %.4f", result.Multiplier))
	pdf.Ln(7)
	capped := ""
	if result.IsCapped {
		capped = " (capped)"
	}
	pdf.Cell(0, 8, fmt.Sprintf("Indemnity: %.3f%s", result.Indemnity, capped))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Leave encashment: %.3f", result.LeaveEncashment))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total payable: %.3f", result.TotalPayable))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
