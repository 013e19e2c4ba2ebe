package payroll

import (
	"context"
	"fmt"
	"io"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Payroll"

// registerRow is one line of the payroll register in both export formats.
type registerRow struct {
	EmployeeCode  string `csv:"employee_code"`
	EmployeeName  string `csv:"employee_name"`
	Department    string `csv:"department"`
	SalaryType    string `csv:"salary_type"`
	PresentDays   int    `csv:"present_days"`
	AbsentDays    int    `csv:"absent_days"`
	LeaveDays     int    `csv:"leave_days"`
	LateDays      int    `csv:"late_days"`
	OvertimeHours string `csv:"overtime_hours"`
	BaseRate      string `csv:"base_rate"`
	BasePay       string `csv:"base_pay"`
	OvertimePay   string `csv:"overtime_pay"`
	GrossPay      string `csv:"gross_pay"`
	NetPay        string `csv:"net_pay"`
	Status        string `csv:"status"`
	Notes         string `csv:"notes"`
}

var registerHeaders = []string{
	"Employee Code", "Employee Name", "Department", "Salary Type",
	"Present Days", "Absent Days", "Leave Days", "Late Days", "Overtime Hours",
	"Base Rate", "Base Pay", "Overtime Pay", "Gross Pay", "Net Pay", "Status", "Notes",
}

func (s *PayrollServiceImpl) ExportRecords(ctx context.Context, periodID string, format payroll.ExportFormat, w io.Writer) error {
	if format != payroll.ExportFormatXLSX && format != payroll.ExportFormatCSV {
		return validator.Single("format", "must be one of xlsx, csv")
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return err
	}

	records, err := s.payrollRepo.GetRecordsByPeriodID(ctx, periodID)
	if err != nil {
		return err
	}

	switch format {
	case payroll.ExportFormatCSV:
		err = writeRegisterCSV(records, w)
	default:
		err = writeRegisterXLSX(period, records, w)
	}
	if err != nil {
		return fmt.Errorf("failed to export payroll register: %w", err)
	}

	s.logger.Info("Payroll register exported", "period_id", periodID, "format", format, "records", len(records))
	return nil
}

func toRegisterRow(r payroll.PayrollRecord) registerRow {
	row := registerRow{
		SalaryType:    r.SalaryType,
		PresentDays:   r.PresentDays,
		AbsentDays:    r.AbsentDays,
		LeaveDays:     r.PaidLeaveDays + r.UnpaidLeaveDays,
		LateDays:      r.LateDays,
		OvertimeHours: r.OvertimeHours.StringFixed(2),
		BaseRate:      r.BaseRate.StringFixed(2),
		BasePay:       r.BasePay.StringFixed(2),
		OvertimePay:   r.OvertimePay.StringFixed(2),
		GrossPay:      r.GrossPay.StringFixed(2),
		NetPay:        r.NetPay.StringFixed(2),
		Status:        string(r.Status),
	}
	if r.EmployeeCode != nil {
		row.EmployeeCode = *r.EmployeeCode
	}
	if r.EmployeeName != nil {
		row.EmployeeName = *r.EmployeeName
	}
	if r.Department != nil {
		row.Department = *r.Department
	}
	if r.Notes != nil {
		row.Notes = *r.Notes
	}
	return row
}

func writeRegisterCSV(records []payroll.PayrollRecord, w io.Writer) error {
	rows := make([]registerRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, toRegisterRow(r))
	}
	return gocsv.Marshal(rows, w)
}

func writeRegisterXLSX(period payroll.PayrollPeriod, records []payroll.PayrollRecord, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	// A new workbook starts with one default sheet
	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: "Payroll register " + period.Name}); err != nil {
		return err
	}

	setRow := func(rowNum int, values []interface{}) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheetName, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	// Header
	header := make([]interface{}, len(registerHeaders))
	for i, h := range registerHeaders {
		header[i] = h
	}
	if err := setRow(1, header); err != nil {
		return err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(registerHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastCol+"1", boldStyle); err != nil {
		return err
	}

	// Records
	totalBase, totalOvertime, totalGross, totalNet := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i, r := range records {
		row := toRegisterRow(r)
		if err := setRow(i+2, []interface{}{
			row.EmployeeCode, row.EmployeeName, row.Department, row.SalaryType,
			row.PresentDays, row.AbsentDays, row.LeaveDays, row.LateDays, r.OvertimeHours.InexactFloat64(),
			r.BaseRate.InexactFloat64(), r.BasePay.InexactFloat64(), r.OvertimePay.InexactFloat64(),
			r.GrossPay.InexactFloat64(), r.NetPay.InexactFloat64(), row.Status, row.Notes,
		}); err != nil {
			return err
		}
		totalBase = totalBase.Add(r.BasePay)
		totalOvertime = totalOvertime.Add(r.OvertimePay)
		totalGross = totalGross.Add(r.GrossPay)
		totalNet = totalNet.Add(r.NetPay)
	}

	// Totals
	totalsRow := len(records) + 2
	if err := setRow(totalsRow, []interface{}{
		"TOTAL", "", "", "", "", "", "", "", "", "",
		totalBase.InexactFloat64(), totalOvertime.InexactFloat64(),
		totalGross.InexactFloat64(), totalNet.InexactFloat64(),
	}); err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", totalsRow), fmt.Sprintf("%s%d", lastCol, totalsRow), boldStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(exportSheetName, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheetName, "B", "B", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheetName, "C", lastCol, 14); err != nil {
		return err
	}

	return f.Write(w)
}
