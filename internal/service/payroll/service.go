package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/export"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	ledgerRepo     payroll.LedgerRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	calendar       schedule.CalendarService
	config         payroll.ConfigService
	runInTx        database.TxRunner
	workers        int
	location       *time.Location
	now            func() time.Time
}

type Options struct {
	Workers  int
	Location *time.Location
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	ledgerRepo payroll.LedgerRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	calendar schedule.CalendarService,
	config payroll.ConfigService,
	runInTx database.TxRunner,
	opts Options,
) payroll.PayrollService {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		ledgerRepo:     ledgerRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		calendar:       calendar,
		config:         config,
		runInTx:        runInTx,
		workers:        opts.Workers,
		location:       opts.Location,
		now:            time.Now,
	}
}

type employeeOutcome struct {
	result PayslipResult
	err    error
}

// GenerateRun implements payroll.PayrollService.
func (s *PayrollServiceImpl) GenerateRun(ctx context.Context, req payroll.GenerateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}
	start := attendancesvc.LocalDate(req.Start, s.location)
	end := attendancesvc.LocalDate(req.End, s.location)

	employeeIDs := dedupe(req.EmployeeIDs)
	if len(employeeIDs) == 0 {
		ids, err := s.employeeRepo.GetActiveIDsByCompanyID(ctx, req.CompanyID)
		if err != nil {
			return payroll.RunResponse{}, fmt.Errorf("failed to list active employees: %w", err)
		}
		employeeIDs = ids
	}
	if len(employeeIDs) == 0 {
		return payroll.RunResponse{}, payroll.ErrNoEmployees
	}

	cfg, err := s.config.Resolve(ctx, req.CompanyID, end)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	runID := uuid.Must(uuid.NewV7()).String()
	began := s.now()
	slog.Info("Payroll run started", "run_id", runID, "company_id", req.CompanyID,
		"period_start", req.StartDate, "period_end", req.EndDate, "employee_count", len(employeeIDs))

	var warnings []payroll.RunWarning
	for _, key := range DefaultedKeys(cfg) {
		slog.Warn("Payroll config fell back to default", "run_id", runID, "key", key)
		warnings = append(warnings, payroll.RunWarning{
			Code:    payroll.WarningConfigDefault,
			Message: fmt.Sprintf("%s: no usable configuration row, default applied", key),
		})
	}

	outcomes := make([]employeeOutcome, len(employeeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range employeeIDs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Stop before starting another employee once the run is cancelled.
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.calculateEmployee(gctx, req.CompanyID, id, start, end, cfg.Rates)
			outcomes[i] = employeeOutcome{result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.RunResponse{}, fmt.Errorf("payroll run cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return payroll.RunResponse{}, fmt.Errorf("payroll run cancelled: %w", err)
	}

	run := payroll.PayrollRun{
		ID:          runID,
		CompanyID:   req.CompanyID,
		RunBy:       req.RunBy,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      payroll.RunStatusCompleted,
		CreatedAt:   s.now(),
	}

	var payslips []payroll.Payslip
	for i, o := range outcomes {
		if o.err != nil {
			run.FailedCount++
			slog.Warn("Payroll calculation failed for employee", "run_id", runID, "employee_id", employeeIDs[i], "error", o.err)
			warnings = append(warnings, payroll.RunWarning{
				Code:       payroll.WarningCalculationFailed,
				EmployeeID: employeeIDs[i],
				Message:    o.err.Error(),
			})
			continue
		}
		for _, w := range o.result.Warnings {
			slog.Warn("Payroll data warning", "run_id", runID, "employee_id", w.EmployeeID, "code", w.Code, "message", w.Message)
		}
		warnings = append(warnings, o.result.Warnings...)

		slip := o.result.Payslip
		slip.ID = uuid.Must(uuid.NewV7()).String()
		slip.RunID = runID
		slip.CompanyID = req.CompanyID
		slip.CreatedAt = run.CreatedAt
		payslips = append(payslips, slip)

		run.TotalGross = run.TotalGross.Add(slip.Earnings.GrossPay)
		run.TotalBonuses = run.TotalBonuses.Add(slip.TotalBonuses)
		run.TotalDeductions = run.TotalDeductions.Add(slip.Deductions.TotalDeductions)
		run.TotalNet = run.TotalNet.Add(slip.NetPay)
	}
	run.EmployeeCount = len(payslips)
	if run.FailedCount > 0 {
		run.Status = payroll.RunStatusPartialFailure
	}
	run.Warnings = warnings

	err = s.runInTx(ctx, func(ctx context.Context) error {
		created, err := s.payrollRepo.CreateRun(ctx, run)
		if err != nil {
			return err
		}
		run = created
		for i := range payslips {
			saved, err := s.payrollRepo.CreatePayslip(ctx, payslips[i])
			if err != nil {
				return err
			}
			payslips[i] = saved
		}
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to persist payroll run: %w", err)
	}

	slog.Info("Payroll run finished", "run_id", runID, "payslips", len(payslips),
		"failed", run.FailedCount, "total_net", run.TotalNet.StringFixed(2), "duration", s.now().Sub(began))

	return buildRunResponse(run, payslips), nil
}

// calculateEmployee gathers one employee's inputs, then computes without further I/O.
func (s *PayrollServiceImpl) calculateEmployee(ctx context.Context, companyID, employeeID string, start, end time.Time, rates payroll.Rates) (PayslipResult, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return PayslipResult{}, &payroll.CalculationError{EmployeeID: employeeID, Field: "employee_id", Err: err}
		}
		return PayslipResult{}, err
	}

	contracts, err := s.employeeRepo.GetCompensationsBetween(ctx, employeeID, companyID, start, end)
	if err != nil {
		return PayslipResult{}, err
	}

	cal, err := s.calendar.Calendar(ctx, companyID, employeeID, start, end)
	if err != nil {
		return PayslipResult{}, err
	}

	records, err := s.attendanceRepo.GetByEmployeeBetween(ctx, employeeID, companyID, start, end)
	if err != nil {
		return PayslipResult{}, fmt.Errorf("failed to get attendances: %w", err)
	}

	bonuses, err := s.ledgerRepo.GetBonusTotals(ctx, employeeID, companyID, start, end)
	if err != nil {
		return PayslipResult{}, fmt.Errorf("failed to get bonuses: %w", err)
	}
	deductions, err := s.ledgerRepo.GetDeductionTotals(ctx, employeeID, companyID, start, end)
	if err != nil {
		return PayslipResult{}, fmt.Errorf("failed to get deductions: %w", err)
	}
	leaveDays, err := s.ledgerRepo.GetPaidLeaveDays(ctx, employeeID, companyID, start, end)
	if err != nil {
		return PayslipResult{}, fmt.Errorf("failed to get paid leave: %w", err)
	}

	return ComputePayslip(PayslipInput{
		Employee:      emp,
		Contracts:     contracts,
		Calendar:      cal,
		Records:       records,
		Bonuses:       bonuses,
		Deductions:    deductions,
		PaidLeaveDays: leaveDays,
		PeriodStart:   start,
		PeriodEnd:     end,
		Rates:         rates,
		Location:      s.location,
	})
}

// GetRun implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string, companyID string) (payroll.RunResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	payslips, err := s.payrollRepo.GetPayslipsByRunID(ctx, id, companyID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return buildRunResponse(run, payslips), nil
}

// Preview implements payroll.PayrollService.
func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.PreviewRequest) (payroll.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PreviewResponse{}, err
	}

	timeIn := req.ParsedTimeIn.In(s.location)
	timeOut := req.ParsedTimeOut.In(s.location)
	date := attendancesvc.LocalDate(timeIn, s.location)

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID); err != nil {
		return payroll.PreviewResponse{}, err
	}
	comp, err := s.employeeRepo.GetCompensation(ctx, req.EmployeeID, req.CompanyID, date)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}
	res, err := s.calendar.Resolve(ctx, req.CompanyID, req.EmployeeID, date, req.IsDayOff)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}
	cfg, err := s.config.Resolve(ctx, req.CompanyID, date)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}

	seg := attendancesvc.ComputeSegment(timeIn, timeOut, res.Schedule)
	bd := Classify(payroll.ShiftInput{TimeIn: timeIn, TimeOut: timeOut, Segment: seg, Resolution: res}, StandardHours(res, cfg.Rates))
	hourly, err := HourlyRate(comp, res.Adjustments, cfg.Rates)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}

	day := payroll.DayResponse{
		Date:        date.Format("2006-01-02"),
		IsRestDay:   res.IsRestDay,
		HasSchedule: res.HasSchedule,
	}
	if res.Holiday != nil {
		name, kind := res.Holiday.Name, string(res.Holiday.Type)
		day.HolidayName, day.HolidayType = &name, &kind
	}

	return payroll.PreviewResponse{
		Day:        day,
		HourlyRate: payroll.RoundMoney(hourly),
		Segment: payroll.SegmentResponse{
			TotalHours:             attendancesvc.RoundHours(seg.TotalHours),
			LateMinutes:            seg.LateMinutes,
			UndertimeMinutes:       seg.UndertimeMinutes,
			NightDifferentialHours: seg.NightDifferentialHours,
			IsUndertime:            seg.IsUndertime,
			IsHalfday:              seg.IsHalfday,
		},
		Breakdown: bd,
		Earnings:  PriceBreakdown(hourly, bd, cfg.Rates).Rounded(),
	}, nil
}

// ExportRegister implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportRegister(ctx context.Context, runID string, companyID string) (payroll.ExportFile, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	payslips, err := s.payrollRepo.GetPayslipsByRunID(ctx, runID, companyID)
	if err != nil {
		return payroll.ExportFile{}, err
	}

	content, err := export.RegisterXLSX(run, payslips)
	if err != nil {
		return payroll.ExportFile{}, fmt.Errorf("failed to render payroll register: %w", err)
	}
	return payroll.ExportFile{
		Filename:    fmt.Sprintf("payroll-register-%s-%s.xlsx", run.PeriodStart.Format("20060102"), run.PeriodEnd.Format("20060102")),
		ContentType: export.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// ExportPayslipPDF implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportPayslipPDF(ctx context.Context, payslipID string, companyID string) (payroll.ExportFile, error) {
	slip, err := s.payrollRepo.GetPayslipByID(ctx, payslipID, companyID)
	if err != nil {
		return payroll.ExportFile{}, err
	}

	content, err := export.PayslipPDF(slip)
	if err != nil {
		return payroll.ExportFile{}, fmt.Errorf("failed to render payslip: %w", err)
	}
	return payroll.ExportFile{
		Filename:    fmt.Sprintf("payslip-%s-%s.pdf", slip.EmployeeCode, slip.PeriodEnd.Format("20060102")),
		ContentType: export.ContentTypePDF,
		Content:     content,
	}, nil
}

func buildRunResponse(run payroll.PayrollRun, payslips []payroll.Payslip) payroll.RunResponse {
	resp := payroll.RunResponse{
		Run:      payroll.NewRunHeaderResponse(run),
		Payslips: make([]payroll.PayslipResponse, 0, len(payslips)),
		Warnings: run.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []payroll.RunWarning{}
	}
	for _, p := range payslips {
		resp.Payslips = append(resp.Payslips, payroll.NewPayslipResponse(p))
	}
	return resp
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
