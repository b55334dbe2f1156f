package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
)

type PayrollService interface {
	GenerateRun(ctx context.Context, req GenerateRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string, companyID string) (RunResponse, error)
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
	ExportRegister(ctx context.Context, runID string, companyID string) (ExportFile, error)
	ExportPayslipPDF(ctx context.Context, payslipID string, companyID string) (ExportFile, error)
}

type ConfigService interface {
	// Resolve picks, per key, the active row with the latest effective date on
	// or before asOf, falling back to defaults.
	Resolve(ctx context.Context, companyID string, asOf time.Time) (ResolvedConfig, error)
	GetConfig(ctx context.Context, companyID string, date string) (ConfigResponse, error)
}

// ShiftInput is one finalized shift with its calendar context.
type ShiftInput struct {
	TimeIn     time.Time
	TimeOut    time.Time
	Segment    attendance.Segment
	Resolution schedule.Resolution
}

// Classifier partitions a shift into premium buckets using the company's rates.
type Classifier interface {
	Classify(ctx context.Context, companyID string, in ShiftInput) (Breakdown, error)
}
