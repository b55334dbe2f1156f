package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
)

const defaultStaleAfter = 48 * time.Hour

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
	staleAfter        time.Duration
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval, staleAfter time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
		staleAfter:        staleAfter,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_attendances", j.interval, j.AutoCloseStaleAttendances)
}

// AutoCloseStaleAttendances closes sessions still open staleAfter past clock-in
// at their scheduled shift end and finalizes them like a normal clock-out.
func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	cutoff := j.now().Add(-j.staleAfter)

	closed, err := j.attendanceService.AutoCloseStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to auto-close stale attendances: %w", err)
	}

	if closed > 0 {
		slog.Info("Cron: Auto-closed stale attendances", "count", closed, "cutoff", cutoff)
	}
	return nil
}
