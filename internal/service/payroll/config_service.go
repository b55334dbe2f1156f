package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type ConfigServiceImpl struct {
	payroll.ConfigRepository
	now func() time.Time
}

func NewConfigService(configRepo payroll.ConfigRepository) payroll.ConfigService {
	return &ConfigServiceImpl{ConfigRepository: configRepo, now: time.Now}
}

// Resolve implements payroll.ConfigService.
func (s *ConfigServiceImpl) Resolve(ctx context.Context, companyID string, asOf time.Time) (payroll.ResolvedConfig, error) {
	entries, err := s.ConfigRepository.GetActive(ctx, companyID)
	if err != nil {
		return payroll.ResolvedConfig{}, fmt.Errorf("failed to load payroll configs: %w", err)
	}
	return ResolveRates(entries, asOf), nil
}

// GetConfig implements payroll.ConfigService.
func (s *ConfigServiceImpl) GetConfig(ctx context.Context, companyID string, date string) (payroll.ConfigResponse, error) {
	asOf := s.now()
	if date != "" {
		parsed, ok := validator.IsValidDate(date)
		if !ok {
			return payroll.ConfigResponse{}, validator.ValidationErrors{
				{Field: "date", Message: "date must be YYYY-MM-DD"},
			}
		}
		asOf = parsed
	}

	resolved, err := s.Resolve(ctx, companyID, asOf)
	if err != nil {
		return payroll.ConfigResponse{}, err
	}

	return payroll.ConfigResponse{
		AsOf:     asOf.Format("2006-01-02"),
		Rates:    resolved.Rates,
		Sources:  resolved.Sources,
		Warnings: resolved.Warnings,
	}, nil
}

type ClassifierImpl struct {
	config payroll.ConfigService
}

func NewClassifier(config payroll.ConfigService) payroll.Classifier {
	return &ClassifierImpl{config: config}
}

// Classify implements payroll.Classifier.
func (c *ClassifierImpl) Classify(ctx context.Context, companyID string, in payroll.ShiftInput) (payroll.Breakdown, error) {
	resolved, err := c.config.Resolve(ctx, companyID, in.Resolution.Date)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	return Classify(in, StandardHours(in.Resolution, resolved.Rates)), nil
}
