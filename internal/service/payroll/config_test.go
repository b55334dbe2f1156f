package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(key, value string, dt payroll.DataType, effective string) payroll.ConfigEntry {
	return payroll.ConfigEntry{
		Key:           key,
		Value:         value,
		DataType:      dt,
		EffectiveDate: date(effective),
		IsActive:      true,
		CreatedAt:     date(effective),
	}
}

func forCompany(e payroll.ConfigEntry, companyID string) payroll.ConfigEntry {
	e.CompanyID = &companyID
	return e
}

func TestResolveRates_DefaultsWhenEmpty(t *testing.T) {
	cfg := ResolveRates(nil, date("2025-06-30"))

	assert.Equal(t, DefaultRates(), cfg.Rates)
	assert.Len(t, cfg.Sources, len(ConfigKeys()))
	for _, src := range cfg.Sources {
		assert.Equal(t, payroll.SourceDefault, src)
	}
	assert.Len(t, cfg.Warnings, len(ConfigKeys()))
	assert.Equal(t, len(ConfigKeys()), len(DefaultedKeys(cfg)))
}

func TestResolveRates_LatestEffectiveOnOrBeforeAsOf(t *testing.T) {
	entries := []payroll.ConfigEntry{
		entry(KeyOvertimeMultiplier, "1.30", payroll.DataTypeDecimal, "2024-01-01"),
		entry(KeyOvertimeMultiplier, "1.40", payroll.DataTypeDecimal, "2025-06-30"),
		entry(KeyOvertimeMultiplier, "1.50", payroll.DataTypeDecimal, "2025-07-01"),
	}

	cfg := ResolveRates(entries, date("2025-06-30"))
	assertMoney(t, "1.40", cfg.Rates.OvertimeMultiplier)
	assert.Equal(t, payroll.SourceDatabase, cfg.Sources[KeyOvertimeMultiplier])

	cfg = ResolveRates(entries, date("2025-06-29"))
	assertMoney(t, "1.30", cfg.Rates.OvertimeMultiplier)

	cfg = ResolveRates(entries, date("2023-12-31"))
	assertMoney(t, "1.25", cfg.Rates.OvertimeMultiplier)
	assert.Equal(t, payroll.SourceDefault, cfg.Sources[KeyOvertimeMultiplier])
}

func TestResolveRates_CompanyBeatsGlobal(t *testing.T) {
	entries := []payroll.ConfigEntry{
		entry(KeyDayOffMultiplier, "1.50", payroll.DataTypeDecimal, "2025-05-01"),
		forCompany(entry(KeyDayOffMultiplier, "1.35", payroll.DataTypeDecimal, "2024-01-01"), "c1"),
	}

	cfg := ResolveRates(entries, date("2025-06-30"))
	assertMoney(t, "1.35", cfg.Rates.RestDayMultiplier)
}

func TestResolveRates_TieBrokenByCreatedAt(t *testing.T) {
	older := entry(KeyNightDifferentialRate, "0.15", payroll.DataTypeDecimal, "2025-01-01")
	newer := entry(KeyNightDifferentialRate, "0.12", payroll.DataTypeDecimal, "2025-01-01")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	cfg := ResolveRates([]payroll.ConfigEntry{newer, older}, date("2025-06-30"))
	assertMoney(t, "0.12", cfg.Rates.NightDifferentialRate)
}

func TestResolveRates_IgnoresInactive(t *testing.T) {
	e := entry(KeyStandardDailyHours, "10", payroll.DataTypeInteger, "2025-01-01")
	e.IsActive = false

	cfg := ResolveRates([]payroll.ConfigEntry{e}, date("2025-06-30"))
	assert.Equal(t, 8.0, cfg.Rates.StandardDailyHours)
}

func TestResolveRates_InvalidValuesFallBack(t *testing.T) {
	entries := []payroll.ConfigEntry{
		entry(KeyOvertimeMultiplier, "abc", payroll.DataTypeDecimal, "2025-01-01"),
		entry(KeyStandardDailyHours, "0", payroll.DataTypeInteger, "2025-01-01"),
		entry(KeyIncomeTaxTable, "[]", payroll.DataTypeJSON, "2025-01-01"),
		entry(KeySocialInsuranceTable, "{not json", payroll.DataTypeJSON, "2025-01-01"),
		entry(KeyMonthlyWorkingDays, "26", payroll.DataTypeInteger, "2025-01-01"),
	}

	cfg := ResolveRates(entries, date("2025-06-30"))

	assertMoney(t, "1.25", cfg.Rates.OvertimeMultiplier)
	assert.Equal(t, 8.0, cfg.Rates.StandardDailyHours)
	assert.Equal(t, DefaultIncomeTaxBrackets(), cfg.Rates.IncomeTax)
	assert.Equal(t, DefaultSocialInsuranceBrackets(), cfg.Rates.SocialInsurance.Brackets)
	assert.Equal(t, 26.0, cfg.Rates.MonthlyWorkingDays)

	defaulted := DefaultedKeys(cfg)
	assert.Contains(t, defaulted, KeyOvertimeMultiplier)
	assert.Contains(t, defaulted, KeyStandardDailyHours)
	assert.NotContains(t, defaulted, KeyMonthlyWorkingDays)

	var found bool
	for _, w := range cfg.Warnings {
		if w == KeyOvertimeMultiplier+": invalid payroll config value: \"abc\" is not a decimal, using default" {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", cfg.Warnings)
}

func TestResolveRates_MultipliersBelowOneFallBack(t *testing.T) {
	entries := []payroll.ConfigEntry{
		entry(KeyOvertimeMultiplier, "0.5", payroll.DataTypeDecimal, "2025-01-01"),
		entry(KeyDayOffMultiplier, "0.99", payroll.DataTypeDecimal, "2025-01-01"),
		entry(KeyRegularHolidayMultiplier, "1", payroll.DataTypeDecimal, "2025-01-01"),
		entry(KeySpecialHolidayMultiplier, "1.5", payroll.DataTypeDecimal, "2025-01-01"),
	}

	cfg := ResolveRates(entries, date("2025-06-30"))

	assertMoney(t, "1.25", cfg.Rates.OvertimeMultiplier)
	assertMoney(t, "1.30", cfg.Rates.RestDayMultiplier)
	assertMoney(t, "1", cfg.Rates.RegularHolidayMultiplier)
	assertMoney(t, "1.5", cfg.Rates.SpecialHolidayMultiplier)

	defaulted := DefaultedKeys(cfg)
	assert.Contains(t, defaulted, KeyOvertimeMultiplier)
	assert.Contains(t, defaulted, KeyDayOffMultiplier)
	assert.NotContains(t, defaulted, KeyRegularHolidayMultiplier)
	assert.NotContains(t, defaulted, KeySpecialHolidayMultiplier)
	assert.Contains(t, cfg.Warnings, KeyDayOffMultiplier+": invalid payroll config value: multiplier must be at least 1, using default")
}

func TestResolveRates_JSONTables(t *testing.T) {
	entries := []payroll.ConfigEntry{
		entry(KeySocialInsuranceTable, `[{"min":"1000","employee":"50","employer":"100"},{"min":"0","employee":"25","employer":"50"}]`, payroll.DataTypeJSON, "2025-01-01"),
		entry(KeyIncomeTaxTable, `[{"floor":"0","base_tax":"0","rate":"0"},{"floor":"10000","base_tax":"0","rate":"0.10"}]`, payroll.DataTypeJSON, "2025-01-01"),
	}

	cfg := ResolveRates(entries, date("2025-06-30"))

	require.Len(t, cfg.Rates.SocialInsurance.Brackets, 2)
	assertMoney(t, "0", cfg.Rates.SocialInsurance.Brackets[0].MinSalary)

	ee, er := SocialInsurance(money("1500"), cfg.Rates.SocialInsurance)
	assertMoney(t, "50", ee)
	assertMoney(t, "100", er)
	assertMoney(t, "500", IncomeTax(money("15000"), cfg.Rates.IncomeTax))
}

type stubConfigRepo struct {
	entries []payroll.ConfigEntry
	err     error
}

func (s *stubConfigRepo) GetActive(ctx context.Context, companyID string) ([]payroll.ConfigEntry, error) {
	return s.entries, s.err
}

func (s *stubConfigRepo) Upsert(ctx context.Context, e payroll.ConfigEntry) (payroll.ConfigEntry, error) {
	s.entries = append(s.entries, e)
	return e, nil
}

func TestConfigService_GetConfig(t *testing.T) {
	repo := &stubConfigRepo{entries: []payroll.ConfigEntry{
		entry(KeyOvertimeMultiplier, "1.40", payroll.DataTypeDecimal, "2025-01-01"),
	}}
	svc := &ConfigServiceImpl{ConfigRepository: repo, now: func() time.Time { return date("2025-06-15") }}

	resp, err := svc.GetConfig(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", resp.AsOf)
	assertMoney(t, "1.40", resp.Rates.OvertimeMultiplier)

	resp, err = svc.GetConfig(context.Background(), "c1", "2024-12-31")
	require.NoError(t, err)
	assertMoney(t, "1.25", resp.Rates.OvertimeMultiplier)
	assert.Equal(t, payroll.SourceDefault, resp.Sources[KeyOvertimeMultiplier])
}

func TestConfigService_GetConfig_InvalidDate(t *testing.T) {
	svc := NewConfigService(&stubConfigRepo{})

	_, err := svc.GetConfig(context.Background(), "c1", "15-06-2025")
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "date", verrs[0].Field)
}

func TestConfigService_Resolve_RepositoryError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewConfigService(&stubConfigRepo{err: boom})

	_, err := svc.Resolve(context.Background(), "c1", date("2025-06-15"))
	assert.ErrorIs(t, err, boom)
}

func TestClassifier_UsesResolvedStandardHours(t *testing.T) {
	repo := &stubConfigRepo{entries: []payroll.ConfigEntry{
		entry(KeyStandardDailyHours, "6", payroll.DataTypeInteger, "2025-01-01"),
	}}
	classifier := NewClassifier(NewConfigService(repo))

	in, out := at(11, 8, 0), at(11, 17, 0)
	sched := lunchSchedule()
	res := resolution(date("2025-06-11"), sched, dayOpts{})
	seg := attendancesvc.ComputeSegment(in, out, sched)

	b, err := classifier.Classify(context.Background(), "c1", payroll.ShiftInput{TimeIn: in, TimeOut: out, Segment: seg, Resolution: res})
	require.NoError(t, err)
	assert.Equal(t, 6.0, b.RegularHours)
	assert.Equal(t, 2.0, b.OvertimeHours())
}
