package payroll

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigSeed_BundledFileMatchesDefaults(t *testing.T) {
	data, err := os.ReadFile("../../../assets/payroll_config.yaml")
	require.NoError(t, err)

	entries, err := ParseConfigSeed(data)
	require.NoError(t, err)
	assert.Len(t, entries, len(ConfigKeys()))

	resolved := ResolveRates(entries, date("2025-06-15"))
	assert.Empty(t, resolved.Warnings)
	assert.Empty(t, DefaultedKeys(resolved))

	defaults := DefaultRates()
	assert.Equal(t, defaults.StandardDailyHours, resolved.Rates.StandardDailyHours)
	assertMoney(t, defaults.OvertimeMultiplier.String(), resolved.Rates.OvertimeMultiplier)
	require.Len(t, resolved.Rates.SocialInsurance.Brackets, len(defaults.SocialInsurance.Brackets))
	assertMoney(t, "1750", resolved.Rates.SocialInsurance.Brackets[60].Employee)
	require.Len(t, resolved.Rates.IncomeTax, 6)
	assertMoney(t, "8541.80", resolved.Rates.IncomeTax[3].BaseTax)

	for _, e := range entries {
		assert.Nil(t, e.CompanyID)
		assert.True(t, e.IsActive)
		assert.Equal(t, "2025-01-01", e.EffectiveDate.Format("2006-01-02"))
	}
}

func TestParseConfigSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad date", "effective_date: 01/01/2025\nentries: []\n"},
		{"unknown key", "effective_date: \"2025-01-01\"\nentries:\n  - {key: bonus_rate, type: decimal, value: \"1\"}\n"},
		{"not a number", "effective_date: \"2025-01-01\"\nentries:\n  - {key: overtime_multiplier, type: decimal, value: abc}\n"},
		{"non-positive multiplier", "effective_date: \"2025-01-01\"\nentries:\n  - {key: overtime_multiplier, type: decimal, value: \"0\"}\n"},
		{"multiplier below one", "effective_date: \"2025-01-01\"\nentries:\n  - {key: dayoff_multiplier, type: decimal, value: \"0.8\"}\n"},
		{"scalar expected", "effective_date: \"2025-01-01\"\nentries:\n  - {key: overtime_multiplier, type: decimal, value: [1]}\n"},
		{"no builtin", "effective_date: \"2025-01-01\"\nentries:\n  - {key: overtime_multiplier, type: json, value: builtin}\n"},
		{"empty tax table", "effective_date: \"2025-01-01\"\nentries:\n  - {key: income_tax_table, type: json, value: []}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigSeed([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseConfigSeed_CompanyScope(t *testing.T) {
	doc := "company_id: 0197a0b2-0000-7000-8000-0000000000c1\neffective_date: \"2025-07-01\"\nentries:\n  - {key: overtime_multiplier, type: decimal, value: \"1.50\", description: CBA rate}\n"

	entries, err := ParseConfigSeed([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].CompanyID)
	assert.Equal(t, "0197a0b2-0000-7000-8000-0000000000c1", *entries[0].CompanyID)
	require.NotNil(t, entries[0].Description)
	assert.Equal(t, "CBA rate", *entries[0].Description)
	assert.Equal(t, "1.50", entries[0].Value)
}

type failingUpsertRepo struct {
	stubConfigRepo
	failAt int
	calls  int
}

func (f *failingUpsertRepo) Upsert(ctx context.Context, e payroll.ConfigEntry) (payroll.ConfigEntry, error) {
	f.calls++
	if f.calls == f.failAt {
		return payroll.ConfigEntry{}, errors.New("constraint violated")
	}
	return f.stubConfigRepo.Upsert(ctx, e)
}

func TestSeedConfig(t *testing.T) {
	entries := []payroll.ConfigEntry{
		entry(KeyOvertimeMultiplier, "1.25", payroll.DataTypeDecimal, "2025-01-01"),
		entry(KeyDayOffMultiplier, "1.30", payroll.DataTypeDecimal, "2025-01-01"),
	}

	repo := &stubConfigRepo{}
	n, err := SeedConfig(context.Background(), repo, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, repo.entries, 2)

	failing := &failingUpsertRepo{failAt: 2}
	n, err = SeedConfig(context.Background(), failing, entries)
	assert.ErrorContains(t, err, "constraint violated")
	assert.Equal(t, 1, n)
}
