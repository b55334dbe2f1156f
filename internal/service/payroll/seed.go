package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"gopkg.in/yaml.v3"
)

// builtinTable marks a json entry whose value is the engine's default table.
const builtinTable = "builtin"

// ConfigSeed is the YAML document loaded by cmd/seed.
type ConfigSeed struct {
	CompanyID     *string           `yaml:"company_id"`
	EffectiveDate string            `yaml:"effective_date"`
	Entries       []ConfigSeedEntry `yaml:"entries"`
}

type ConfigSeedEntry struct {
	Key         string    `yaml:"key"`
	Type        string    `yaml:"type"`
	Value       yaml.Node `yaml:"value"`
	Description string    `yaml:"description"`
}

// ParseConfigSeed turns a seed document into store rows. Scalar values are
// kept verbatim; structured values of json entries are re-encoded as JSON.
func ParseConfigSeed(data []byte) ([]payroll.ConfigEntry, error) {
	var seed ConfigSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse config seed: %w", err)
	}

	effective, err := time.Parse("2006-01-02", seed.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid effective_date %q: %w", seed.EffectiveDate, err)
	}

	known := make(map[string]bool, len(configFields))
	for _, k := range ConfigKeys() {
		known[k] = true
	}

	entries := make([]payroll.ConfigEntry, 0, len(seed.Entries))
	for _, se := range seed.Entries {
		if !known[se.Key] {
			return nil, fmt.Errorf("unknown config key %q", se.Key)
		}
		dataType := payroll.DataType(se.Type)
		value, err := seedValue(se, dataType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", se.Key, err)
		}

		entry := payroll.ConfigEntry{
			CompanyID:     seed.CompanyID,
			Key:           se.Key,
			Value:         value,
			DataType:      dataType,
			EffectiveDate: effective,
			IsActive:      true,
		}
		if se.Description != "" {
			desc := se.Description
			entry.Description = &desc
		}

		// Reject values the resolver would fall back on.
		scratch := DefaultRates()
		for _, f := range configFields {
			if f.key == se.Key {
				if err := f.apply(&scratch, entry); err != nil {
					return nil, fmt.Errorf("%s: %w", se.Key, err)
				}
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func seedValue(se ConfigSeedEntry, dataType payroll.DataType) (string, error) {
	switch dataType {
	case payroll.DataTypeInteger, payroll.DataTypeDecimal, payroll.DataTypeBoolean, payroll.DataTypeString:
		if se.Value.Kind != yaml.ScalarNode {
			return "", fmt.Errorf("%w: %s value must be a scalar", payroll.ErrInvalidConfigValue, dataType)
		}
		return se.Value.Value, nil
	case payroll.DataTypeJSON:
		if se.Value.Kind == yaml.ScalarNode && se.Value.Value == builtinTable {
			return builtinTableJSON(se.Key)
		}
		var v interface{}
		if err := se.Value.Decode(&v); err != nil {
			return "", fmt.Errorf("%w: %v", payroll.ErrInvalidConfigValue, err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", payroll.ErrInvalidConfigValue, err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: unknown data type %q", payroll.ErrInvalidConfigValue, dataType)
	}
}

func builtinTableJSON(key string) (string, error) {
	var v interface{}
	switch key {
	case KeySocialInsuranceTable:
		v = DefaultSocialInsuranceBrackets()
	case KeyIncomeTaxTable:
		v = DefaultIncomeTaxBrackets()
	default:
		return "", fmt.Errorf("%w: no builtin table for %s", payroll.ErrInvalidConfigValue, key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SeedConfig upserts every entry; rerunning with the same document is a no-op.
func SeedConfig(ctx context.Context, repo payroll.ConfigRepository, entries []payroll.ConfigEntry) (int, error) {
	for i, e := range entries {
		if _, err := repo.Upsert(ctx, e); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
