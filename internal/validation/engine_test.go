package validation

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confaudit/confaudit/pkg/models"
)

func floatPtr(f float64) *float64 {
	return &f
}

func buildRecordSet(sourceID string, columns []string, rows ...map[string]models.Value) *models.RecordSet {
	rs := &models.RecordSet{SourceID: sourceID, Columns: columns}
	for i, row := range rows {
		record := models.NewRecord(sourceID, i)
		for _, col := range columns {
			if v, ok := row[col]; ok {
				record.Set(col, v)
			} else {
				record.Set(col, models.NullValue())
			}
		}
		rs.Records = append(rs.Records, record)
	}
	return rs
}

func TestValidateTypeMismatch(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"name", "max_connections"},
		map[string]models.Value{
			"name":            models.StringValue("db"),
			"max_connections": models.StringValue("thirty-two"),
		},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"max_connections": {Type: models.FieldTypeInteger},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, models.KindTypeMismatch, v.Kind)
	assert.Equal(t, models.SeverityHigh, v.Severity)
	assert.Equal(t, "settings.csv", v.SourceID)
	assert.Equal(t, "max_connections", v.FieldName)
	require.NotNil(t, v.RowIndex)
	assert.Equal(t, 0, *v.RowIndex)
	assert.Equal(t, "integer", v.ExpectedConstraint)
}

func TestValidateOutOfRange(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("config.yaml", []string{"timeout"},
		map[string]models.Value{"timeout": models.FloatValue(6.5)},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"timeout": {Type: models.FieldTypeFloat, Min: floatPtr(1), Max: floatPtr(5)},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, models.KindOutOfRange, v.Kind)
	assert.Equal(t, models.SeverityHigh, v.Severity)
	assert.Equal(t, "1..5", v.ExpectedConstraint)
	assert.Equal(t, models.FloatValue(6.5), v.ObservedValue)
}

func TestValidateOneSidedRange(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("config.yaml", []string{"retries"},
		map[string]models.Value{"retries": models.IntegerValue(-1)},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"retries": {Type: models.FieldTypeInteger, Min: floatPtr(0)},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	assert.Equal(t, models.KindOutOfRange, violations[0].Kind)
	assert.Equal(t, ">= 0", violations[0].ExpectedConstraint)
}

func TestValidateMissingRequired(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"name", "host"},
		map[string]models.Value{"name": models.StringValue("db")},
		map[string]models.Value{"name": models.StringValue("cache"), "host": models.StringValue("10.0.0.2")},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"host": {Required: true, Type: models.FieldTypeString},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, models.KindMissingRequired, v.Kind)
	assert.Equal(t, models.SeverityCritical, v.Severity)
	require.NotNil(t, v.RowIndex)
	assert.Equal(t, 0, *v.RowIndex)
}

func TestValidateOptionalNullSkipsAllChecks(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"port"},
		map[string]models.Value{"port": models.NullValue()},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"port": {Type: models.FieldTypeInteger, Min: floatPtr(1), Max: floatPtr(65535)},
		},
	}

	assert.Empty(t, engine.Validate(rs, rules))
}

func TestValidateLenientCoercion(t *testing.T) {
	engine := NewEngine(&EngineConfig{StrictTypeCoercion: false}, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"port", "enabled"},
		map[string]models.Value{
			"port":    models.StringValue("25"),
			"enabled": models.StringValue("true"),
		},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"port":    {Type: models.FieldTypeInteger, Min: floatPtr(1), Max: floatPtr(100)},
			"enabled": {Type: models.FieldTypeBoolean},
		},
	}

	assert.Empty(t, engine.Validate(rs, rules))
}

func TestValidateStrictCoercion(t *testing.T) {
	engine := NewEngine(&EngineConfig{StrictTypeCoercion: true}, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"port"},
		map[string]models.Value{"port": models.StringValue("25")},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"port": {Type: models.FieldTypeInteger},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	assert.Equal(t, models.KindTypeMismatch, violations[0].Kind)
}

func TestValidateStrictAllowsIntegerWidening(t *testing.T) {
	engine := NewEngine(&EngineConfig{StrictTypeCoercion: true}, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"ratio"},
		map[string]models.Value{"ratio": models.IntegerValue(2)},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"ratio": {Type: models.FieldTypeFloat, Min: floatPtr(0), Max: floatPtr(10)},
		},
	}

	assert.Empty(t, engine.Validate(rs, rules))
}

func TestValidateInvalidEnum(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"env"},
		map[string]models.Value{"env": models.StringValue("staging")},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"env": {Type: models.FieldTypeString, AllowedValues: []string{"production", "development"}},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, models.KindInvalidEnum, v.Kind)
	assert.Equal(t, models.SeverityMedium, v.Severity)
	assert.Equal(t, "production|development", v.ExpectedConstraint)
}

func TestValidateFormatViolation(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"version"},
		map[string]models.Value{"version": models.StringValue("v1..2")},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"version": {Type: models.FieldTypeString, Pattern: `^v\d+\.\d+$`},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	assert.Equal(t, models.KindFormatViolation, violations[0].Kind)
	assert.Equal(t, models.SeverityMedium, violations[0].Severity)
}

func TestValidateIndependentChecksOnSameField(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	// A value can violate both the enum and the pattern at once; each
	// check reports independently.
	rs := buildRecordSet("settings.csv", []string{"level"},
		map[string]models.Value{"level": models.StringValue("LOUD!")},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"level": {
				Type:          models.FieldTypeString,
				AllowedValues: []string{"debug", "info", "warn"},
				Pattern:       `^[a-z]+$`,
			},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 2)
	assert.Equal(t, models.KindInvalidEnum, violations[0].Kind)
	assert.Equal(t, models.KindFormatViolation, violations[1].Kind)
}

func TestValidateDeterministicOrder(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"zeta", "alpha"},
		map[string]models.Value{
			"zeta":  models.StringValue("bad"),
			"alpha": models.StringValue("also-bad"),
		},
		map[string]models.Value{
			"zeta":  models.StringValue("bad"),
			"alpha": models.StringValue("also-bad"),
		},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"zeta":  {Type: models.FieldTypeInteger},
			"alpha": {Type: models.FieldTypeFloat},
		},
	}

	violations := engine.Validate(rs, rules)

	// Row order first, then sorted field order within a row.
	require.Len(t, violations, 4)
	assert.Equal(t, "alpha", violations[0].FieldName)
	assert.Equal(t, 0, *violations[0].RowIndex)
	assert.Equal(t, "zeta", violations[1].FieldName)
	assert.Equal(t, 0, *violations[1].RowIndex)
	assert.Equal(t, "alpha", violations[2].FieldName)
	assert.Equal(t, 1, *violations[2].RowIndex)
	assert.Equal(t, "zeta", violations[3].FieldName)
	assert.Equal(t, 1, *violations[3].RowIndex)
}

func TestValidateUnruledFieldsIgnored(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"free_text"},
		map[string]models.Value{"free_text": models.StringValue("anything goes")},
	)

	assert.Empty(t, engine.Validate(rs, &models.RuleSet{FieldRules: map[string]models.FieldRule{}}))
	assert.Empty(t, engine.Validate(rs, nil))
	assert.Empty(t, engine.Validate(nil, &models.RuleSet{}))
}

func TestCoerceLenientFloatString(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"timeout"},
		map[string]models.Value{"timeout": models.StringValue("4.5")},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"timeout": {Type: models.FieldTypeFloat, Min: floatPtr(1), Max: floatPtr(5)},
		},
	}

	assert.Empty(t, engine.Validate(rs, rules))
}

func TestCoerceLenientRejectsFractionalInteger(t *testing.T) {
	engine := NewEngine(nil, logrus.New())

	rs := buildRecordSet("settings.csv", []string{"count"},
		map[string]models.Value{"count": models.FloatValue(2.5)},
	)
	rules := &models.RuleSet{
		FieldRules: map[string]models.FieldRule{
			"count": {Type: models.FieldTypeInteger},
		},
	}

	violations := engine.Validate(rs, rules)

	require.Len(t, violations, 1)
	assert.Equal(t, models.KindTypeMismatch, violations[0].Kind)
}
