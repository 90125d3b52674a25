package validation

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

var validFieldTypes = map[models.FieldType]bool{
	models.FieldTypeString:  true,
	models.FieldTypeInteger: true,
	models.FieldTypeFloat:   true,
	models.FieldTypeBoolean: true,
}

// LoadRuleSet parses a YAML rule configuration and sanity-checks it. A rule
// set that fails here aborts the whole run before any source is read.
func LoadRuleSet(data []byte) (*models.RuleSet, error) {
	var ruleSet models.RuleSet
	if err := yaml.Unmarshal(data, &ruleSet); err != nil {
		return nil, errors.NewRuleConfigError(errors.CodeRuleConfigMalformed,
			fmt.Sprintf("cannot parse rule configuration: %v", err))
	}

	if err := ValidateRuleSet(&ruleSet); err != nil {
		return nil, err
	}

	return &ruleSet, nil
}

// ValidateRuleSet rejects self-contradictory rule sets: inverted numeric
// ranges, unknown expected types, uncompilable patterns, declared-but-empty
// enumerations, and aliases claimed by more than one canonical field.
func ValidateRuleSet(ruleSet *models.RuleSet) error {
	if ruleSet == nil {
		return errors.NewRuleConfigError(errors.CodeRuleConfigMalformed, "rule set is nil")
	}

	fields := make([]string, 0, len(ruleSet.FieldRules))
	for field := range ruleSet.FieldRules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		rule := ruleSet.FieldRules[field]

		if rule.Type != "" && !validFieldTypes[rule.Type] {
			return errors.NewRuleConfigError(errors.CodeRuleBadType,
				fmt.Sprintf("field %q: unknown expected type %q", field, rule.Type))
		}

		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			return errors.NewRuleConfigError(errors.CodeRuleRangeInverted,
				fmt.Sprintf("field %q: min %v greater than max %v", field, *rule.Min, *rule.Max))
		}

		if rule.Pattern != "" {
			if _, err := regexp.Compile(rule.Pattern); err != nil {
				return errors.NewRuleConfigError(errors.CodeRuleBadPattern,
					fmt.Sprintf("field %q: invalid pattern: %v", field, err))
			}
		}

		if rule.AllowedValues != nil && len(rule.AllowedValues) == 0 {
			return errors.NewRuleConfigError(errors.CodeRuleEmptyEnum,
				fmt.Sprintf("field %q: allowed_values declared but empty", field))
		}
	}

	return validateAliases(ruleSet.FieldAliases)
}

func validateAliases(aliases map[string][]string) error {
	canonicals := make([]string, 0, len(aliases))
	for canonical := range aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	claimed := make(map[string]string)
	for _, canonical := range canonicals {
		for _, alias := range aliases[canonical] {
			if owner, ok := claimed[alias]; ok && owner != canonical {
				return errors.NewRuleConfigError(errors.CodeRuleAliasConflict,
					fmt.Sprintf("alias %q claimed by both %q and %q", alias, owner, canonical))
			}
			claimed[alias] = canonical
		}
		if owner, ok := claimed[canonical]; ok && owner != canonical {
			return errors.NewRuleConfigError(errors.CodeRuleAliasConflict,
				fmt.Sprintf("canonical field %q is also an alias of %q", canonical, owner))
		}
	}

	return nil
}
