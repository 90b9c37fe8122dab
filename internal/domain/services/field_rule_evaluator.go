package services

import (
	"github.com/capcheck-io/capcheck/internal/domain/entities"
	"github.com/capcheck-io/capcheck/internal/domain/validators"
	"github.com/capcheck-io/capcheck/internal/domain/values"
)

// FieldRuleEvaluator applies a capability's field rules to its
// configuration block and delegates to the capability's custom validator
// when one is named. The registry is injected at construction and must
// already contain every validator the rule set references.
type FieldRuleEvaluator struct {
	registry *validators.Registry
}

// NewFieldRuleEvaluator creates a field rule evaluator backed by the given
// validator registry.
func NewFieldRuleEvaluator(registry *validators.Registry) *FieldRuleEvaluator {
	return &FieldRuleEvaluator{registry: registry}
}

// Evaluate checks block against the capability's rule. The custom
// validator, when named, runs before the declared field rules; both must
// pass, so the order only decides which violation surfaces first. block
// may be nil when the request carried no configuration for the capability.
//
// Evaluation is blind to the capability type beyond error messages: rules
// run purely against the block they are handed.
func (e *FieldRuleEvaluator) Evaluate(capabilityType string, block map[string]any, rule *entities.CapabilityRule) error {
	if rule.CustomValidator != "" {
		validator, err := e.registry.Resolve(rule.CustomValidator)
		if err != nil {
			// Rule sets are cross-checked against the registry at load
			// time, so an unresolved name here is a wiring bug.
			return err
		}
		if err := validator.Validate(capabilityType, block); err != nil {
			return err
		}
	}

	for _, fr := range rule.FieldRules {
		if fr.Unconditional() {
			if err := requireNonBlank(capabilityType, block, fr.RequiredFields, ""); err != nil {
				return err
			}
			continue
		}

		if values.Equal(block[fr.ConditionField], fr.ExpectedValue) {
			if err := requireNonBlank(capabilityType, block, fr.RequiredFields, fr.ConditionField); err != nil {
				return err
			}
		}
	}

	return nil
}

// requireNonBlank checks each named field for a present, non-blank value.
func requireNonBlank(capabilityType string, block map[string]any, fields []string, conditionField string) error {
	for _, field := range fields {
		if !values.NonBlank(block[field]) {
			return &MissingFieldError{
				Capability:     capabilityType,
				Field:          field,
				ConditionField: conditionField,
			}
		}
	}
	return nil
}
