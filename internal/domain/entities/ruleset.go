// Package entities contains the domain model for capability validation rules.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"fmt"
)

// CapabilityRule describes the validation rules for one capability type.
// Rules are value objects: built once at startup and never mutated afterwards.
//
// Invariants Enforced (via RuleSet.Validate):
// - Type is required and unique within a RuleSet
// - Dependency and required-capability entries are non-empty strings
// - Field rules list non-empty required-field names
type CapabilityRule struct {
	Type                    string                  `yaml:"type" json:"type"`
	Dependencies            []string                `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	ConditionalDependencies []ConditionalDependency `yaml:"conditionalDependencies,omitempty" json:"conditionalDependencies,omitempty"`
	FieldRules              []FieldRule             `yaml:"fieldRules,omitempty" json:"fieldRules,omitempty"`
	CustomValidator         string                  `yaml:"customValidator,omitempty" json:"customValidator,omitempty"`
}

// ConditionalDependency declares capabilities that become required when the
// owning capability's configuration block holds an expected value.
//
// Semantics: if the owning capability is selected AND its block's value at
// ConditionField structurally equals ExpectedValue, every capability in
// RequiredCapabilities must also be selected.
type ConditionalDependency struct {
	ConditionField       string   `yaml:"conditionField" json:"conditionField"`
	ExpectedValue        any      `yaml:"expectedValue" json:"expectedValue"`
	RequiredCapabilities []string `yaml:"requiredCapabilities" json:"requiredCapabilities"`
}

// FieldRule declares required configuration fields, optionally gated by
// another field's value. An empty ConditionField means unconditional.
type FieldRule struct {
	ConditionField string   `yaml:"conditionField,omitempty" json:"conditionField,omitempty"`
	ExpectedValue  any      `yaml:"expectedValue,omitempty" json:"expectedValue,omitempty"`
	RequiredFields []string `yaml:"requiredFields" json:"requiredFields"`
}

// Unconditional reports whether this rule applies regardless of other fields.
func (r FieldRule) Unconditional() bool {
	return r.ConditionField == ""
}

// HasFieldRules reports whether the capability declares any field rules.
// A capability with field rules requires a configuration block to be present.
func (c *CapabilityRule) HasFieldRules() bool {
	return len(c.FieldRules) > 0
}

// RuleSet is the aggregate of all capability rules loaded at startup.
// It preserves declaration order for deterministic evaluation and offers
// lookup by capability type. Read-only after construction, safe for
// concurrent use.
type RuleSet struct {
	rules  []CapabilityRule
	byType map[string]*CapabilityRule
}

// NewRuleSet builds a RuleSet from a list of capability rules.
// It fails on duplicate or empty capability types.
func NewRuleSet(rules []CapabilityRule) (*RuleSet, error) {
	rs := &RuleSet{
		rules:  rules,
		byType: make(map[string]*CapabilityRule, len(rules)),
	}

	for i := range rs.rules {
		rule := &rs.rules[i]
		if rule.Type == "" {
			return nil, fmt.Errorf("capability rule %d: type cannot be empty", i)
		}
		if _, exists := rs.byType[rule.Type]; exists {
			return nil, fmt.Errorf("duplicate capability type: %s", rule.Type)
		}
		rs.byType[rule.Type] = rule
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	return rs, nil
}

// Lookup returns the rule for a capability type, or nil when unknown.
func (s *RuleSet) Lookup(capType string) *CapabilityRule {
	return s.byType[capType]
}

// Types returns all known capability types in declaration order.
func (s *RuleSet) Types() []string {
	types := make([]string, 0, len(s.rules))
	for i := range s.rules {
		types = append(types, s.rules[i].Type)
	}
	return types
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// ValidatorNames returns the distinct custom-validator names referenced by
// any rule, in declaration order. Used at startup to fail fast on names
// missing from the validator registry.
func (s *RuleSet) ValidatorNames() []string {
	seen := make(map[string]bool)
	var names []string
	for i := range s.rules {
		name := s.rules[i].CustomValidator
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// UnknownDependencyTargets returns dependency and conditional-dependency
// targets that name no known capability type, in declaration order.
// Such targets are still enforced at request time (a required-but-unselected
// target fails validation); this accessor exists so the loader can surface
// likely misspellings at startup without changing request semantics.
func (s *RuleSet) UnknownDependencyTargets() []string {
	seen := make(map[string]bool)
	var unknown []string

	note := func(target string) {
		if target == "" || seen[target] {
			return
		}
		seen[target] = true
		if _, ok := s.byType[target]; !ok {
			unknown = append(unknown, target)
		}
	}

	for i := range s.rules {
		for _, dep := range s.rules[i].Dependencies {
			note(dep)
		}
		for _, cond := range s.rules[i].ConditionalDependencies {
			for _, dep := range cond.RequiredCapabilities {
				note(dep)
			}
		}
	}
	return unknown
}

// Validate enforces aggregate invariants beyond type uniqueness:
// dependency entries and required-field names must be non-empty.
func (s *RuleSet) Validate() error {
	for i := range s.rules {
		rule := &s.rules[i]

		for j, dep := range rule.Dependencies {
			if dep == "" {
				return fmt.Errorf("capability %s: dependency %d is empty", rule.Type, j)
			}
		}

		for j, cond := range rule.ConditionalDependencies {
			if cond.ConditionField == "" {
				return fmt.Errorf("capability %s: conditional dependency %d has no condition field", rule.Type, j)
			}
			if len(cond.RequiredCapabilities) == 0 {
				return fmt.Errorf("capability %s: conditional dependency %d requires no capabilities", rule.Type, j)
			}
			for k, dep := range cond.RequiredCapabilities {
				if dep == "" {
					return fmt.Errorf("capability %s: conditional dependency %d: required capability %d is empty", rule.Type, j, k)
				}
			}
		}

		for j, fr := range rule.FieldRules {
			if len(fr.RequiredFields) == 0 {
				return fmt.Errorf("capability %s: field rule %d lists no required fields", rule.Type, j)
			}
			for k, field := range fr.RequiredFields {
				if field == "" {
					return fmt.Errorf("capability %s: field rule %d: required field %d is empty", rule.Type, j, k)
				}
			}
		}
	}
	return nil
}
