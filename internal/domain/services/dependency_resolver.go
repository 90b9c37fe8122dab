// Package services contains the domain services for capability validation:
// the dependency resolver and the field rule evaluator, together with the
// error taxonomy both report.
package services

import (
	"github.com/capcheck-io/capcheck/internal/domain/entities"
	"github.com/capcheck-io/capcheck/internal/domain/values"
)

// DependencyResolver computes the closure of capabilities required by a
// selection and checks it against what was actually selected. It is
// stateless and safe for concurrent use.
type DependencyResolver struct{}

// NewDependencyResolver creates a new dependency resolver service.
func NewDependencyResolver() *DependencyResolver {
	return &DependencyResolver{}
}

// Resolve validates the structural consistency of a capability selection.
//
// Algorithm:
//  1. Every selected type must have a rule (UnknownCapabilityError).
//  2. Union the static dependencies of all selected rules.
//  3. For each selected rule's conditional dependencies, compare the
//     owning capability's own configuration value at the condition field
//     against the expected value; on a structural match, union the
//     triggered requirements.
//  4. A required capability absent from the selection fails with
//     MissingDependencyError.
//
// Iteration follows selection order, then declaration order within each
// rule, so the first violation reported is deterministic for a given
// input. Requirement targets are enforced as given: a target naming no
// known rule still fails when unselected (the loader warns about such
// targets at startup).
func (r *DependencyResolver) Resolve(selected []string, configData map[string]any, rules *entities.RuleSet) error {
	for _, capType := range selected {
		if rules.Lookup(capType) == nil {
			return &UnknownCapabilityError{Type: capType}
		}
	}

	selectedSet := make(map[string]bool, len(selected))
	for _, capType := range selected {
		selectedSet[capType] = true
	}

	// required preserves first-trigger order for deterministic reporting.
	requiredSet := make(map[string]bool)
	var required []string
	requireCap := func(capType string) {
		if !requiredSet[capType] {
			requiredSet[capType] = true
			required = append(required, capType)
		}
	}

	for _, capType := range selected {
		rule := rules.Lookup(capType)

		for _, dep := range rule.Dependencies {
			requireCap(dep)
		}

		if len(rule.ConditionalDependencies) == 0 {
			continue
		}

		capConfig := ownConfigBlock(configData, capType)
		for _, cond := range rule.ConditionalDependencies {
			if values.Equal(capConfig[cond.ConditionField], cond.ExpectedValue) {
				for _, dep := range cond.RequiredCapabilities {
					requireCap(dep)
				}
			}
		}
	}

	for _, capType := range required {
		if !selectedSet[capType] {
			return &MissingDependencyError{Required: capType, Selected: selected}
		}
	}

	return nil
}

// ownConfigBlock fetches a capability's own configuration block, defaulting
// to an empty map when absent or not map-shaped. Shape errors are reported
// by the field-rule phase; conditional dependencies simply fail to trigger.
func ownConfigBlock(configData map[string]any, capType string) map[string]any {
	if configData == nil {
		return nil
	}
	block, _ := values.AsMap(configData[capType])
	return block
}
