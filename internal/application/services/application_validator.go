// Package services contains application services orchestrating the domain
// layer for inbound requests.
package services

import (
	"log/slog"

	"github.com/capcheck-io/capcheck/internal/application/dto"
	"github.com/capcheck-io/capcheck/internal/domain/entities"
	domainservices "github.com/capcheck-io/capcheck/internal/domain/services"
	"github.com/capcheck-io/capcheck/internal/domain/validators"
	"github.com/capcheck-io/capcheck/internal/domain/values"
)

// ApplicationValidator validates submitted applications against the
// configured rule set in two phases: dependency resolution first, field
// rules second. The rule set and validator registry are fixed at
// construction and shared read-only, so one instance serves concurrent
// requests without locking.
type ApplicationValidator struct {
	rules     *entities.RuleSet
	resolver  *domainservices.DependencyResolver
	evaluator *domainservices.FieldRuleEvaluator
}

// NewApplicationValidator creates a validator over an immutable rule set
// and a populated validator registry.
func NewApplicationValidator(rules *entities.RuleSet, registry *validators.Registry) *ApplicationValidator {
	return &ApplicationValidator{
		rules:     rules,
		resolver:  domainservices.NewDependencyResolver(),
		evaluator: domainservices.NewFieldRuleEvaluator(registry),
	}
}

// Validate checks one application request and returns nil on acceptance or
// the first violation found. It is pure computation over the request and
// the shared rule set: no I/O, no retained state, same outcome for the
// same input.
func (v *ApplicationValidator) Validate(req *dto.ApplicationRequest) error {
	if req == nil || len(req.Capabilities) == 0 {
		return &domainservices.NoCapabilitiesError{}
	}

	// Duplicates collapse; first-seen order drives evaluation and error
	// reporting.
	selected := dedupe(req.Capabilities)

	if err := v.resolver.Resolve(selected, req.ConfigData, v.rules); err != nil {
		return err
	}

	for _, capType := range selected {
		rule := v.rules.Lookup(capType)

		raw, present := blockValue(req.ConfigData, capType)
		if !present {
			// A capability with field rules must carry configuration.
			// Without field rules the capability may still name a custom
			// validator, which receives a nil block.
			if rule.HasFieldRules() {
				return &domainservices.MissingConfigError{Type: capType}
			}
			if rule.CustomValidator == "" {
				continue
			}
			if err := v.evaluator.Evaluate(capType, nil, rule); err != nil {
				return err
			}
			continue
		}

		block, ok := values.AsMap(raw)
		if !ok {
			return &domainservices.MalformedConfigError{Type: capType}
		}

		if err := v.evaluator.Evaluate(capType, block, rule); err != nil {
			return err
		}
	}

	slog.Debug("application accepted",
		"system", req.SystemCode,
		"capabilities", selected)
	return nil
}

// dedupe collapses duplicate capability selections preserving first-seen
// order.
func dedupe(capabilities []string) []string {
	seen := make(map[string]bool, len(capabilities))
	out := make([]string, 0, len(capabilities))
	for _, capType := range capabilities {
		if seen[capType] {
			continue
		}
		seen[capType] = true
		out = append(out, capType)
	}
	return out
}

// blockValue looks up a capability's raw configuration value. A nil value
// counts as absent, matching the loose JSON inputs this service accepts.
func blockValue(configData map[string]any, capType string) (any, bool) {
	if configData == nil {
		return nil, false
	}
	raw, ok := configData[capType]
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}
