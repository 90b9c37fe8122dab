// Package validators defines the pluggable custom-validator contract and
// the registry that maps configured validator names to implementations.
package validators

import (
	"fmt"
	"sort"
)

// FieldValidator imposes capability-specific structural rules beyond the
// generic field-rule language (list-of-objects validation, formats, numeric
// ranges, uniqueness constraints).
//
// Implementations must be nil-safe: config may be nil when the request
// carried no configuration block for the capability. A returned error is a
// validation failure attributable to the request, never a system fault.
type FieldValidator interface {
	Validate(capabilityType string, config map[string]any) error
}

// FieldValidatorFunc adapts a function to the FieldValidator interface.
type FieldValidatorFunc func(capabilityType string, config map[string]any) error

// Validate implements FieldValidator.
func (f FieldValidatorFunc) Validate(capabilityType string, config map[string]any) error {
	return f(capabilityType, config)
}

// Registry maps validator names to implementations. It is populated once
// at startup and read-only afterwards, so it is safe to share across
// concurrent request handlers.
type Registry struct {
	validators map[string]FieldValidator
}

// NewRegistry creates an empty validator registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]FieldValidator)}
}

// Default returns a registry with all built-in validators registered.
func Default() *Registry {
	r := NewRegistry()
	// Registration cannot fail on an empty registry with distinct names.
	_ = r.Register(GatewayServiceValidatorName, NewGatewayServiceValidator())
	return r
}

// Register adds a named validator. Registering a duplicate name or a nil
// implementation is a programming error and fails.
func (r *Registry) Register(name string, v FieldValidator) error {
	if name == "" {
		return fmt.Errorf("validator name cannot be empty")
	}
	if v == nil {
		return fmt.Errorf("validator %s: implementation cannot be nil", name)
	}
	if _, exists := r.validators[name]; exists {
		return fmt.Errorf("validator already registered: %s", name)
	}
	r.validators[name] = v
	return nil
}

// Resolve returns the validator registered under name. An unknown name is
// a configuration error: rule sets are cross-checked against the registry
// at load time, so this should never fail for a loaded rule set.
func (r *Registry) Resolve(name string) (FieldValidator, error) {
	v, ok := r.validators[name]
	if !ok {
		return nil, fmt.Errorf("unknown custom validator: %s", name)
	}
	return v, nil
}

// Has reports whether a validator is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.validators[name]
	return ok
}

// Names returns all registered validator names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
