package services

import (
	"fmt"
	"strings"
)

// NoCapabilitiesError indicates the request selected no capabilities.
type NoCapabilitiesError struct{}

func (e *NoCapabilitiesError) Error() string {
	return "at least one platform capability must be selected"
}

// UnknownCapabilityError indicates a selected capability has no rule.
type UnknownCapabilityError struct {
	Type string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unsupported capability: %s", e.Type)
}

// MissingDependencyError indicates the selection requires a capability,
// statically or through a triggered conditional dependency, that was not
// selected. Selected carries the full selection so the caller can see the
// triggering context.
type MissingDependencyError struct {
	Required string
	Selected []string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf(
		"capabilities [%s] require capability [%s], but it is not selected",
		strings.Join(e.Selected, ", "), e.Required,
	)
}

// MissingConfigError indicates a capability with field rules carried no
// configuration block.
type MissingConfigError struct {
	Type string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("capability [%s] is missing configuration data", e.Type)
}

// MalformedConfigError indicates a capability's configuration value is
// present but not a key/value block.
type MalformedConfigError struct {
	Type string
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("capability [%s] has malformed configuration data, expected an object", e.Type)
}

// MissingFieldError indicates a required configuration field is absent or
// blank. ConditionField is set when the requirement was triggered by a
// conditional field rule.
type MissingFieldError struct {
	Capability     string
	Field          string
	ConditionField string
}

func (e *MissingFieldError) Error() string {
	if e.ConditionField == "" {
		return fmt.Sprintf("capability [%s]: field [%s] is required", e.Capability, e.Field)
	}
	return fmt.Sprintf(
		"capability [%s]: field [%s] is required when [%s] is set",
		e.Capability, e.Field, e.ConditionField,
	)
}
