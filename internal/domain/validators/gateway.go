package validators

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/capcheck-io/capcheck/internal/domain/values"
)

// GatewayServiceValidatorName is the rule-set reference for the gateway
// service validator.
const GatewayServiceValidatorName = "gatewayServiceValidator"

// Published service timeouts must stay within one gateway worker cycle.
const (
	minTimeoutMs = 1
	maxTimeoutMs = 30000
)

// gatewayURLPattern accepts http/https URLs with a domain or IPv4 host,
// an optional port, and an optional path.
var gatewayURLPattern = regexp.MustCompile(
	`^https?://` +
		`(?:` +
		`(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}` + // domain
		`|(?:[0-9]{1,3}\.){3}[0-9]{1,3}` + // IPv4
		`)` +
		`(?::[0-9]{1,5})?` + // optional port
		`(?:/.*)?$`) // optional path

// GatewayServiceValidator checks the service lists of a gateway capability
// configuration: at least one of subscribedServices or publishedServices
// must be present, every entry must carry its required fields, service
// codes must be unique within their own list, and published entries need a
// well-formed gateway URL and an in-range timeout.
type GatewayServiceValidator struct{}

// NewGatewayServiceValidator creates the gateway service validator.
func NewGatewayServiceValidator() *GatewayServiceValidator {
	return &GatewayServiceValidator{}
}

// Validate implements FieldValidator. A nil config counts as empty, so a
// gateway capability submitted without configuration fails the
// at-least-one-list rule rather than panicking.
func (v *GatewayServiceValidator) Validate(capabilityType string, config map[string]any) error {
	subscribed, err := serviceList(config, "subscribedServices")
	if err != nil {
		return err
	}
	published, err := serviceList(config, "publishedServices")
	if err != nil {
		return err
	}

	if len(subscribed) == 0 && len(published) == 0 {
		return fmt.Errorf("capability [%s] must configure at least one subscribed or published service", capabilityType)
	}

	// serviceCode uniqueness is scoped per list: a code may appear once in
	// subscribed and once in published.
	subscribedCodes := make(map[string]bool)
	for i, service := range subscribed {
		prefix := fmt.Sprintf("subscribedServices[%d]", i)
		if err := requireFields(service, prefix, "serviceCode", "systemCode", "serviceName"); err != nil {
			return err
		}

		code, err := stringField(service, "serviceCode", prefix)
		if err != nil {
			return err
		}
		if err := checkDuplicate(subscribedCodes, code, prefix+".serviceCode"); err != nil {
			return err
		}
	}

	publishedCodes := make(map[string]bool)
	for i, service := range published {
		prefix := fmt.Sprintf("publishedServices[%d]", i)
		if err := requireFields(service, prefix, "serviceCode", "serviceName", "gatewayUrl", "timeoutMs"); err != nil {
			return err
		}

		code, err := stringField(service, "serviceCode", prefix)
		if err != nil {
			return err
		}
		if err := checkDuplicate(publishedCodes, code, prefix+".serviceCode"); err != nil {
			return err
		}

		gatewayURL, err := stringField(service, "gatewayUrl", prefix)
		if err != nil {
			return err
		}
		if !gatewayURLPattern.MatchString(gatewayURL) {
			return fmt.Errorf("%s.gatewayUrl must be a valid HTTP/HTTPS URL (e.g. https://api.example.com/path)", prefix)
		}

		if err := checkTimeout(service["timeoutMs"], prefix); err != nil {
			return err
		}
	}

	return nil
}

// serviceList extracts a list-of-maps field from the config block.
// An absent field yields an empty list; a present field with the wrong
// shape is a validation error.
func serviceList(config map[string]any, field string) ([]map[string]any, error) {
	raw, ok := config[field]
	if !ok || raw == nil {
		return nil, nil
	}
	list, badIndex, ok := values.AsMapList(raw)
	if !ok {
		if badIndex >= 0 {
			return nil, fmt.Errorf("%s[%d] must be an object", field, badIndex)
		}
		return nil, fmt.Errorf("%s must be a list of objects", field)
	}
	return list, nil
}

// requireFields checks that every named field is present and non-blank.
func requireFields(service map[string]any, prefix string, fields ...string) error {
	for _, field := range fields {
		value, ok := service[field]
		if !ok || value == nil {
			return fmt.Errorf("%s.%s is required", prefix, field)
		}
		if !values.NonBlank(value) {
			return fmt.Errorf("%s.%s cannot be blank", prefix, field)
		}
	}
	return nil
}

// stringField returns a field's value as a non-blank string.
func stringField(service map[string]any, field, prefix string) (string, error) {
	value, ok := service[field]
	if !ok || value == nil {
		return "", fmt.Errorf("%s.%s is required", prefix, field)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s.%s must be a string", prefix, field)
	}
	if strings.TrimSpace(str) == "" {
		return "", fmt.Errorf("%s.%s cannot be blank", prefix, field)
	}
	return str, nil
}

// checkDuplicate records code in seen, failing when it was already there.
func checkDuplicate(seen map[string]bool, code, fieldPath string) error {
	if seen[code] {
		return fmt.Errorf("%s duplicated: %q", fieldPath, code)
	}
	seen[code] = true
	return nil
}

// checkTimeout validates timeoutMs: a number or numeric string within
// [minTimeoutMs, maxTimeoutMs].
func checkTimeout(raw any, prefix string) error {
	var timeout int64
	switch val := raw.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return fmt.Errorf("%s.timeoutMs is malformed, expected a positive integer", prefix)
		}
		timeout = parsed
	default:
		parsed, ok := values.AsInt64(raw)
		if !ok {
			return fmt.Errorf("%s.timeoutMs must be a number or numeric string", prefix)
		}
		timeout = parsed
	}

	if timeout < minTimeoutMs || timeout > maxTimeoutMs {
		return fmt.Errorf("%s.timeoutMs must be between %d and %d milliseconds", prefix, minTimeoutMs, maxTimeoutMs)
	}
	return nil
}
