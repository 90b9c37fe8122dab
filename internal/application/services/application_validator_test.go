package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capcheck-io/capcheck/internal/application/dto"
	"github.com/capcheck-io/capcheck/internal/domain/entities"
	domainservices "github.com/capcheck-io/capcheck/internal/domain/services"
	"github.com/capcheck-io/capcheck/internal/domain/validators"
)

// platformRules mirrors a realistic rule set: a gateway with a custom
// validator and a conditional platform dependency, a registry with an
// unconditional field rule, and a bare resource service.
func platformRules(t *testing.T) *entities.RuleSet {
	t.Helper()
	rs, err := entities.NewRuleSet([]entities.CapabilityRule{
		{
			Type:            "gateway",
			Dependencies:    []string{"registry"},
			CustomValidator: validators.GatewayServiceValidatorName,
			ConditionalDependencies: []entities.ConditionalDependency{
				{ConditionField: "platform", ExpectedValue: "OSS", RequiredCapabilities: []string{"resource"}},
			},
		},
		{
			Type: "registry",
			FieldRules: []entities.FieldRule{
				{RequiredFields: []string{"namespace"}},
			},
		},
		{Type: "resource"},
	})
	require.NoError(t, err)
	return rs
}

func newValidator(t *testing.T) *ApplicationValidator {
	t.Helper()
	return NewApplicationValidator(platformRules(t), validators.Default())
}

func gatewayBlock() map[string]any {
	return map[string]any{
		"subscribedServices": []any{
			map[string]any{
				"serviceCode": "SVC1",
				"systemCode":  "SYS1",
				"serviceName": "orders",
			},
		},
	}
}

func Test_ApplicationValidator_Validate_EmptySelection(t *testing.T) {
	validator := newValidator(t)

	var noCaps *domainservices.NoCapabilitiesError

	err := validator.Validate(&dto.ApplicationRequest{})
	require.ErrorAs(t, err, &noCaps)

	err = validator.Validate(&dto.ApplicationRequest{Capabilities: []string{}})
	require.ErrorAs(t, err, &noCaps)

	err = validator.Validate(nil)
	require.ErrorAs(t, err, &noCaps)
}

func Test_ApplicationValidator_Validate_UnknownCapability(t *testing.T) {
	validator := newValidator(t)

	err := validator.Validate(&dto.ApplicationRequest{Capabilities: []string{"nacos"}})
	require.Error(t, err)

	var unknown *domainservices.UnknownCapabilityError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nacos", unknown.Type)
}

func Test_ApplicationValidator_Validate_DependencyPhaseFailsFast(t *testing.T) {
	validator := newValidator(t)

	// Gateway without its static registry dependency: the dependency
	// violation surfaces even though field rules would also fail.
	err := validator.Validate(&dto.ApplicationRequest{
		Capabilities: []string{"gateway"},
	})
	require.Error(t, err)

	var missing *domainservices.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "registry", missing.Required)
}

func Test_ApplicationValidator_Validate_GatewayWithoutConfig(t *testing.T) {
	// Gateway has no field rules of its own, so a missing block reaches
	// the custom validator, which demands at least one service list.
	rs, err := entities.NewRuleSet([]entities.CapabilityRule{
		{Type: "gateway", CustomValidator: validators.GatewayServiceValidatorName},
	})
	require.NoError(t, err)
	validator := NewApplicationValidator(rs, validators.Default())

	err = validator.Validate(&dto.ApplicationRequest{Capabilities: []string{"gateway"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must configure at least one subscribed or published service")
}

func Test_ApplicationValidator_Validate_MissingConfigBlock(t *testing.T) {
	validator := newValidator(t)

	// Registry declares field rules, so its block is mandatory.
	err := validator.Validate(&dto.ApplicationRequest{
		Capabilities: []string{"registry"},
	})
	require.Error(t, err)

	var missing *domainservices.MissingConfigError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "registry", missing.Type)
}

func Test_ApplicationValidator_Validate_MalformedConfigBlock(t *testing.T) {
	validator := newValidator(t)

	err := validator.Validate(&dto.ApplicationRequest{
		Capabilities: []string{"registry"},
		ConfigData:   map[string]any{"registry": "not an object"},
	})
	require.Error(t, err)

	var malformed *domainservices.MalformedConfigError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "registry", malformed.Type)
}

func Test_ApplicationValidator_Validate_AcceptedRequest(t *testing.T) {
	validator := newValidator(t)

	req := &dto.ApplicationRequest{
		SystemCode:   "SYS1",
		Dept:         "platform",
		Applicant:    "jdoe",
		Capabilities: []string{"gateway", "registry"},
		ConfigData: map[string]any{
			"gateway":  gatewayBlock(),
			"registry": map[string]any{"namespace": "platform"},
		},
	}
	require.NoError(t, validator.Validate(req))
}

func Test_ApplicationValidator_Validate_ConditionalDependencyScenario(t *testing.T) {
	validator := newValidator(t)

	block := gatewayBlock()
	block["platform"] = "OSS"

	req := &dto.ApplicationRequest{
		Capabilities: []string{"gateway", "registry"},
		ConfigData: map[string]any{
			"gateway":  block,
			"registry": map[string]any{"namespace": "platform"},
		},
	}

	err := validator.Validate(req)
	require.Error(t, err)

	var missing *domainservices.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "resource", missing.Required)

	// Selecting the triggered capability satisfies the closure.
	req.Capabilities = []string{"gateway", "registry", "resource"}
	require.NoError(t, validator.Validate(req))
}

func Test_ApplicationValidator_Validate_DuplicatesCollapse(t *testing.T) {
	validator := newValidator(t)

	req := &dto.ApplicationRequest{
		Capabilities: []string{"registry", "registry", "registry"},
		ConfigData:   map[string]any{"registry": map[string]any{"namespace": "platform"}},
	}
	require.NoError(t, validator.Validate(req))
}

func Test_ApplicationValidator_Validate_Idempotent(t *testing.T) {
	validator := newValidator(t)

	req := &dto.ApplicationRequest{
		Capabilities: []string{"gateway", "registry"},
		ConfigData: map[string]any{
			"gateway":  gatewayBlock(),
			"registry": map[string]any{"namespace": "platform"},
		},
	}

	for range 5 {
		require.NoError(t, validator.Validate(req))
	}

	bad := &dto.ApplicationRequest{Capabilities: []string{"gateway"}}
	first := validator.Validate(bad)
	require.Error(t, first)
	for range 5 {
		err := validator.Validate(bad)
		require.Error(t, err)
		assert.Equal(t, first.Error(), err.Error(), "same input, same outcome")
	}
}

func Test_ApplicationValidator_Validate_TimeoutStringOutOfRange(t *testing.T) {
	validator := newValidator(t)

	req := &dto.ApplicationRequest{
		Capabilities: []string{"gateway", "registry"},
		ConfigData: map[string]any{
			"gateway": map[string]any{
				"publishedServices": []any{
					map[string]any{
						"serviceCode": "SVC9",
						"serviceName": "billing",
						"gatewayUrl":  "https://api.example.com/billing",
						"timeoutMs":   "40000",
					},
				},
			},
			"registry": map[string]any{"namespace": "platform"},
		},
	}

	err := validator.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeoutMs must be between 1 and 30000")
}
