package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capcheck-io/capcheck/internal/domain/validators"
)

const validRuleSet = `
capabilities:
  - type: gateway
    dependencies:
      - registry
    conditionalDependencies:
      - conditionField: platform
        expectedValue: OSS
        requiredCapabilities:
          - resource
    customValidator: gatewayServiceValidator
  - type: registry
    fieldRules:
      - requiredFields:
          - namespace
      - conditionField: enableAuth
        expectedValue: true
        requiredFields:
          - authToken
  - type: resource
`

func newLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader(validators.Default())
	require.NoError(t, err)
	return loader
}

func Test_Loader_LoadFromReader_Valid(t *testing.T) {
	loader := newLoader(t)

	rules, err := loader.LoadFromReader(strings.NewReader(validRuleSet))
	require.NoError(t, err)
	require.Equal(t, 3, rules.Len())

	gateway := rules.Lookup("gateway")
	require.NotNil(t, gateway)
	assert.Equal(t, []string{"registry"}, gateway.Dependencies)
	assert.Equal(t, "gatewayServiceValidator", gateway.CustomValidator)
	require.Len(t, gateway.ConditionalDependencies, 1)
	assert.Equal(t, "platform", gateway.ConditionalDependencies[0].ConditionField)
	assert.Equal(t, "OSS", gateway.ConditionalDependencies[0].ExpectedValue)

	registry := rules.Lookup("registry")
	require.NotNil(t, registry)
	require.Len(t, registry.FieldRules, 2)
	assert.True(t, registry.FieldRules[0].Unconditional())
	assert.Equal(t, "enableAuth", registry.FieldRules[1].ConditionField)
	assert.Equal(t, true, registry.FieldRules[1].ExpectedValue)
}

func Test_Loader_Load_File(t *testing.T) {
	loader := newLoader(t)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validRuleSet), 0o600))

	rules, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rules.Len())
}

func Test_Loader_Load_MissingFile(t *testing.T) {
	loader := newLoader(t)

	_, err := loader.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func Test_Loader_LoadFromReader_SchemaViolations(t *testing.T) {
	loader := newLoader(t)

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing capabilities key",
			yaml: `{}`,
		},
		{
			name: "capability without type",
			yaml: `
capabilities:
  - dependencies: [registry]
`,
		},
		{
			name: "field rule without required fields",
			yaml: `
capabilities:
  - type: registry
    fieldRules:
      - conditionField: enableAuth
`,
		},
		{
			name: "unknown key rejected",
			yaml: `
capabilities:
  - type: registry
    dependsOn: [gateway]
`,
		},
		{
			name: "conditional dependency without targets",
			yaml: `
capabilities:
  - type: gateway
    conditionalDependencies:
      - conditionField: platform
        expectedValue: OSS
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadFromReader(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func Test_Loader_LoadFromReader_NotYAML(t *testing.T) {
	loader := newLoader(t)

	_, err := loader.LoadFromReader(strings.NewReader("\t{{nonsense"))
	require.Error(t, err)
}

func Test_Loader_LoadFromReader_DuplicateType(t *testing.T) {
	loader := newLoader(t)

	_, err := loader.LoadFromReader(strings.NewReader(`
capabilities:
  - type: gateway
  - type: gateway
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate capability type")
}

func Test_Loader_LoadFromReader_UnknownValidatorName(t *testing.T) {
	loader := newLoader(t)

	_, err := loader.LoadFromReader(strings.NewReader(`
capabilities:
  - type: gateway
    customValidator: noSuchValidator
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown custom validator "noSuchValidator"`)
}

func Test_Loader_LoadFromReader_UnknownDependencyTargetIsNotFatal(t *testing.T) {
	// Dependency targets without a rule of their own only warn at load;
	// they stay enforced at request time.
	loader := newLoader(t)

	rules, err := loader.LoadFromReader(strings.NewReader(`
capabilities:
  - type: gateway
    dependencies:
      - nacos
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"nacos"}, rules.UnknownDependencyTargets())
}
