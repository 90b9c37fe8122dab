// Package config provides infrastructure for loading capability rule sets.
// This package handles YAML parsing, schema validation, and the startup
// cross-checks between a rule set and the validator registry.
package config

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/capcheck-io/capcheck/internal/domain/entities"
	"github.com/capcheck-io/capcheck/internal/domain/validators"
)

//go:embed ruleset.schema.json
var rulesetSchema string

// ruleFile is the on-disk shape of a rule set.
type ruleFile struct {
	Capabilities []entities.CapabilityRule `yaml:"capabilities"`
}

// Loader loads rule sets and verifies them against a validator registry.
type Loader struct {
	registry *validators.Registry
	schema   *jsonschema.Schema
}

// NewLoader creates a rule-set loader. Custom-validator references in
// loaded rule sets are resolved against registry at load time, so an
// unregistered name fails startup instead of a request.
func NewLoader(registry *validators.Registry) (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ruleset.schema.json", strings.NewReader(rulesetSchema)); err != nil {
		return nil, fmt.Errorf("failed to add rule set schema: %w", err)
	}
	schema, err := compiler.Compile("ruleset.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule set schema: %w", err)
	}

	return &Loader{registry: registry, schema: schema}, nil
}

// Load reads, validates, and builds the rule set at path.
func (l *Loader) Load(path string) (*entities.RuleSet, error) {
	// Use os.OpenRoot so a rule-set path cannot traverse outside its
	// directory through symlinks.
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule set directory: %w", err)
	}
	defer func() {
		_ = root.Close()
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule set: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return l.LoadFromReader(file)
}

// LoadFromReader loads a rule set from an io.Reader. Useful for testing
// with in-memory YAML data.
func (l *Loader) LoadFromReader(r io.Reader) (*entities.RuleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}

	// Schema validation runs over the generic document so shape errors
	// carry field paths rather than Go decoding errors.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule set YAML: %w", err)
	}
	if err := l.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("rule set schema validation failed: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to decode rule set: %w", err)
	}

	rules, err := entities.NewRuleSet(rf.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("invalid rule set: %w", err)
	}

	if err := l.crossCheck(rules); err != nil {
		return nil, err
	}

	slog.Debug("rule set loaded", "capabilities", rules.Len())
	return rules, nil
}

// crossCheck verifies rule-set references that only the runtime can judge:
// every named custom validator must be registered, and dependency targets
// naming no known capability are logged so misspellings surface at startup.
// The latter stays a warning: such targets are still enforced at request
// time as required-but-unselected capabilities.
func (l *Loader) crossCheck(rules *entities.RuleSet) error {
	for _, name := range rules.ValidatorNames() {
		if !l.registry.Has(name) {
			return fmt.Errorf(
				"rule set references unknown custom validator %q (registered: %s)",
				name, strings.Join(l.registry.Names(), ", "),
			)
		}
	}

	if unknown := rules.UnknownDependencyTargets(); len(unknown) > 0 {
		slog.Warn("rule set requires capability types that have no rule of their own",
			"targets", unknown)
	}

	return nil
}
