package checklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/deployah-dev/activation/internal/checklist/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaInfo keeps the compiled schema for validation next to the raw
// document used to extract defaults.
type schemaInfo struct {
	compiled *jsonschema.Schema
	rawData  map[string]any
}

var (
	schemaCache = make(map[string]*schemaInfo)
	schemaMutex sync.RWMutex

	stepIDPattern = regexp.MustCompile(StepIDPattern)
)

// getSchemaInfo returns the compiled schema for version, compiling it on first use.
func getSchemaInfo(version string) (*schemaInfo, error) {
	schemaMutex.RLock()
	info, ok := schemaCache[version]
	schemaMutex.RUnlock()
	if ok {
		return info, nil
	}

	schemaMutex.Lock()
	defer schemaMutex.Unlock()
	if info, ok := schemaCache[version]; ok {
		return info, nil
	}

	schemaBytes, err := schema.Get(version)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist schema version %q: %w", version, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("invalid checklist schema JSON for version %q: %w", version, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()

	schemaID := version + "/checklist.json"
	if err := compiler.AddResource(schemaID, doc); err != nil {
		return nil, fmt.Errorf("failed to load checklist schema version %q: %w", version, err)
	}

	compiled, err := compiler.Compile(schemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to compile checklist schema version %q: %w", version, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(schemaBytes, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse checklist schema version %q: %w", version, err)
	}

	info = &schemaInfo{compiled: compiled, rawData: raw}
	schemaCache[version] = info
	return info, nil
}

// ValidateChecklist validates a decoded checklist document against the
// schema of the given version. Unknown fields are rejected.
func ValidateChecklist(obj map[string]any, version string) error {
	info, err := getSchemaInfo(version)
	if err != nil {
		return err
	}
	if err := info.compiled.Validate(obj); err != nil {
		return fmt.Errorf("checklist validation failed for schema version %q: %w", version, err)
	}
	return nil
}

// ValidateAPIVersion checks the apiVersion field for presence, type and
// validity, and returns it.
func ValidateAPIVersion(obj map[string]any) (string, error) {
	validVersions, err := schema.Versions()
	if err != nil {
		return "", fmt.Errorf("failed to get valid checklist versions: %w", err)
	}

	value, ok := obj["apiVersion"]
	if !ok {
		return "", fmt.Errorf("checklist is missing 'apiVersion' field")
	}

	version, ok := value.(string)
	if !ok || version == "" {
		return "", fmt.Errorf("'apiVersion' field must be a non-empty string")
	}

	if !slices.Contains(validVersions, version) {
		return "", fmt.Errorf("unsupported checklist schema version: %s (valid: %v)", version, validVersions)
	}

	return version, nil
}

// ValidateStepID checks a single step id against the id rules.
func ValidateStepID(id string) error {
	if id == "" {
		return fmt.Errorf("step id cannot be empty")
	}
	if len(id) > MaxStepIDLength {
		return fmt.Errorf("step id %q is too long: %d characters (max %d)", id, len(id), MaxStepIDLength)
	}
	if !stepIDPattern.MatchString(id) {
		return fmt.Errorf("step id %q is invalid: must match %s", id, StepIDPattern)
	}
	return nil
}

// ValidateSteps rejects duplicate and malformed step ids.
func ValidateSteps(c *Checklist) error {
	seen := make(map[string]struct{}, len(c.Steps))
	var duplicates []string
	for _, step := range c.Steps {
		if err := ValidateStepID(step.ID); err != nil {
			return err
		}
		if _, ok := seen[step.ID]; ok {
			if !slices.Contains(duplicates, step.ID) {
				duplicates = append(duplicates, step.ID)
			}
			continue
		}
		seen[step.ID] = struct{}{}
	}

	if len(duplicates) > 0 {
		return fmt.Errorf("duplicate step ids: %s", strings.Join(duplicates, ", "))
	}
	return nil
}
