package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deployah-dev/activation/internal/checklist"
)

var variableNamePattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// ValidateNonEmpty ensures a string is not empty or whitespace-only
func ValidateNonEmpty(value string, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty or contain only whitespace", fieldName)
	}
	return nil
}

// ValidateStepID ensures an id is well formed and not already taken
func ValidateStepID(value string, taken []string) error {
	if err := checklist.ValidateStepID(value); err != nil {
		return err
	}
	for _, id := range taken {
		if id == value {
			return fmt.Errorf("step id '%s' is already used", value)
		}
	}
	return nil
}

// ValidateVariableName ensures a checklist variable name is upper snake case
func ValidateVariableName(name string) error {
	if !variableNamePattern.MatchString(name) {
		return fmt.Errorf("variable '%s' is invalid: use upper case letters, digits and underscores", name)
	}
	return nil
}

// ParseVariables parses comma or newline separated KEY=value pairs.
// Blank entries are skipped.
func ParseVariables(value string) (map[string]string, error) {
	vars := make(map[string]string)
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '\n' })
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, val, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("variable '%s' is invalid: expected KEY=value", field)
		}
		name = strings.TrimSpace(name)
		if err := ValidateVariableName(name); err != nil {
			return nil, err
		}
		vars[name] = strings.TrimSpace(val)
	}
	return vars, nil
}
