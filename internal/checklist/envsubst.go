package checklist

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/fluxcd/pkg/envsubst"
	"github.com/joho/godotenv"
)

// parseEnvFile parses a .env file.
//
// A missing file is an error only when explicitlySet is true.
func parseEnvFile(path string, explicitlySet bool) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicitlySet {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s file: %w", path, err)
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file: %w", path, err)
	}

	return vars, nil
}

func parseOSVariables() (map[string]string, error) {
	buf := bytes.NewBufferString(strings.Join(os.Environ(), "\n"))
	buf.WriteString("\n")

	vars, err := godotenv.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OS environment variables: %w", err)
	}

	return vars, nil
}

// filterVariables keeps the variables carrying EnvVarPrefix and strips the
// prefix from their names.
func filterVariables(vars map[string]string) map[string]string {
	filtered := make(map[string]string)
	for key, value := range vars {
		if name, ok := strings.CutPrefix(key, EnvVarPrefix); ok && name != "" {
			filtered[name] = value
		}
	}
	return filtered
}

// ResolveVariables merges checklist variables with the env file and the OS
// environment. Precedence, lowest first:
//  1. the checklist's own variables
//  2. ACTIVATION_VAR_ entries of the env file
//  3. ACTIVATION_VAR_ entries of the OS environment
func ResolveVariables(defined map[string]string, envFile string, explicitlySet bool) (map[string]string, error) {
	variables := make(map[string]string)

	if err := mergo.Merge(&variables, defined); err != nil {
		return nil, fmt.Errorf("failed to merge checklist variables: %w", err)
	}

	fromFile, err := parseEnvFile(envFile, explicitlySet)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&variables, filterVariables(fromFile), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge env file variables: %w", err)
	}

	fromOS, err := parseOSVariables()
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&variables, filterVariables(fromOS), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge OS environment variables: %w", err)
	}

	return variables, nil
}

// SubstituteVariables replaces ${VAR} references in data. Unknown variables
// expand to the empty string so that ${VAR:=default} forms apply.
func SubstituteVariables(data []byte, variables map[string]string) ([]byte, error) {
	content, err := envsubst.Eval(string(data), func(s string) (string, bool) {
		return variables[s], true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to substitute variables: %w", err)
	}

	return []byte(content), nil
}
