package checklist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"sigs.k8s.io/yaml"
)

// resolveEnvFile picks the env file used for substitution. An explicit path
// must exist; otherwise ".env" next to the checklist and ".activation/.env"
// are tried in that order.
func resolveEnvFile(checklistPath, envFile string) (string, bool, error) {
	if envFile != "" {
		if fileExists(envFile) {
			return envFile, true, nil
		}
		return "", true, fmt.Errorf("explicit env file %q does not exist", envFile)
	}

	dir := filepath.Dir(checklistPath)
	candidates := []string{
		filepath.Join(dir, DefaultEnvFile),
		filepath.Join(dir, ConfigDir, DefaultEnvFile),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, false, nil
		}
	}
	return "", false, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the checklist at path, substitutes variables (checklist
// variables < env file < OS environment), validates it against the schema
// of its apiVersion, applies schema defaults and renders step details.
func Load(path string, envFile string) (*Checklist, error) {
	if path == "" {
		path = DefaultChecklistPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist: %w", err)
	}

	var obj map[string]any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse checklist YAML: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("checklist %s is empty", path)
	}

	version, err := ValidateAPIVersion(obj)
	if err != nil {
		return nil, err
	}

	var tmp struct {
		Variables map[string]string `json:"variables"`
	}
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("failed to parse checklist variables: %w", err)
	}

	envFilePath, explicitlySet, err := resolveEnvFile(path, envFile)
	if err != nil {
		return nil, err
	}
	if envFilePath != "" {
		log.Debug("Using env file", "path", envFilePath, "explicit", explicitlySet)
	}

	variables, err := ResolveVariables(tmp.Variables, envFilePath, explicitlySet)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve variables: %w", err)
	}

	substituted, err := SubstituteVariables(data, variables)
	if err != nil {
		return nil, err
	}

	var substitutedObj map[string]any
	if err := yaml.Unmarshal(substituted, &substitutedObj); err != nil {
		return nil, fmt.Errorf("failed to parse substituted checklist YAML: %w", err)
	}

	if err := ValidateChecklist(substitutedObj, version); err != nil {
		return nil, err
	}

	var checklist Checklist
	if err := yaml.Unmarshal(substituted, &checklist); err != nil {
		return nil, fmt.Errorf("failed to parse checklist YAML: %w", err)
	}
	checklist.Variables = variables

	if err := ValidateSteps(&checklist); err != nil {
		return nil, err
	}

	if err := FillWithDefaults(&checklist, version); err != nil {
		return nil, err
	}

	if err := RenderDetails(&checklist); err != nil {
		return nil, err
	}

	return &checklist, nil
}

// Save writes the checklist as YAML to path, creating parent directories.
func Save(checklist *Checklist, path string) error {
	if path == "" {
		path = DefaultChecklistPath
	}

	data, err := yaml.Marshal(checklist)
	if err != nil {
		return fmt.Errorf("failed to marshal checklist to YAML: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checklist to %s: %w", path, err)
	}

	return nil
}

// Exists reports whether a checklist file is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
