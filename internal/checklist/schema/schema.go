// Package schema embeds the versioned JSON schemas for checklist files.
package schema

import (
	"embed"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// fs is the embedded filesystem containing the schema files.
//
//go:embed */checklist.json
var fs embed.FS

const fileName = "checklist.json"

var (
	// versionRegex matches version strings like "v1-alpha.1", "v1-beta.2" or "v1".
	versionRegex = regexp.MustCompile(`^v(\d+)(?:-(alpha|beta|rc)\.(\d+))?$`)
	// preReleaseOrder defines the order of pre-release types.
	preReleaseOrder = map[string]int{"alpha": 0, "beta": 1, "rc": 2, "": 3}
)

// Get returns the checklist schema for the given version.
func Get(version string) ([]byte, error) {
	name := version + "/" + fileName
	data, err := fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("checklist schema not found for version %s", version)
	}
	return data, nil
}

// Versions returns all embedded schema versions, oldest first.
func Versions() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	slices.SortFunc(versions, compareSchemaVersions)
	return versions, nil
}

// Latest returns the newest schema version.
func Latest() (string, error) {
	versions, err := Versions()
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no checklist schemas found")
	}
	return versions[len(versions)-1], nil
}

// compareSchemaVersions returns -1 if a < b, 0 if a == b, 1 if a > b.
// Versions that do not parse sort after valid ones.
func compareSchemaVersions(a, b string) int {
	parse := func(v string) (major int, pre string, preNum int, valid bool) {
		m := versionRegex.FindStringSubmatch(v)
		if m == nil {
			return 0, "", 0, false
		}
		major, _ = strconv.Atoi(m[1])
		pre = m[2]
		if m[3] != "" {
			preNum, _ = strconv.Atoi(m[3])
		}
		return major, pre, preNum, true
	}

	majA, preA, numA, validA := parse(a)
	majB, preB, numB, validB := parse(b)

	switch {
	case !validA && !validB:
		return strings.Compare(a, b)
	case !validA:
		return 1
	case !validB:
		return -1
	}

	if majA != majB {
		return compareInts(majA, majB)
	}
	if preReleaseOrder[preA] != preReleaseOrder[preB] {
		return compareInts(preReleaseOrder[preA], preReleaseOrder[preB])
	}
	return compareInts(numA, numB)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
