// Package tools holds small stateless helpers shared across analyzers and
// the report layer — currently just defect ID generation.
package tools

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// DefectIDGenerator creates stable, reproducible defect IDs.
// Format: defect:<category>_<rule_id>:<relative_file>:<line>:<column>
type DefectIDGenerator struct {
	rootPath string
}

// NewDefectIDGenerator creates a new ID generator scoped to a project root.
func NewDefectIDGenerator(rootPath string) *DefectIDGenerator {
	rootPath = strings.TrimSuffix(rootPath, "/")
	rootPath = strings.TrimSuffix(rootPath, "\\")
	return &DefectIDGenerator{rootPath: rootPath}
}

// GetDefectID builds a defect ID unique within one report: same category,
// rule, file, and line never collide with an unrelated finding, but the
// same finding recomputed across runs gets the same ID (stable for diffing
// reports across two analysis runs of the same project state).
func (g *DefectIDGenerator) GetDefectID(category, ruleID, absPath string, line, column int) string {
	relPath := g.makeRelativePath(absPath)
	safeRule := sanitizeForID(ruleID)
	return fmt.Sprintf("defect:%s_%s:%s:%d:%d", category, safeRule, relPath, line, column)
}

// GetHotspotID builds an ID for a hotspot-file summary entry, which has no
// line/column — only a file.
func (g *DefectIDGenerator) GetHotspotID(absPath string) string {
	relPath := g.makeRelativePath(absPath)
	return fmt.Sprintf("hotspot:%s:%s", filepath.Base(absPath), relPath)
}

func (g *DefectIDGenerator) makeRelativePath(absPath string) string {
	relPath := strings.TrimPrefix(absPath, g.rootPath)
	relPath = strings.TrimPrefix(relPath, "/")
	relPath = strings.TrimPrefix(relPath, "\\")
	return relPath
}

// sanitizeForID converts rule/category names to safe ID components.
func sanitizeForID(name string) string {
	var result strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '.' {
			result.WriteRune('_')
		}
	}

	safe := result.String()
	if len(safe) > 0 && unicode.IsDigit(rune(safe[0])) {
		safe = "_" + safe
	}
	if safe == "" {
		safe = "unnamed"
	}
	return safe
}

// ParseDefectID extracts components from a defect ID produced by
// GetDefectID. Returns an error if id was not produced by this generator.
func ParseDefectID(id string) (categoryRule, file string, line, column int, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 5 || parts[0] != "defect" {
		return "", "", 0, 0, fmt.Errorf("invalid defect ID format: %s", id)
	}

	categoryRule = parts[1]
	file = parts[2]
	if _, err = fmt.Sscanf(parts[3]+":"+parts[4], "%d:%d", &line, &column); err != nil {
		return "", "", 0, 0, fmt.Errorf("invalid location in defect ID: %s:%s", parts[3], parts[4])
	}
	return categoryRule, file, line, column, nil
}

// IsValidDefectID validates a defect ID's shape without fully parsing it.
func IsValidDefectID(id string) bool {
	if id == "" {
		return false
	}
	parts := strings.Split(id, ":")
	if len(parts) != 5 {
		return false
	}
	return parts[0] == "defect" || parts[0] == "hotspot"
}
