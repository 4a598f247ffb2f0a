// Package types provides shared types used across the skillpack codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

import (
	"fmt"
	"strings"
)

// Severity classifies a validation finding.
type Severity string

// Severity level constants.
const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Issue is a single validation finding. Location and Fix are empty and Line is
// zero when not applicable.
type Issue struct {
	Severity Severity
	Message  string
	Location string
	Line     int
	Fix      string
}

// String renders the issue the way the text report prints it.
func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", i.Severity, i.Message)
	if i.Location != "" {
		fmt.Fprintf(&b, "\n  Location: %s", i.Location)
		if i.Line > 0 {
			fmt.Fprintf(&b, " (line %d)", i.Line)
		}
	}
	if i.Fix != "" {
		fmt.Fprintf(&b, "\n  Fix: %s", i.Fix)
	}
	return b.String()
}

// Bundle layout constants.
const (
	ManifestFile   = "SKILL.md"
	ScriptsDir     = "scripts"
	ReferencesDir  = "references"
	AssetsDir      = "assets"
	TestingDir     = "TESTING_GUIDE"
	ArchiveIndex   = "manifest.json"
	LicenseTxtFile = "LICENSE.txt"
	LicenseFile    = "LICENSE"
)

// ContentDirs are the bundle subdirectories copied into an archive, in order.
var ContentDirs = []string{ScriptsDir, ReferencesDir, AssetsDir}

// CountBySeverity returns how many issues carry the given severity.
func CountBySeverity(issues []Issue, sev Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// FilterBySeverity returns the issues with the given severity, preserving order.
func FilterBySeverity(issues []Issue, sev Severity) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// HasErrors reports whether any issue is an ERROR.
func HasErrors(issues []Issue) bool {
	return CountBySeverity(issues, SeverityError) > 0
}
