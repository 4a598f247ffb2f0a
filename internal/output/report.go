// Package output renders validation reports and packaging results.
package output

import (
	"github.com/dotcommander/skillpack/internal/types"
)

// Report is the result of validating one bundle.
type Report struct {
	Valid     bool
	SkillPath string
	SkillName string
	Issues    []types.Issue
}

// Formatter renders a Report.
type Formatter interface {
	Format(report *Report) error
}

// Counts returns the number of errors, warnings and info issues.
func (r *Report) Counts() (errs, warnings, infos int) {
	return types.CountBySeverity(r.Issues, types.SeverityError),
		types.CountBySeverity(r.Issues, types.SeverityWarning),
		types.CountBySeverity(r.Issues, types.SeverityInfo)
}
