package validator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/dotcommander/skillpack/internal/pycheck"
	"github.com/dotcommander/skillpack/internal/types"
)

// scriptsRule checks every top-level Python file in scripts/.
type scriptsRule struct {
	checker *pycheck.Checker
}

func (r *scriptsRule) Name() string { return "script content" }

func (r *scriptsRule) Check(ctx context.Context, b *Bundle) ([]types.Issue, error) {
	if _, err := os.Stat(b.Join(types.ScriptsDir)); err != nil {
		return nil, nil
	}

	scripts, err := b.Files.FindTopLevel(types.ScriptsDir, "py")
	if err != nil {
		return nil, err
	}

	var issues []types.Issue
	for _, script := range scripts {
		issues = append(issues, r.checkScript(ctx, script.Path)...)
	}
	return issues, nil
}

func (r *scriptsRule) checkScript(ctx context.Context, file string) []types.Issue {
	name := filepath.Base(file)

	src, err := os.ReadFile(file)
	if err == nil && !utf8.Valid(src) {
		err = fmt.Errorf("not valid UTF-8")
	}
	var report pycheck.Report
	if err == nil {
		report, err = r.checker.Check(ctx, src)
	}
	if err != nil {
		return []types.Issue{{
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Error reading %s: %v", name, err),
			Location: file,
			Fix:      "Ensure file is readable and properly encoded",
		}}
	}

	if report.Syntax != nil {
		return []types.Issue{{
			Severity: types.SeverityError,
			Message:  "Python syntax error in " + name,
			Location: file,
			Line:     report.Syntax.Line,
			Fix:      "Fix syntax error: " + report.Syntax.Error(),
		}}
	}

	var issues []types.Issue
	if !report.HasDocstring {
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Message:  "Missing module docstring in " + name,
			Location: file,
			Fix:      "Add a docstring at the top explaining what the script does",
		})
	}
	if !report.HasErrorHandling {
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("No error handling (try/except) found in %s", name),
			Location: file,
			Fix:      "Add try/except blocks for robust error handling",
		})
	}
	if !report.HasMainGuard {
		issues = append(issues, types.Issue{
			Severity: types.SeverityInfo,
			Message:  "No __main__ guard in " + name,
			Location: file,
			Fix:      "Add: if __name__ == '__main__': main()",
		})
	}
	return issues
}
