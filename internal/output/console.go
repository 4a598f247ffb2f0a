package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dotcommander/skillpack/internal/archive"
	"github.com/dotcommander/skillpack/internal/types"
)

const ruleWidth = 70

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w        io.Writer
	verbose  bool
	colorize bool
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(w io.Writer, verbose, colorize bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		w:        w,
		verbose:  verbose,
		colorize: colorize,
	}
}

func (f *ConsoleFormatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (f *ConsoleFormatter) bold(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return f.style(color).Bold(true)
}

// Format writes the human-readable validation report.
func (f *ConsoleFormatter) Format(report *Report) error {
	if len(report.Issues) == 0 {
		f.printBanner("✓ VALIDATION PASSED", "10")
		fmt.Fprintf(f.w, "\nSkill: %s\nPath: %s\n\n", report.SkillName, report.SkillPath)
		fmt.Fprintln(f.w, "No issues found! This skill meets all validation requirements.")
		return nil
	}

	nErrs, nWarnings, nInfos := report.Counts()

	if nErrs > 0 {
		f.printBanner("✗ VALIDATION FAILED", "9")
	} else {
		f.printBanner("⚠ VALIDATION PASSED WITH WARNINGS", "3")
	}
	fmt.Fprintf(f.w, "\nSkill: %s\nPath: %s\n\n", report.SkillName, report.SkillPath)

	fmt.Fprintln(f.w, "Summary:")
	fmt.Fprintf(f.w, "  Errors:   %d\n", nErrs)
	fmt.Fprintf(f.w, "  Warnings: %d\n", nWarnings)
	fmt.Fprintf(f.w, "  Info:     %d\n\n", nInfos)

	if nErrs > 0 {
		f.printSection("ERRORS (must be fixed):", types.FilterBySeverity(report.Issues, types.SeverityError), "9")
	}
	if nWarnings > 0 && (f.verbose || nErrs == 0) {
		f.printSection("WARNINGS (should be addressed):", types.FilterBySeverity(report.Issues, types.SeverityWarning), "3")
	}
	if nInfos > 0 && f.verbose {
		f.printSection("INFORMATION:", types.FilterBySeverity(report.Issues, types.SeverityInfo), "7")
	}

	fmt.Fprintln(f.w, strings.Repeat("=", ruleWidth))
	if !f.verbose && (nWarnings > 0 || nInfos > 0) {
		fmt.Fprintln(f.w, "\nUse --verbose to see all issues")
	}
	return nil
}

func (f *ConsoleFormatter) printBanner(title, color string) {
	line := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(f.w, line)
	fmt.Fprintln(f.w, f.bold(color).Render(title))
	fmt.Fprintln(f.w, line)
}

func (f *ConsoleFormatter) printSection(title string, issues []types.Issue, color string) {
	line := strings.Repeat("-", ruleWidth)
	fmt.Fprintln(f.w, line)
	fmt.Fprintln(f.w, f.bold(color).Render(title))
	fmt.Fprintln(f.w, line)
	for i, issue := range issues {
		fmt.Fprintf(f.w, "\n%d. %s\n\n", i+1, f.renderIssue(issue, color))
	}
}

// renderIssue colors the severity tag and leaves the rest as Issue.String.
func (f *ConsoleFormatter) renderIssue(issue types.Issue, color string) string {
	text := issue.String()
	tag := "[" + string(issue.Severity) + "]"
	return f.style(color).Render(tag) + strings.TrimPrefix(text, tag)
}

// FormatPackaged writes the success banner for a written archive.
func (f *ConsoleFormatter) FormatPackaged(res *archive.Result) {
	line := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(f.w, "\n%s\n", line)
	fmt.Fprintln(f.w, f.bold("10").Render("✓ SUCCESS! Skill packaged successfully"))
	fmt.Fprintln(f.w, line)
	fmt.Fprintf(f.w, "\nSkill: %s\n", res.Name)
	fmt.Fprintf(f.w, "Output: %s\n", res.Path)
	fmt.Fprintf(f.w, "Size: %s\n", humanize.IBytes(uint64(res.Size)))
	fmt.Fprintf(f.w, "Files: %d\n", res.Files)
	fmt.Fprintf(f.w, "\n%s\n\n", line)
}

// FormatBatch writes the batch packaging summary.
func (f *ConsoleFormatter) FormatBatch(result *archive.BatchResult) {
	line := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(f.w, "\n%s\n", line)
	fmt.Fprintln(f.w, f.bold("12").Render("BATCH PACKAGING SUMMARY"))
	fmt.Fprintln(f.w, line)
	fmt.Fprintf(f.w, "Total skills: %d\n", result.Total)
	fmt.Fprintf(f.w, "Successfully packaged: %d\n", len(result.Packaged))
	fmt.Fprintf(f.w, "Failed: %d\n", len(result.Failed))

	if len(result.Failed) > 0 {
		fmt.Fprintln(f.w, "\nFailed skills:")
		for _, failure := range result.Failed {
			fmt.Fprintf(f.w, "  - %s: %s\n", f.style("9").Render(failure.Name), failure.Err)
		}
	}
	fmt.Fprintf(f.w, "%s\n\n", line)
}
