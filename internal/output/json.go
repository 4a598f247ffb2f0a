package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter formats output as indented JSON
type JSONFormatter struct {
	w io.Writer
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

// Format writes the report as a single JSON document.
func (f *JSONFormatter) Format(report *Report) error {
	out := JSONReport{
		Valid:     report.Valid,
		SkillPath: report.SkillPath,
		SkillName: report.SkillName,
		Issues:    make([]JSONIssue, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		ji := JSONIssue{
			Severity:      string(issue.Severity),
			Message:       issue.Message,
			Location:      issue.Location,
			FixSuggestion: issue.Fix,
		}
		if issue.Line > 0 {
			ji.LineNumber = &issue.Line
		}
		out.Issues = append(out.Issues, ji)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if _, err := fmt.Fprintln(f.w, string(data)); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

// JSONReport is the machine-readable validation result.
type JSONReport struct {
	Valid     bool        `json:"valid"`
	SkillPath string      `json:"skill_path"`
	SkillName string      `json:"skill_name"`
	Issues    []JSONIssue `json:"issues"`
}

// JSONIssue is one issue. Absent strings are empty and an absent line is null.
type JSONIssue struct {
	Severity      string `json:"severity"`
	Message       string `json:"message"`
	Location      string `json:"location"`
	LineNumber    *int   `json:"line_number"`
	FixSuggestion string `json:"fix_suggestion"`
}
