package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	report := &Report{
		Valid:     false,
		SkillPath: "/skills/my-skill",
		SkillName: "my-skill",
		Issues:    sampleIssues(),
	}
	report.Issues[1].Line = 4

	if err := NewJSONFormatter(&buf).Format(report); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	want := map[string]any{
		"valid":      false,
		"skill_path": "/skills/my-skill",
		"skill_name": "my-skill",
		"issues": []any{
			map[string]any{
				"severity":       "ERROR",
				"message":        "Missing required frontmatter key: 'license'",
				"location":       "SKILL.md (frontmatter)",
				"line_number":    nil,
				"fix_suggestion": "Add 'license: <value>'",
			},
			map[string]any{
				"severity":       "WARNING",
				"message":        "Description is very short (3 words)",
				"location":       "SKILL.md (frontmatter)",
				"line_number":    float64(4),
				"fix_suggestion": "",
			},
			map[string]any{
				"severity":       "INFO",
				"message":        "No TESTING_GUIDE/ folder found",
				"location":       "",
				"line_number":    nil,
				"fix_suggestion": "",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONFormatter_EmptyIssuesIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(&Report{Valid: true}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"issues": []`)) {
		t.Errorf("expected empty issues array, got %s", buf.String())
	}
}
