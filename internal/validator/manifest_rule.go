package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dotcommander/skillpack/internal/frontend"
	"github.com/dotcommander/skillpack/internal/rules"
	"github.com/dotcommander/skillpack/internal/schema"
	"github.com/dotcommander/skillpack/internal/textutil"
	"github.com/dotcommander/skillpack/internal/types"
)

const (
	locManifest    = types.ManifestFile
	locFrontmatter = types.ManifestFile + " (frontmatter)"
	locDescription = types.ManifestFile + " (frontmatter - description)"
	locBody        = types.ManifestFile + " (body)"
)

// frontmatter is the schema-checked view of the SKILL.md header. Fields that
// were absent or failed their schema check stay empty.
type frontmatter struct {
	Name        string
	Description string
	License     any
}

// manifestRule checks SKILL.md: frontmatter, recommended sections, forbidden
// content and body length.
type manifestRule struct {
	rules  rules.RuleSet
	schema *schema.Validator
}

func (r *manifestRule) Name() string { return "manifest structure" }

func (r *manifestRule) Check(_ context.Context, b *Bundle) ([]types.Issue, error) {
	raw, err := os.ReadFile(b.Join(types.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", types.ManifestFile, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("reading %s: not valid UTF-8", types.ManifestFile)
	}

	doc, err := frontend.Split(string(raw))
	switch {
	case errors.Is(err, frontend.ErrNoFrontmatter):
		return []types.Issue{{
			Severity: types.SeverityError,
			Message:  types.ManifestFile + " must start with YAML frontmatter (---)",
			Location: locManifest,
			Line:     1,
			Fix:      "Add YAML frontmatter at the top:\n---\nname: skill-name\ndescription: ...\nlicense: ...\n---",
		}}, nil
	case errors.Is(err, frontend.ErrUnclosedFrontmatter):
		return []types.Issue{{
			Severity: types.SeverityError,
			Message:  "YAML frontmatter not properly closed with '---'",
			Location: locManifest,
			Fix:      "Ensure frontmatter ends with '---' on its own line",
		}}, nil
	case err != nil:
		return nil, err
	}

	data, err := doc.Decode()
	if err != nil {
		return []types.Issue{{
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("YAML frontmatter parsing error: %v", err),
			Location: locFrontmatter,
			Fix:      "Check YAML syntax - ensure proper indentation and format",
		}}, nil
	}
	if data == nil {
		return []types.Issue{{
			Severity: types.SeverityError,
			Message:  "YAML frontmatter is empty",
			Location: locFrontmatter,
			Fix:      "Add required fields: " + strings.Join(r.rules.RequiredKeys, ", "),
		}}, nil
	}

	_, issues := r.decodeFrontmatter(data)
	issues = append(issues, r.checkSections(doc.Body)...)
	issues = append(issues, r.checkForbidden(doc)...)
	issues = append(issues, r.checkBodyLength(doc.Body)...)
	return issues, nil
}

// decodeFrontmatter validates data field by field and builds the typed view.
func (r *manifestRule) decodeFrontmatter(data map[string]any) (frontmatter, []types.Issue) {
	var fm frontmatter
	var issues []types.Issue

	for _, key := range r.rules.RequiredKeys {
		if _, ok := data[key]; !ok {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("Missing required frontmatter key: '%s'", key),
				Location: locFrontmatter,
				Fix:      fmt.Sprintf("Add '%s: <value>' to the YAML frontmatter", key),
			})
		}
	}

	if value, ok := data["name"]; ok {
		if err := r.schema.CheckField("name", value); err != nil {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Message:  "'name' must be a non-empty string",
				Location: locFrontmatter,
				Fix:      "Set name to a lowercase string with hyphens (e.g., 'my-skill')",
			})
		} else {
			fm.Name = value.(string)
			if !r.schema.IsSlug(fm.Name) {
				issues = append(issues, types.Issue{
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("Skill name '%s' should use lowercase and hyphens only", fm.Name),
					Location: locFrontmatter,
					Fix:      "Use format: lowercase-with-hyphens (e.g., 'my-skill-name')",
				})
			}
		}
	}

	if value, ok := data["description"]; ok {
		if err := r.schema.CheckField("description", value); err != nil {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Message:  "'description' must be a non-empty string",
				Location: locFrontmatter,
				Fix:      "Add a clear description of when this skill should be used",
			})
		} else {
			fm.Description = value.(string)
			issues = append(issues, r.checkDescription(fm.Description)...)
		}
	}

	fm.License = data["license"]
	return fm, issues
}

func (r *manifestRule) checkDescription(desc string) []types.Issue {
	var issues []types.Issue

	words := textutil.WordCount(desc)
	if words < r.rules.MinDescriptionWords {
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Description is very short (%d words)", words),
			Location: locFrontmatter,
			Fix:      "Add more detail (aim for 20-50 words) about when and how to use this skill",
		})
	} else if words > r.rules.MaxDescriptionWords {
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Description is very long (%d words)", words),
			Location: locFrontmatter,
			Fix:      "Keep description concise (20-50 words) - details go in the body",
		})
	}

	if r.rules.SecondPerson.MatchString(desc) {
		issues = append(issues, types.Issue{
			Severity: types.SeverityError,
			Message:  "Description contains second-person pronouns (you/your)",
			Location: locDescription,
			Fix:      "Use third-person: 'This skill should be used when...' not 'Use this when you...'",
		})
	}
	return issues
}

func (r *manifestRule) checkSections(body string) []types.Issue {
	var issues []types.Issue
	for _, section := range r.rules.Sections {
		if section.Regexp.MatchString(body) {
			continue
		}
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Message:  "Missing recommended section: " + section.Description,
			Location: locBody,
			Fix:      "Add a section for " + section.Description,
		})
	}
	return issues
}

// checkForbidden reports each forbidden pattern once per body line it
// appears on, numbered relative to the whole file.
func (r *manifestRule) checkForbidden(doc *frontend.Document) []types.Issue {
	var issues []types.Issue
	for i, line := range strings.Split(doc.Body, "\n") {
		for _, p := range r.rules.Forbidden {
			if !p.MatchString(line) {
				continue
			}
			issues = append(issues, types.Issue{
				Severity: p.Severity,
				Message:  fmt.Sprintf("Found %s: '%s...'", p.Name, textutil.Truncate(strings.TrimSpace(line), r.rules.Excerpt)),
				Location: locManifest,
				Line:     i + 1 + doc.BodyOffset,
				Fix:      p.Fix,
			})
		}
	}
	return issues
}

func (r *manifestRule) checkBodyLength(body string) []types.Issue {
	words := textutil.WordCount(body)
	switch {
	case words < r.rules.MinBodyWords:
		return []types.Issue{{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%s body is very short (%d words)", types.ManifestFile, words),
			Location: locManifest,
			Fix:      "Add more detail about how to use the skill (aim for 200-5000 words)",
		}}
	case words > r.rules.MaxBodyWords:
		return []types.Issue{{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%s body is very long (%d words)", types.ManifestFile, words),
			Location: locManifest,
			Fix:      "Consider moving detailed content to references/ folder (keep " + types.ManifestFile + " under 5000 words)",
		}}
	}
	return nil
}
