package validator

import (
	"context"
	"fmt"
	"os"
	"path"
	"unicode/utf8"

	"github.com/dotcommander/skillpack/internal/discovery"
	"github.com/dotcommander/skillpack/internal/rules"
	"github.com/dotcommander/skillpack/internal/textutil"
	"github.com/dotcommander/skillpack/internal/types"
)

// contentRule reports placeholder tokens left in text files.
type contentRule struct {
	rules rules.RuleSet
}

func (r *contentRule) Name() string { return "content quality" }

func (r *contentRule) Check(_ context.Context, b *Bundle) ([]types.Issue, error) {
	files, err := b.Files.FindByExtension(r.rules.ContentExts, types.TestingDir)
	if err != nil {
		return nil, err
	}

	var issues []types.Issue
	for _, f := range files {
		content, ok := readText(f)
		if !ok {
			continue
		}
		for _, loc := range r.rules.Placeholder.FindAllStringIndex(content, -1) {
			issues = append(issues, types.Issue{
				Severity: types.SeverityWarning,
				Message:  "Placeholder text found: " + textutil.Truncate(content[loc[0]:loc[1]], r.rules.Excerpt),
				Location: f.RelPath,
				Line:     textutil.LineAtOffset(content, loc[0]),
				Fix:      "Replace placeholder with actual content",
			})
		}
	}
	return issues, nil
}

// secretsRule reports credentials committed into the bundle.
type secretsRule struct {
	rules rules.RuleSet
}

func (r *secretsRule) Name() string { return "secret scanning" }

func (r *secretsRule) Check(_ context.Context, b *Bundle) ([]types.Issue, error) {
	files, err := b.Files.FindByExtension(r.rules.SecretExts, types.TestingDir)
	if err != nil {
		return nil, err
	}

	var issues []types.Issue
	for _, f := range files {
		content, ok := readText(f)
		if !ok {
			continue
		}
		for _, secret := range r.rules.Secrets {
			for _, loc := range secret.Regexp.FindAllStringIndex(content, -1) {
				issues = append(issues, types.Issue{
					Severity: types.SeverityError,
					Message:  fmt.Sprintf("%s detected in %s", secret.Description, path.Base(f.RelPath)),
					Location: f.RelPath,
					Line:     textutil.LineAtOffset(content, loc[0]),
					Fix:      "Remove hardcoded secrets - use environment variables or configuration instead",
				})
			}
		}
	}
	return issues, nil
}

// readText returns the file as a string, or false when it cannot be read or
// is not UTF-8 text.
func readText(f discovery.File) (string, bool) {
	raw, err := os.ReadFile(f.Path)
	if err != nil || !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}
