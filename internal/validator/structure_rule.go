package validator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dotcommander/skillpack/internal/rules"
	"github.com/dotcommander/skillpack/internal/schema"
	"github.com/dotcommander/skillpack/internal/types"
)

// structureRule checks the bundle layout: folder name, root entries and the
// optional subdirectories.
type structureRule struct {
	rules  rules.RuleSet
	schema *schema.Validator
}

func (r *structureRule) Name() string { return "file structure" }

func (r *structureRule) Check(_ context.Context, b *Bundle) ([]types.Issue, error) {
	var issues []types.Issue

	if !r.schema.IsSlug(b.Name) {
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Skill folder name '%s' should use lowercase and hyphens only", b.Name),
			Location: b.Path,
			Fix:      "Rename folder to use format: lowercase-with-hyphens",
		})
	}

	entries, err := os.ReadDir(b.Path)
	if err != nil {
		return issues, fmt.Errorf("listing bundle root: %w", err)
	}

	allowed := make(map[string]bool, len(r.rules.RootAllowList)+1)
	for _, name := range r.rules.RootAllowList {
		allowed[name] = true
	}
	allowed[b.Name+".zip"] = true

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || allowed[name] {
			continue
		}
		issues = append(issues, types.Issue{
			Severity: types.SeverityInfo,
			Message:  "Unexpected item in skill root: " + name,
			Location: b.Join(name),
			Fix:      "Only include: SKILL.md, scripts/, references/, assets/, TESTING_GUIDE/, LICENSE.txt",
		})
	}

	scriptsIssues, err := r.checkScriptsDir(b)
	issues = append(issues, scriptsIssues...)
	if err != nil {
		return issues, err
	}

	refIssues, err := r.checkReferencesDir(b)
	issues = append(issues, refIssues...)
	if err != nil {
		return issues, err
	}

	if info, err := os.Stat(b.Join(types.AssetsDir)); err == nil && !info.IsDir() {
		issues = append(issues, notDirIssue(types.AssetsDir, b.Join(types.AssetsDir)))
	}

	if _, err := os.Stat(b.Join(types.TestingDir)); err != nil {
		issues = append(issues, types.Issue{
			Severity: types.SeverityInfo,
			Message:  "No " + types.TestingDir + "/ folder found",
			Location: b.Path,
			Fix:      "Consider adding " + types.TestingDir + "/ with sample data and test scenarios",
		})
	}

	return issues, nil
}

func (r *structureRule) checkScriptsDir(b *Bundle) ([]types.Issue, error) {
	dir := b.Join(types.ScriptsDir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil
	}
	if !info.IsDir() {
		return []types.Issue{notDirIssue(types.ScriptsDir, dir)}, nil
	}

	scripts, err := b.Files.FindTopLevel(types.ScriptsDir, "py")
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		return []types.Issue{{
			Severity: types.SeverityWarning,
			Message:  "scripts/ folder exists but contains no .py files",
			Location: dir,
			Fix:      "Remove empty scripts/ folder or add Python scripts",
		}}, nil
	}
	return nil, nil
}

func (r *structureRule) checkReferencesDir(b *Bundle) ([]types.Issue, error) {
	dir := b.Join(types.ReferencesDir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil
	}
	if !info.IsDir() {
		return []types.Issue{notDirIssue(types.ReferencesDir, dir)}, nil
	}

	docs, err := b.Files.FindTopLevel(types.ReferencesDir, "md", "txt")
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []types.Issue{{
			Severity: types.SeverityInfo,
			Message:  "references/ folder exists but contains no documentation files",
			Location: dir,
			Fix:      "Add .md or .txt reference files or remove empty folder",
		}}, nil
	}
	return nil, nil
}

func notDirIssue(name, location string) types.Issue {
	return types.Issue{
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("'%s' exists but is not a directory", name),
		Location: location,
		Fix:      fmt.Sprintf("Remove the file and create a directory if %s are needed", name),
	}
}
