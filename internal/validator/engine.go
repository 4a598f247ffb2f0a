// Package validator implements the skill bundle rule engine.
//
// The engine checks two preconditions (the bundle directory and its SKILL.md
// exist) and then runs its rule groups in a fixed order. Each group returns
// its own issues; a group that fails is reported as one ERROR naming it and
// the remaining groups still run.
package validator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dotcommander/skillpack/internal/discovery"
	"github.com/dotcommander/skillpack/internal/logging"
	"github.com/dotcommander/skillpack/internal/pycheck"
	"github.com/dotcommander/skillpack/internal/rules"
	"github.com/dotcommander/skillpack/internal/schema"
	"github.com/dotcommander/skillpack/internal/types"
)

// Rule is one group of checks run against a bundle.
type Rule interface {
	// Name is used in the synthetic issue reported when Check fails.
	Name() string
	// Check returns the issues found. A non-nil error marks the group as
	// failed; issues returned alongside it are kept.
	Check(ctx context.Context, b *Bundle) ([]types.Issue, error)
}

// Bundle is the directory under validation.
type Bundle struct {
	// Path is the bundle path as given by the caller.
	Path string
	// Name is the base name of the bundle directory.
	Name string
	// Files searches inside the bundle.
	Files *discovery.FileDiscovery
}

// Join returns a path inside the bundle.
func (b *Bundle) Join(elem ...string) string {
	return filepath.Join(append([]string{b.Path}, elem...)...)
}

// NewBundle describes the bundle at path without touching the filesystem.
func NewBundle(path string) *Bundle {
	name := filepath.Base(filepath.Clean(path))
	if abs, err := filepath.Abs(path); err == nil {
		name = filepath.Base(abs)
	}
	return &Bundle{
		Path:  path,
		Name:  name,
		Files: discovery.NewFileDiscovery(path),
	}
}

// Engine runs the rule groups.
type Engine struct {
	ruleSet rules.RuleSet
	groups  []Rule
	logger  *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRules replaces the standard rule groups.
func WithRules(groups ...Rule) Option {
	return func(e *Engine) {
		e.groups = groups
	}
}

// New builds an engine running the standard rule groups over rs.
func New(rs rules.RuleSet, opts ...Option) (*Engine, error) {
	sv, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("loading frontmatter schema: %w", err)
	}

	e := &Engine{
		ruleSet: rs,
		logger:  logging.Discard(),
		groups: []Rule{
			&manifestRule{rules: rs, schema: sv},
			&structureRule{rules: rs, schema: sv},
			&scriptsRule{checker: pycheck.NewChecker()},
			&contentRule{rules: rs},
			&secretsRule{rules: rs},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RuleSet returns the rule tables the engine was built with.
func (e *Engine) RuleSet() rules.RuleSet {
	return e.ruleSet
}

// Validate checks the bundle at path. The bundle is valid when no issue has
// ERROR severity. If ctx is cancelled between groups the issues collected so
// far are returned with valid=false.
func (e *Engine) Validate(ctx context.Context, path string) (bool, []types.Issue) {
	if issue, ok := checkPreconditions(path); !ok {
		return false, []types.Issue{issue}
	}

	b := NewBundle(path)
	var issues []types.Issue
	for _, group := range e.groups {
		if ctx.Err() != nil {
			return false, issues
		}
		found := e.runRule(ctx, group, b)
		e.logger.Debug("rule finished", "rule", group.Name(), "issues", len(found))
		issues = append(issues, found...)
	}

	return !types.HasErrors(issues), issues
}

// runRule isolates a group's failure, including a panic, into a single issue.
func (e *Engine) runRule(ctx context.Context, group Rule, b *Bundle) (issues []types.Issue) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = append(issues, failureIssue(group, fmt.Errorf("panic: %v", rec)))
		}
	}()

	found, err := group.Check(ctx, b)
	if err != nil {
		return append(found, failureIssue(group, err))
	}
	return found
}

func failureIssue(group Rule, err error) types.Issue {
	return types.Issue{
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("Error in %s rule: %v", group.Name(), err),
		Fix:      "Ensure the bundle files are readable and report the error if it persists",
	}
}

func checkPreconditions(path string) (types.Issue, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Issue{
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Skill path does not exist: %s", path),
			Fix:      "Ensure the path is correct and the directory exists",
		}, false
	}
	if !info.IsDir() {
		return types.Issue{
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Skill path is not a directory: %s", path),
			Fix:      "Provide a path to a skill directory, not a file",
		}, false
	}
	if _, err := os.Stat(filepath.Join(path, types.ManifestFile)); err != nil {
		return types.Issue{
			Severity: types.SeverityError,
			Message:  types.ManifestFile + " file not found",
			Location: path,
			Fix:      "Every skill must have a " + types.ManifestFile + " file in the root directory",
		}, false
	}
	return types.Issue{}, true
}
