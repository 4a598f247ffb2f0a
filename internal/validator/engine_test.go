package validator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/skillpack/internal/types"
)

func TestValidatePreconditions(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		valid, issues := validate(t, filepath.Join(t.TempDir(), "nope"))
		assert.False(t, valid)
		require.Len(t, issues, 1)
		assert.Equal(t, types.SeverityError, issues[0].Severity)
		assert.Contains(t, issues[0].Message, "does not exist")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "SKILL.md")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		valid, issues := validate(t, file)
		assert.False(t, valid)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "not a directory")
	})

	t.Run("missing manifest", func(t *testing.T) {
		path := newBundle(t, map[string]string{"scripts/a.py": "print(1)\n"})
		valid, issues := validate(t, path)
		assert.False(t, valid)
		require.Len(t, issues, 1)
		assert.Equal(t, types.SeverityError, issues[0].Severity)
		assert.Contains(t, issues[0].Message, types.ManifestFile)
		assert.Equal(t, path, issues[0].Location)
	})
}

func TestValidateValidBundle(t *testing.T) {
	path := newBundle(t, map[string]string{types.ManifestFile: validSkillMD()})

	valid, issues := validate(t, path)

	assert.True(t, valid, "issues: %v", messages(issues))
	assert.Zero(t, types.CountBySeverity(issues, types.SeverityError))
	assert.Zero(t, types.CountBySeverity(issues, types.SeverityWarning), "issues: %v", messages(issues))
	// Only the TESTING_GUIDE suggestion remains.
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityInfo, issues[0].Severity)
}

func TestValidateBrokenScript(t *testing.T) {
	path := newBundle(t, map[string]string{
		types.ManifestFile:  validSkillMD(),
		"scripts/broken.py": "\"\"\"Broken script.\"\"\"\n\n\ndef broken(:\n    pass\n",
	})

	valid, issues := validate(t, path)

	assert.False(t, valid)
	errs := types.FilterBySeverity(issues, types.SeverityError)
	require.Len(t, errs, 1, "issues: %v", messages(issues))
	assert.Contains(t, errs[0].Message, "syntax error")
	assert.Equal(t, 4, errs[0].Line)
	assert.Equal(t, filepath.Join(path, "scripts", "broken.py"), errs[0].Location)
}

func TestValidateIsIdempotent(t *testing.T) {
	path := newBundle(t, map[string]string{
		types.ManifestFile:     "---\nname: Bad_Name\n---\nyou wrote [SOMETHING] here\n",
		"scripts/tool.py":      "print('x')\n",
		"references/guide.md":  "See [YOUR_API] and api_key = 'abcdefghijklmnopqrstuvwxyz'\n",
		"notes.txt":            "stray",
		"assets":               "not a dir",
		"TESTING_GUIDE/fix.md": "[YOUR_DATA]",
	})
	e := newEngine(t)

	_, first := e.Validate(context.Background(), path)
	_, second := e.Validate(context.Background(), path)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

type stubRule struct {
	name   string
	issues []types.Issue
	err    error
	panic  bool
}

func (s stubRule) Name() string { return s.name }

func (s stubRule) Check(context.Context, *Bundle) ([]types.Issue, error) {
	if s.panic {
		panic("boom")
	}
	return s.issues, s.err
}

func TestValidateIsolatesRuleFailures(t *testing.T) {
	path := newBundle(t, map[string]string{types.ManifestFile: validSkillMD()})
	info := types.Issue{Severity: types.SeverityInfo, Message: "after"}
	partial := types.Issue{Severity: types.SeverityWarning, Message: "partial"}

	e := newEngine(t, WithRules(
		stubRule{name: "exploding", panic: true},
		stubRule{name: "failing", issues: []types.Issue{partial}, err: errors.New("disk gone")},
		stubRule{name: "healthy", issues: []types.Issue{info}},
	))

	valid, issues := e.Validate(context.Background(), path)

	assert.False(t, valid)
	want := []string{
		"ERROR: Error in exploding rule: panic: boom",
		"WARNING: partial",
		"ERROR: Error in failing rule: disk gone",
		"INFO: after",
	}
	assert.Equal(t, want, messages(issues))
}

func TestValidateStopsOnCancelledContext(t *testing.T) {
	path := newBundle(t, map[string]string{types.ManifestFile: validSkillMD()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	valid, issues := newEngine(t).Validate(ctx, path)

	assert.False(t, valid)
	assert.Empty(t, issues)
}
