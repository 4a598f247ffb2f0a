package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/skillpack/internal/prompt"
)

const skillDescription = "Generates comparison tables for investment memos when analysts request peer valuation data."

func validSkillMD() string {
	para := strings.Repeat("Comparable company multiples support the valuation narrative. ", 3)
	return "---\nname: test-skill\ndescription: " + skillDescription + "\nlicense: MIT\n---\n\n" +
		"# Test Skill\n\n" +
		"## Overview\n\n" + para + "\n\n" +
		"## When to Use\n\n" + para + "\n\n" +
		"## How to Use\n\n" + para + "\n"
}

const warnedSkillMD = "---\nname: test-skill\ndescription: " + skillDescription + "\nlicense: MIT\n---\n# T\n"

// workspace switches to an empty directory so no config file is picked up.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return dir
}

func writeSkill(t *testing.T, dir, name, skillMD string) string {
	t.Helper()
	root := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "SKILL.md"), []byte(skillMD), 0o644))
	script := "\"\"\"Tool.\"\"\"\n\n\ndef main():\n    try:\n        pass\n    except OSError:\n        pass\n\n\nif __name__ == '__main__':\n    main()\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", "tool.py"), []byte(script), 0o644))
	return root
}

type result struct {
	stdout, stderr string
	err            error
}

func run(t *testing.T, a *app, args ...string) result {
	t.Helper()
	if a == nil {
		a = newApp()
	}
	root := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--no-color"))
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestValidateCommand(t *testing.T) {
	dir := workspace(t)
	good := writeSkill(t, dir, "test-skill", validSkillMD())
	warned := writeSkill(t, filepath.Join(dir, "w"), "test-skill", warnedSkillMD)
	bad := writeSkill(t, filepath.Join(dir, "b"), "test-skill", "no frontmatter\n")

	t.Run("valid", func(t *testing.T) {
		res := run(t, nil, "validate", good)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "VALIDATION PASSED")
		assert.Contains(t, res.stdout, "Skill: test-skill")
	})

	t.Run("invalid exits 1", func(t *testing.T) {
		res := run(t, nil, "validate", bad)
		assert.Equal(t, ExitFailure, exitCode(res.err))
		assert.Contains(t, res.stdout, "✗ VALIDATION FAILED")
	})

	t.Run("warnings pass unless strict", func(t *testing.T) {
		res := run(t, nil, "validate", warned)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "PASSED WITH WARNINGS")

		res = run(t, nil, "validate", warned, "--strict")
		assert.Equal(t, ExitFailure, exitCode(res.err))
	})

	t.Run("json", func(t *testing.T) {
		res := run(t, nil, "validate", bad, "--json")
		assert.Equal(t, ExitFailure, exitCode(res.err))

		var report struct {
			Valid     bool   `json:"valid"`
			SkillName string `json:"skill_name"`
			Issues    []struct {
				Severity   string `json:"severity"`
				LineNumber *int   `json:"line_number"`
			} `json:"issues"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
		assert.False(t, report.Valid)
		assert.Equal(t, "test-skill", report.SkillName)
		require.NotEmpty(t, report.Issues)
		assert.Equal(t, "ERROR", report.Issues[0].Severity)
		require.NotNil(t, report.Issues[0].LineNumber)
		assert.Equal(t, 1, *report.Issues[0].LineNumber)
	})

	t.Run("missing path", func(t *testing.T) {
		res := run(t, nil, "validate", filepath.Join(dir, "nope"))
		assert.Equal(t, ExitFailure, exitCode(res.err))
		assert.Contains(t, res.stdout, "Skill path does not exist")
	})
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestPackageCommand(t *testing.T) {
	t.Run("writes archive and banner", func(t *testing.T) {
		dir := workspace(t)
		bundle := writeSkill(t, dir, "test-skill", validSkillMD())

		res := run(t, nil, "package", bundle)

		require.NoError(t, res.err, res.stderr)
		archivePath := filepath.Join(bundle, "test-skill.zip")
		assert.Equal(t, []string{"SKILL.md", "scripts/tool.py", "manifest.json"}, zipNames(t, archivePath))
		assert.Contains(t, res.stdout, "✓ SUCCESS! Skill packaged successfully")
		assert.Contains(t, res.stdout, "Files: 3")
	})

	t.Run("validation errors fail", func(t *testing.T) {
		dir := workspace(t)
		bundle := writeSkill(t, dir, "test-skill", "no frontmatter\n")

		res := run(t, nil, "package", bundle)

		assert.Equal(t, ExitFailure, exitCode(res.err))
		assert.Contains(t, res.stderr, "Error packaging skill")
		assert.NoFileExists(t, filepath.Join(bundle, "test-skill.zip"))
	})

	t.Run("declined prompt exits 1", func(t *testing.T) {
		dir := workspace(t)
		bundle := writeSkill(t, dir, "test-skill", warnedSkillMD)
		a := newApp()
		a.confirm = prompt.AlwaysNo

		res := run(t, a, "package", bundle)

		assert.Equal(t, ExitFailure, exitCode(res.err))
		assert.Contains(t, res.stderr, "Packaging cancelled.")
	})

	t.Run("yes flag accepts", func(t *testing.T) {
		dir := workspace(t)
		bundle := writeSkill(t, dir, "test-skill", warnedSkillMD)
		out := filepath.Join(dir, "dist", "custom.zip")

		res := run(t, nil, "package", bundle, "--yes", "-o", out)

		require.NoError(t, res.err, res.stderr)
		assert.FileExists(t, out)
	})

	t.Run("interrupt exits 130", func(t *testing.T) {
		dir := workspace(t)
		bundle := writeSkill(t, dir, "test-skill", warnedSkillMD)
		a := newApp()
		a.confirm = func(context.Context, string) (bool, error) { return false, context.Canceled }

		res := run(t, a, "package", bundle)

		assert.Equal(t, ExitInterrupted, exitCode(res.err))
		assert.Contains(t, res.stderr, "Packaging cancelled by user.")
	})

	t.Run("no bundle shows help", func(t *testing.T) {
		workspace(t)

		res := run(t, nil, "package")

		assert.Equal(t, ExitFailure, exitCode(res.err))
		assert.Contains(t, res.stdout, "skillpack package")
	})
}

func TestPackageBatchCommand(t *testing.T) {
	dir := workspace(t)
	skills := filepath.Join(dir, "skills")
	writeSkill(t, skills, "alpha", strings.Replace(validSkillMD(), "test-skill", "alpha", 1))
	writeSkill(t, skills, "beta", "no frontmatter\n")

	res := run(t, nil, "package", "--batch", skills)

	require.NoError(t, res.err, res.stderr)
	assert.FileExists(t, filepath.Join(skills, "alpha", "alpha.zip"))
	assert.Contains(t, res.stdout, "Total skills: 2")
	assert.Contains(t, res.stdout, "Successfully packaged: 1")
	assert.Contains(t, res.stdout, "  - beta:")

	res = run(t, nil, "package", "--batch", skills, "--pattern", "beta")
	assert.Equal(t, ExitFailure, exitCode(res.err))

	res = run(t, nil, "package", "--batch", skills, "--pattern", "zeta*")
	assert.Equal(t, ExitFailure, exitCode(res.err))
	assert.Contains(t, res.stderr, "No skills found")
}

func TestConfigFileApplies(t *testing.T) {
	dir := workspace(t)
	bundle := writeSkill(t, dir, "test-skill", validSkillMD())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skillpackrc.json"), []byte(`{"format": "json"}`), 0o644))

	res := run(t, nil, "validate", bundle)

	require.NoError(t, res.err)
	assert.True(t, json.Valid([]byte(res.stdout)), res.stdout)
}

func TestInvalidConfigFails(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skillpackrc.json"), []byte(`{"format": "xml"}`), 0o644))

	res := run(t, nil, "validate", dir)

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid format")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 7, exitCode(&ExitError{Code: 7}))
	assert.Equal(t, ExitInterrupted, exitCode(context.Canceled))
	assert.Equal(t, ExitFailure, exitCode(errors.New("boom")))

	wrapped := &ExitError{Code: ExitFailure, Err: errors.New("inner")}
	assert.Equal(t, "inner", wrapped.Error())
	assert.Equal(t, "exit status 1", (&ExitError{Code: 1}).Error())
}

func TestValidateBaseline(t *testing.T) {
	dir := workspace(t)
	bundle := writeSkill(t, dir, "test-skill", "no frontmatter\n")

	res := run(t, nil, "validate", bundle, "--create-baseline")
	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(bundle, ".skillpackbaseline.json"))

	res = run(t, nil, "validate", bundle, "--baseline")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "VALIDATION PASSED")

	require.NoError(t, os.WriteFile(filepath.Join(bundle, "references.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "scripts", "creds.py"), []byte("password = 'hunter2'\n"), 0o644))
	res = run(t, nil, "validate", bundle, "--baseline")
	assert.Equal(t, ExitFailure, exitCode(res.err))
	assert.Contains(t, res.stdout, "Hardcoded password detected in creds.py")
	assert.NotContains(t, res.stdout, "must start with YAML frontmatter")
}
