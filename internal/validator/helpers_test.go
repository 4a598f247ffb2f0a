package validator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/skillpack/internal/rules"
	"github.com/dotcommander/skillpack/internal/types"
)

const validDescription = "Generates comparison tables for investment memos when analysts request peer valuation data."

func validBody() string {
	para := strings.Repeat("Comparable company multiples support the valuation narrative. ", 3)
	return "# Test Skill\n\n" +
		"## Overview\n\n" + para + "\n\n" +
		"## When to Use\n\n" + para + "\n\n" +
		"## How to Use\n\n" + para + "\n"
}

func validSkillMD() string {
	return "---\nname: test-skill\ndescription: " + validDescription + "\nlicense: MIT\n---\n\n" + validBody()
}

// newBundle writes files into <tmp>/test-skill and returns the bundle path.
func newBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "test-skill")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(rules.Default(), opts...)
	require.NoError(t, err)
	return e
}

func validate(t *testing.T, path string) (bool, []types.Issue) {
	t.Helper()
	return newEngine(t).Validate(context.Background(), path)
}

func messages(issues []types.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, string(i.Severity)+": "+i.Message)
	}
	return out
}

func findIssues(issues []types.Issue, sev types.Severity, substr string) []types.Issue {
	var out []types.Issue
	for _, i := range issues {
		if i.Severity == sev && strings.Contains(i.Message, substr) {
			out = append(out, i)
		}
	}
	return out
}
