// Package rules holds the pattern tables the validator and packager run on.
// A RuleSet is plain data: build one with Default, adjust the copy if needed,
// and hand it to the engine.
package rules

import (
	"regexp"
	"unicode/utf8"

	"github.com/dotcommander/skillpack/internal/types"
)

// Pattern is a line-level content check. A match whose text also matches
// Except is ignored and scanning resumes at the next rune.
type Pattern struct {
	Regexp   *regexp.Regexp
	Except   *regexp.Regexp
	Name     string
	Severity types.Severity
	Fix      string
}

// MatchString reports whether s contains an accepted match.
func (p Pattern) MatchString(s string) bool {
	if p.Except == nil {
		return p.Regexp.MatchString(s)
	}
	for start := 0; start < len(s); {
		loc := p.Regexp.FindStringIndex(s[start:])
		if loc == nil {
			return false
		}
		if !p.Except.MatchString(s[start+loc[0] : start+loc[1]]) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start+loc[0]:])
		start += loc[0] + size
	}
	return false
}

// Section is a recommended markdown heading.
type Section struct {
	Regexp      *regexp.Regexp
	Description string
}

// Secret is a credential shape reported by the secrets rule.
type Secret struct {
	Regexp      *regexp.Regexp
	Description string
}

// RuleSet is the complete configuration of the validator and packager.
type RuleSet struct {
	// RequiredKeys must appear in the SKILL.md frontmatter.
	RequiredKeys []string
	// Sections are the recommended body headings.
	Sections []Section
	// Forbidden is checked against every body line.
	Forbidden []Pattern
	// SecondPerson flags pronouns in the frontmatter description.
	SecondPerson *regexp.Regexp
	// Placeholder is searched across text files by the content rule.
	Placeholder *regexp.Regexp
	// Secrets is searched across text and config files.
	Secrets []Secret
	// Exclusions are doublestar patterns omitted from archives.
	Exclusions []string
	// RootAllowList names the entries expected at the bundle root, besides
	// dotfiles and the bundle's own archive.
	RootAllowList []string
	// ContentExts and SecretExts select the files each scan reads.
	ContentExts []string
	SecretExts  []string

	MinDescriptionWords int
	MaxDescriptionWords int
	MinBodyWords        int
	MaxBodyWords        int
	// Excerpt caps the runes of matched text quoted in messages.
	Excerpt int
	// LargeAssetBytes is the size at which asset checksums are skipped.
	LargeAssetBytes int64
}

// Default returns a fresh copy of the standard rule set.
func Default() RuleSet {
	return RuleSet{
		RequiredKeys: []string{"name", "description", "license"},
		Sections: []Section{
			{regexp.MustCompile(`(?m)^#\s+.+$`), "Main skill title (H1 header)"},
			{regexp.MustCompile(`(?m)^##\s+(?:Overview|About)`), "Overview or About section"},
			{regexp.MustCompile(`(?m)^##\s+(?:When to Use|Usage)`), "When to Use or Usage section"},
			{regexp.MustCompile(`(?m)^##\s+(?:How to Use|Instructions)`), "How to Use or Instructions section"},
		},
		Forbidden: []Pattern{
			{
				Regexp:   regexp.MustCompile(`(?i)\byou\b`),
				Name:     "Second-person pronoun 'you'",
				Severity: types.SeverityError,
				Fix:      "Use imperative form instead (e.g., 'Load the file' not 'You should load')",
			},
			{
				Regexp:   regexp.MustCompile(`(?i)\byour\b`),
				Name:     "Second-person possessive 'your'",
				Severity: types.SeverityError,
				Fix:      "Use imperative form instead (e.g., 'the file' not 'your file')",
			},
			{
				Regexp:   regexp.MustCompile(`\[.*?\]`),
				Except:   regexp.MustCompile(`(?i)^\[(?:SKILL_NAME|skill-name)`),
				Name:     "Placeholder text in brackets",
				Severity: types.SeverityWarning,
				Fix:      "Replace [PLACEHOLDER] with actual content",
			},
			{
				Regexp:   regexp.MustCompile(`(?i)Lorem ipsum`),
				Name:     "Lorem ipsum placeholder",
				Severity: types.SeverityWarning,
				Fix:      "Replace with real content",
			},
			{
				Regexp:   regexp.MustCompile(`(?i)TODO:`),
				Name:     "TODO comment",
				Severity: types.SeverityWarning,
				Fix:      "Complete TODO before finalizing",
			},
			{
				Regexp:   regexp.MustCompile(`(?i)FIXME:`),
				Name:     "FIXME comment",
				Severity: types.SeverityWarning,
				Fix:      "Fix issue before finalizing",
			},
			{
				Regexp:   regexp.MustCompile(`(?i)XXX:`),
				Name:     "XXX marker",
				Severity: types.SeverityWarning,
				Fix:      "Resolve marked issue",
			},
		},
		SecondPerson: regexp.MustCompile(`(?i)\byou\b|\byour\b`),
		Placeholder:  regexp.MustCompile(`(?i)\[(?:YOUR|FILL|INSERT|DESCRIBE|REPLACE|TODO|FIXME)[_\s][^\]]*\]`),
		Secrets: []Secret{
			{regexp.MustCompile(`(?i)api[_-]?key[\s]*[:=][\s]*["']?[a-zA-Z0-9]{20,}`), "Possible API key"},
			{regexp.MustCompile(`(?i)password[\s]*[:=][\s]*["'][^"']+["']`), "Hardcoded password"},
			{regexp.MustCompile(`(?i)secret[\s]*[:=][\s]*["'][^"']+["']`), "Hardcoded secret"},
			{regexp.MustCompile(`(?i)(sk|pk)_live_[a-zA-Z0-9]{32,}`), "API key pattern (Stripe-like)"},
			{regexp.MustCompile(`(?i)ghp_[a-zA-Z0-9]{36}`), "GitHub personal access token"},
			{regexp.MustCompile(`(?i)xox[baprs]-[0-9]{12}-[0-9]{12}-[a-zA-Z0-9]{24}`), "Slack token"},
			{regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`), "AWS Access Key ID"},
			{regexp.MustCompile(`(?i)["']?access_token["']?\s*[:=]\s*["'][^"']+["']`), "Access token"},
		},
		Exclusions: []string{
			types.TestingDir,
			types.TestingDir + "/**",
			"*.zip",
			".*",
			".*/**",
			".git",
			".git/**",
			".gitignore",
			".DS_Store",
			"Thumbs.db",
			"__pycache__",
			"__pycache__/**",
			"*.pyc",
			"*.pyo",
			"*.pyd",
			"test_*.py",
			// test_*.py also drops scripts nested under test_* directories.
			"**/test_*/**/*.py",
			"*_test.py",
			"tests",
			"tests/**",
			"*.backup",
			"*.bak",
			"*.tmp",
			"*~",
		},
		RootAllowList: []string{
			types.ManifestFile,
			types.ScriptsDir,
			types.ReferencesDir,
			types.AssetsDir,
			types.TestingDir,
			types.LicenseTxtFile,
			types.LicenseFile,
			"README.md",
			types.ArchiveIndex,
			".gitignore",
		},
		ContentExts:         []string{"md", "txt", "py"},
		SecretExts:          []string{"md", "txt", "py", "yaml", "yml", "json"},
		MinDescriptionWords: 10,
		MaxDescriptionWords: 100,
		MinBodyWords:        50,
		MaxBodyWords:        5000,
		Excerpt:             50,
		LargeAssetBytes:     10 * 1024 * 1024,
	}
}

// WithExclusions returns a copy of rs with extra exclusion patterns appended.
func (rs RuleSet) WithExclusions(extra ...string) RuleSet {
	if len(extra) == 0 {
		return rs
	}
	merged := make([]string, 0, len(rs.Exclusions)+len(extra))
	merged = append(merged, rs.Exclusions...)
	merged = append(merged, extra...)
	rs.Exclusions = merged
	return rs
}
