// Package baseline records the issues a bundle already has so later
// validation runs report only new ones.
package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dotcommander/skillpack/internal/types"
)

// DefaultFile is the baseline file name used when none is given.
const DefaultFile = ".skillpackbaseline.json"

var (
	doubleQuoted = regexp.MustCompile(`"[^"]+"`)
	singleQuoted = regexp.MustCompile(`(^|\s)'([^']+)'(\s|$|[.,:])`)
	numbers      = regexp.MustCompile(`\b\d+\b`)
)

// Baseline represents a snapshot of known issues that should be ignored
type Baseline struct {
	Version      string          `json:"version"`
	CreatedAt    string          `json:"created_at"`
	Fingerprints []string        `json:"fingerprints"`
	index        map[string]bool // For fast lookup
}

// CreateBaseline creates a baseline from the issues found in the bundle at root.
func CreateBaseline(root string, issues []types.Issue) *Baseline {
	fingerprints := make([]string, 0, len(issues))
	index := make(map[string]bool)

	for _, issue := range issues {
		fp := fingerprint(root, issue)
		if !index[fp] {
			fingerprints = append(fingerprints, fp)
			index[fp] = true
		}
	}

	// Sort for deterministic output
	sort.Strings(fingerprints)

	return &Baseline{
		Version:      "1.0",
		Fingerprints: fingerprints,
		index:        index,
	}
}

// LoadBaseline loads a baseline from a JSON file
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}

	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}

	return &b, nil
}

// SaveBaseline saves the baseline to a JSON file
func (b *Baseline) SaveBaseline(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

// IsKnown checks if an issue found in the bundle at root is in the baseline
func (b *Baseline) IsKnown(root string, issue types.Issue) bool {
	if b.index == nil {
		return false
	}
	return b.index[fingerprint(root, issue)]
}

// Filter drops known issues and returns the rest with the number dropped.
func (b *Baseline) Filter(root string, issues []types.Issue) ([]types.Issue, int) {
	var kept []types.Issue
	suppressed := 0
	for _, issue := range issues {
		if b.IsKnown(root, issue) {
			suppressed++
			continue
		}
		kept = append(kept, issue)
	}
	return kept, suppressed
}

// fingerprint hashes severity, bundle-relative location and the normalized
// message. Line numbers are left out since they shift as files are edited.
func fingerprint(root string, issue types.Issue) string {
	location := relativeTo(root, issue.Location)
	msg := issue.Message
	if prefix := rootPrefix(root); prefix != "" {
		msg = strings.ReplaceAll(msg, prefix, "")
	}
	msg = normalizeMessage(msg)

	data := fmt.Sprintf("%s|%s|%s", issue.Severity, location, msg)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// rootPrefix is root followed by a separator, or "" when root carries no
// path worth stripping.
func rootPrefix(root string) string {
	if root == "" || root == "." {
		return ""
	}
	return strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)
}

func relativeTo(root, location string) string {
	if root == "" || location == "" {
		return location
	}
	if location != root && !filepath.IsAbs(location) && !strings.HasPrefix(location, rootPrefix(root)) {
		return location
	}
	rel, err := filepath.Rel(root, location)
	if err != nil || strings.HasPrefix(rel, "..") {
		return location
	}
	return filepath.ToSlash(rel)
}

// normalizeMessage replaces quoted values and numbers with placeholders so
// similar issues share a fingerprint.
func normalizeMessage(msg string) string {
	msg = doubleQuoted.ReplaceAllString(msg, `"*"`)
	msg = singleQuoted.ReplaceAllString(msg, `$1'*'$3`)
	msg = numbers.ReplaceAllString(msg, `N`)
	return strings.Join(strings.Fields(msg), " ")
}
