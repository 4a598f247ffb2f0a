package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dotcommander/skillpack/internal/frontend"
	"github.com/dotcommander/skillpack/internal/types"
)

// FileEntry records one archived file. Checksum is empty for assets at or
// above the large-asset threshold.
type FileEntry struct {
	Checksum string `json:"checksum,omitempty"`
	Size     int64  `json:"size"`
}

// Files groups the archived files the way the bundle lays them out. Category
// maps are keyed by bundle-relative path and omitted when empty.
type Files struct {
	Manifest   FileEntry            `json:"SKILL.md"`
	Scripts    map[string]FileEntry `json:"scripts,omitempty"`
	References map[string]FileEntry `json:"references,omitempty"`
	Assets     map[string]FileEntry `json:"assets,omitempty"`
}

// Manifest is written to manifest.json as the last archive entry.
type Manifest struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	Created         string `json:"created"`
	PackagerVersion string `json:"packager_version"`
	Files           Files  `json:"files"`
	Description     string `json:"description,omitempty"`
	SkillName       string `json:"skill_name,omitempty"`
}

// Marshal renders the manifest as 2-space indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
}

// category returns the map for a content directory, creating it on demand.
func (f *Files) category(dir string) map[string]FileEntry {
	var m *map[string]FileEntry
	switch dir {
	case types.ScriptsDir:
		m = &f.Scripts
	case types.ReferencesDir:
		m = &f.References
	case types.AssetsDir:
		m = &f.Assets
	default:
		return nil
	}
	if *m == nil {
		*m = make(map[string]FileEntry)
	}
	return *m
}

// formatCreated renders t as UTC RFC 3339 with a Z suffix.
func formatCreated(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// readFrontmatterMeta returns the name and description declared in the
// SKILL.md frontmatter, decoded the same way the validator decodes them.
// Anything unparsable yields empty strings.
func readFrontmatterMeta(path string) (name, description string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	_, data, err := frontend.ParseYAMLFrontmatter(string(content))
	if err != nil {
		return "", ""
	}
	name, _ = data["name"].(string)
	description, _ = data["description"].(string)
	return name, description
}
