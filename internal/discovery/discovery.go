// Package discovery finds files inside a skill bundle and bundles inside a
// directory. Paths it returns are relative to the searched root and use
// forward slashes.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/dotcommander/skillpack/internal/types"
)

// File is a regular file discovered under a root directory.
type File struct {
	Path    string // absolute or root-joined path
	RelPath string // forward-slash path relative to the root
	Size    int64
}

// FileDiscovery manages file discovery operations
type FileDiscovery struct {
	rootPath string
	fsys     fs.FS
}

// NewFileDiscovery creates a new FileDiscovery instance
func NewFileDiscovery(rootPath string) *FileDiscovery {
	return &FileDiscovery{
		rootPath: rootPath,
		fsys:     os.DirFS(rootPath),
	}
}

// FindByExtension returns files with the given extensions anywhere under the
// root, grouped by extension in the order given and sorted within each
// group. Files with any parent directory named in skipDirs are dropped.
func (fd *FileDiscovery) FindByExtension(exts []string, skipDirs ...string) ([]File, error) {
	var files []File
	for _, ext := range exts {
		pattern := "**/*." + ext
		matches, err := fd.glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if underAny(match, skipDirs) {
				continue
			}
			if f, ok := fd.processMatch(match); ok {
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// FindUnder returns every regular file below dir (relative to the root),
// sorted by path. A missing dir yields no files and no error.
func (fd *FileDiscovery) FindUnder(dir string) ([]File, error) {
	info, err := os.Stat(filepath.Join(fd.rootPath, dir))
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	matches, err := fd.glob(dir + "/**")
	if err != nil {
		return nil, err
	}
	var files []File
	for _, match := range matches {
		if f, ok := fd.processMatch(match); ok {
			files = append(files, f)
		}
	}
	return files, nil
}

// FindTopLevel returns regular files directly inside dir whose names end in
// one of the extensions, sorted by name.
func (fd *FileDiscovery) FindTopLevel(dir string, exts ...string) ([]File, error) {
	var files []File
	for _, ext := range exts {
		matches, err := fd.glob(dir + "/*." + ext)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if f, ok := fd.processMatch(match); ok {
				files = append(files, f)
			}
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func (fd *FileDiscovery) glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fd.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	fullPath := filepath.Join(fd.rootPath, filepath.FromSlash(match))

	info, err := os.Stat(fullPath)
	if err != nil || !info.Mode().IsRegular() {
		return File{}, false
	}

	return File{
		Path:    fullPath,
		RelPath: match,
		Size:    info.Size(),
	}, true
}

func underAny(rel string, dirs []string) bool {
	for _, part := range strings.Split(path.Dir(rel), "/") {
		for _, d := range dirs {
			if part == d {
				return true
			}
		}
	}
	return false
}

// FindBundles returns the immediate subdirectories of dir that contain a
// SKILL.md file and whose names match nameGlob, sorted by name.
func FindBundles(dir, nameGlob string) ([]string, error) {
	if nameGlob == "" {
		nameGlob = "*"
	}
	matcher, err := glob.Compile(nameGlob)
	if err != nil {
		return nil, fmt.Errorf("invalid bundle pattern %q: %w", nameGlob, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", dir, err)
	}

	var bundles []string
	for _, entry := range entries {
		if !entry.IsDir() || !matcher.Match(entry.Name()) {
			continue
		}
		bundle := filepath.Join(dir, entry.Name())
		if info, err := os.Stat(filepath.Join(bundle, types.ManifestFile)); err == nil && !info.IsDir() {
			bundles = append(bundles, bundle)
		}
	}
	return bundles, nil
}
