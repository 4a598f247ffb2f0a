// Package archive packages a skill bundle into a zip file with an embedded
// checksum manifest.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dotcommander/skillpack/internal/discovery"
	"github.com/dotcommander/skillpack/internal/logging"
	"github.com/dotcommander/skillpack/internal/prompt"
	"github.com/dotcommander/skillpack/internal/rules"
	"github.com/dotcommander/skillpack/internal/types"
	"github.com/dotcommander/skillpack/internal/validator"
)

// Precondition and gate failures. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("skill path does not exist")
	ErrNotDirectory     = errors.New("skill path is not a directory")
	ErrMissingManifest  = errors.New(types.ManifestFile + " not found")
	ErrValidationFailed = errors.New("skill validation failed")
	// ErrCancelled marks a bundle skipped in batch mode because a
	// confirmation was declined.
	ErrCancelled = errors.New("packaging cancelled")
)

const (
	gateErrorLimit   = 5
	gateWarningLimit = 3
)

// Options controls a single Package call.
type Options struct {
	// Output is the archive path. Empty means <bundle>/<bundle-name>.zip.
	Output string
	// Validate runs the rule engine before packaging.
	Validate bool
	// Force packages despite validation errors and skips the warnings prompt.
	Force bool
}

// Result describes a written archive.
type Result struct {
	Name  string
	Path  string
	Size  int64
	Files int
}

// Packager writes bundle archives.
type Packager struct {
	engine          *validator.Engine
	rules           rules.RuleSet
	filter          *Filter
	confirm         prompt.ConfirmFunc
	logger          *log.Logger
	now             func() time.Time
	packagerVersion string
	manifestVersion string
}

// Option configures a Packager.
type Option func(*Packager)

// WithConfirm sets how overwrite and continue questions are answered.
func WithConfirm(confirm prompt.ConfirmFunc) Option {
	return func(p *Packager) {
		p.confirm = confirm
	}
}

// WithLogger sets the logger used for progress and gate output.
func WithLogger(logger *log.Logger) Option {
	return func(p *Packager) {
		p.logger = logger
	}
}

// WithClock sets the clock used for the manifest creation time.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		p.now = now
	}
}

// WithVersions sets the packager_version and version manifest fields.
func WithVersions(packagerVersion, manifestVersion string) Option {
	return func(p *Packager) {
		p.packagerVersion = packagerVersion
		p.manifestVersion = manifestVersion
	}
}

// NewPackager creates a Packager that validates with engine and filters with
// the engine's rule set. Confirmations are declined unless WithConfirm is given.
func NewPackager(engine *validator.Engine, opts ...Option) (*Packager, error) {
	rs := engine.RuleSet()
	filter, err := NewFilter(rs.Exclusions)
	if err != nil {
		return nil, err
	}

	p := &Packager{
		engine:          engine,
		rules:           rs,
		filter:          filter,
		confirm:         prompt.AlwaysNo,
		logger:          logging.Discard(),
		now:             time.Now,
		packagerVersion: "1.0",
		manifestVersion: "1.0",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Package writes the archive for the bundle at bundlePath. It returns nil and
// no error when a confirmation is declined.
func (p *Packager) Package(ctx context.Context, bundlePath string, opts Options) (*Result, error) {
	if err := checkBundle(bundlePath); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", bundlePath, err)
	}
	name := filepath.Base(abs)

	if opts.Validate {
		ok, err := p.gate(ctx, bundlePath, name, opts.Force)
		if err != nil || !ok {
			return nil, err
		}
	}

	output := opts.Output
	if output == "" {
		output = filepath.Join(abs, name+".zip")
	}
	if output, err = filepath.Abs(output); err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}

	if _, err := os.Stat(output); err == nil {
		p.logger.Warn("output file already exists", "path", output)
		ok, err := p.confirm(ctx, "Overwrite?")
		if err != nil {
			return nil, err
		}
		if !ok {
			p.logger.Info("packaging cancelled", "skill", name)
			return nil, nil
		}
		if err := os.Remove(output); err != nil {
			return nil, fmt.Errorf("removing existing archive: %w", err)
		}
	}

	p.logger.Info("packaging skill", "skill", name)
	count, err := p.writeArchive(abs, name, output)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("reading archive size: %w", err)
	}
	return &Result{Name: name, Path: output, Size: info.Size(), Files: count}, nil
}

func checkBundle(bundlePath string) error {
	info, err := os.Stat(bundlePath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, bundlePath)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, bundlePath)
	}
	if _, err := os.Stat(filepath.Join(bundlePath, types.ManifestFile)); err != nil {
		return fmt.Errorf("%w in %s", ErrMissingManifest, bundlePath)
	}
	return nil
}

// gate validates the bundle and decides whether packaging may continue.
func (p *Packager) gate(ctx context.Context, bundlePath, name string, force bool) (bool, error) {
	p.logger.Info("validating skill", "skill", name)
	_, issues := p.engine.Validate(ctx, bundlePath)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	errs := types.FilterBySeverity(issues, types.SeverityError)
	warnings := types.FilterBySeverity(issues, types.SeverityWarning)

	if len(errs) > 0 {
		if !force {
			p.logIssues(log.ErrorLevel, "validation failed", errs, gateErrorLimit)
			return false, fmt.Errorf("%w with %d error(s): run 'skillpack validate %s' or use --force to package anyway",
				ErrValidationFailed, len(errs), bundlePath)
		}
		p.logger.Warn("packaging with validation errors", "errors", len(errs), "force", true)
	}

	if len(warnings) > 0 && !force {
		p.logIssues(log.WarnLevel, "validation found warnings", warnings, gateWarningLimit)
		ok, err := p.confirm(ctx, "Continue packaging?")
		if err != nil {
			return false, err
		}
		if !ok {
			p.logger.Info("packaging cancelled", "skill", name)
			return false, nil
		}
	}

	if len(errs) == 0 {
		p.logger.Info("validation passed", "skill", name)
	}
	return true, nil
}

func (p *Packager) logIssues(level log.Level, msg string, issues []types.Issue, limit int) {
	p.logger.Log(level, msg, "count", len(issues))
	for i, issue := range issues {
		if i == limit {
			p.logger.Log(level, fmt.Sprintf("  ... and %d more", len(issues)-limit))
			break
		}
		p.logger.Log(level, fmt.Sprintf("  %d. %s", i+1, issue.Message))
	}
}

// entry is one file queued for the archive.
type entry struct {
	name string // archive name, forward slashes
	path string
	size int64
}

// collect lists the archive entries in write order, excluding manifest.json.
func (p *Packager) collect(bundle string) ([]entry, error) {
	files := []entry{}

	skillMD := filepath.Join(bundle, types.ManifestFile)
	info, err := os.Stat(skillMD)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", ErrMissingManifest, bundle)
	}
	files = append(files, entry{name: types.ManifestFile, path: skillMD, size: info.Size()})

	fd := discovery.NewFileDiscovery(bundle)
	for _, dir := range types.ContentDirs {
		found, err := fd.FindUnder(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if p.filter.Included(f.RelPath) {
				files = append(files, entry{name: f.RelPath, path: f.Path, size: f.Size})
			}
		}
	}

	for _, name := range []string{types.LicenseTxtFile, types.LicenseFile} {
		full := filepath.Join(bundle, name)
		if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
			files = append(files, entry{name: name, path: full, size: info.Size()})
			break
		}
	}
	return files, nil
}

// buildManifest records a checksum for every collected entry except the
// license file.
func (p *Packager) buildManifest(bundle, name string, files []entry) *Manifest {
	m := &Manifest{
		Name:            name,
		Version:         p.manifestVersion,
		Created:         formatCreated(p.now()),
		PackagerVersion: p.packagerVersion,
	}
	m.SkillName, m.Description = readFrontmatterMeta(filepath.Join(bundle, types.ManifestFile))

	for _, e := range files {
		switch dir := topDir(e.name); {
		case e.name == types.ManifestFile:
			m.Files.Manifest = FileEntry{Checksum: Checksum(e.path), Size: e.size}
		case dir == types.AssetsDir && e.size >= p.rules.LargeAssetBytes:
			m.Files.category(dir)[e.name] = FileEntry{Size: e.size}
		default:
			if cat := m.Files.category(dir); cat != nil {
				cat[e.name] = FileEntry{Checksum: Checksum(e.path), Size: e.size}
			}
		}
	}
	return m
}

func topDir(name string) string {
	dir, _, _ := strings.Cut(name, "/")
	return dir
}

// writeArchive creates output and returns the number of entries written.
// A partially written archive is removed on failure.
func (p *Packager) writeArchive(bundle, name, output string) (count int, err error) {
	files, err := p.collect(bundle)
	if err != nil {
		return 0, err
	}
	manifest, err := p.buildManifest(bundle, name, files).Marshal()
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing archive: %w", cerr)
		}
		if err != nil {
			os.Remove(output)
		}
	}()

	zw := zip.NewWriter(out)
	for _, e := range files {
		if err := addFile(zw, e); err != nil {
			return 0, err
		}
		p.logger.Debug("added", "entry", e.name)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     types.ArchiveIndex,
		Method:   zip.Deflate,
		Modified: p.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("adding %s: %w", types.ArchiveIndex, err)
	}
	if _, err := w.Write(manifest); err != nil {
		return 0, fmt.Errorf("writing %s: %w", types.ArchiveIndex, err)
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	return len(files) + 1, nil
}

func addFile(zw *zip.Writer, e entry) error {
	info, err := os.Stat(e.path)
	if err != nil {
		return fmt.Errorf("adding %s: %w", e.name, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("adding %s: %w", e.name, err)
	}
	header.Name = e.name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s: %w", e.name, err)
	}
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("adding %s: %w", e.name, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing %s: %w", e.name, err)
	}
	return nil
}
