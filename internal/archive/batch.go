package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/dotcommander/skillpack/internal/discovery"
)

// BatchFailure is a bundle that could not be packaged.
type BatchFailure struct {
	Name string
	Err  error
}

// BatchResult summarises PackageAll.
type BatchResult struct {
	Total    int
	Packaged []*Result
	Failed   []BatchFailure
}

// Err aggregates the per-bundle failures, or returns nil when there were none.
func (r *BatchResult) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failed {
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", f.Name, f.Err))
	}
	return merr.ErrorOrNil()
}

// Paths returns the written archive paths in packaging order.
func (r *BatchResult) Paths() []string {
	paths := make([]string, 0, len(r.Packaged))
	for _, res := range r.Packaged {
		paths = append(paths, res.Path)
	}
	return paths
}

// PackageAll packages every bundle directly under dir whose name matches
// nameGlob, in lexical order. Validation is always on and never forced. A
// failing or declined bundle is recorded and the batch moves on; only a
// cancelled ctx or an unreadable dir stops it.
func (p *Packager) PackageAll(ctx context.Context, dir, nameGlob string) (*BatchResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	bundles, err := discovery.FindBundles(dir, nameGlob)
	if err != nil {
		return nil, err
	}
	p.logger.Info("found skills to package", "count", len(bundles), "dir", dir)

	result := &BatchResult{Total: len(bundles)}
	for _, bundle := range bundles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := filepath.Base(bundle)
		res, err := p.Package(ctx, bundle, Options{Validate: true})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		switch {
		case err != nil:
			result.Failed = append(result.Failed, BatchFailure{Name: name, Err: err})
			p.logger.Error("failed to package", "skill", name, "err", err)
		case res == nil:
			result.Failed = append(result.Failed, BatchFailure{Name: name, Err: ErrCancelled})
		default:
			result.Packaged = append(result.Packaged, res)
		}
	}
	return result, nil
}
