package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillpack/internal/archive"
	"github.com/dotcommander/skillpack/internal/outputters"
	"github.com/dotcommander/skillpack/internal/validator"
)

type packageFlags struct {
	output     string
	noValidate bool
	force      bool
	batch      string
	pattern    string
}

func newPackageCmd(a *app) *cobra.Command {
	var flags packageFlags

	packageCmd := &cobra.Command{
		Use:   "package [bundle]",
		Short: "Package a skill bundle into a zip archive",
		Long: `The package command validates a skill bundle and writes a zip archive
containing SKILL.md, the filtered scripts/, references/ and assets/ folders,
the license file and a manifest.json with SHA-256 checksums.

The archive is written to <bundle>/<bundle-name>.zip unless --output is given.
TESTING_GUIDE/, dotfiles, bytecode, test files, backups and other archives are
never included.

Packaging asks before continuing past validation warnings and before
overwriting an existing archive. Without a terminal the answer is no unless
--yes is given.

With --batch every subdirectory containing a SKILL.md is packaged in turn.
Batch mode always validates and never forces.`,
		Example: `  skillpack package ./my-skill
  skillpack package ./my-skill --output ./dist/my-skill.zip
  skillpack package ./my-skill --no-validate
  skillpack package ./my-skill --force --yes
  skillpack package --batch ./generated_skills --pattern 'finance-*'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.batch != "" {
				return a.runBatch(cmd, flags)
			}
			if len(args) == 0 {
				_ = cmd.Help()
				return &ExitError{Code: ExitFailure}
			}
			return a.runPackage(cmd, args[0], flags)
		},
	}

	f := packageCmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output .zip file path")
	f.BoolVar(&flags.noValidate, "no-validate", false, "Skip validation before packaging")
	f.BoolVar(&flags.force, "force", false, "Package even if validation finds errors")
	f.BoolP("yes", "y", false, "Answer yes to every confirmation")
	f.StringVar(&flags.batch, "batch", "", "Package every skill in `dir`")
	f.StringVar(&flags.pattern, "pattern", "*", "Only package batch skills whose folder name matches `glob`")
	_ = a.v.BindPFlag("yes", f.Lookup("yes"))

	return packageCmd
}

func (a *app) newPackager(cmd *cobra.Command) (*archive.Packager, error) {
	engine, err := validator.New(a.cfg.RuleSet(), validator.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return archive.NewPackager(engine,
		archive.WithConfirm(a.confirmFunc(cmd)),
		archive.WithLogger(a.logger),
		archive.WithVersions(a.cfg.PackagerVersion, a.cfg.ManifestVersion),
	)
}

func (a *app) runPackage(cmd *cobra.Command, path string, flags packageFlags) error {
	stderr := cmd.ErrOrStderr()

	p, err := a.newPackager(cmd)
	if err != nil {
		return err
	}

	res, err := p.Package(cmd.Context(), path, archive.Options{
		Output:   flags.output,
		Validate: !flags.noValidate,
		Force:    flags.force,
	})
	switch {
	case errors.Is(err, context.Canceled):
		return a.interrupted(stderr, "Packaging")
	case err != nil:
		return a.failf(stderr, "Error packaging skill: %v", err)
	case res == nil:
		return a.failf(stderr, "Packaging cancelled.")
	}

	outputters.NewOutputter(a.cfg, cmd.OutOrStdout()).Packaged(res)
	return nil
}

func (a *app) runBatch(cmd *cobra.Command, flags packageFlags) error {
	stderr := cmd.ErrOrStderr()

	p, err := a.newPackager(cmd)
	if err != nil {
		return err
	}

	result, err := p.PackageAll(cmd.Context(), flags.batch, flags.pattern)
	if errors.Is(err, context.Canceled) {
		return a.interrupted(stderr, "Packaging")
	}
	if err != nil {
		return a.failf(stderr, "%v", err)
	}
	if result.Total == 0 {
		return a.failf(stderr, "No skills found in %s", flags.batch)
	}

	out := outputters.NewOutputter(a.cfg, cmd.OutOrStdout())
	for _, res := range result.Packaged {
		out.Packaged(res)
	}
	out.Batch(result)

	if len(result.Packaged) == 0 {
		return &ExitError{Code: ExitFailure}
	}
	if failed := result.Err(); failed != nil {
		a.logger.Debug("batch finished with failures", "err", failed)
	}
	return nil
}
