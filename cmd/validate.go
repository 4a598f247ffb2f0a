package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillpack/internal/baseline"
	"github.com/dotcommander/skillpack/internal/config"
	"github.com/dotcommander/skillpack/internal/output"
	"github.com/dotcommander/skillpack/internal/outputters"
	"github.com/dotcommander/skillpack/internal/types"
	"github.com/dotcommander/skillpack/internal/validator"
)

type baselineFlags struct {
	use    bool
	create bool
	path   string
}

func newValidateCmd(a *app) *cobra.Command {
	var asJSON bool
	var bf baselineFlags

	validateCmd := &cobra.Command{
		Use:   "validate <bundle>",
		Short: "Check a skill bundle against the authoring rules",
		Long: `The validate command checks a skill bundle and prints a report.

Checks:
- SKILL.md frontmatter (name, description, license) and recommended sections
- Second-person pronouns, placeholders and TODO markers in the body
- Bundle layout (scripts/, references/, assets/, TESTING_GUIDE/)
- Python scripts in scripts/ (syntax, docstring, error handling, main guard)
- Placeholder text and hardcoded secrets in text and config files

The command exits 1 when any ERROR is found, or any WARNING with --strict.

--create-baseline records the current issues in a baseline file inside the
bundle and exits 0. --baseline then reports only issues not in that file.`,
		Example: `  skillpack validate ./my-skill
  skillpack validate ./my-skill --verbose
  skillpack validate ./my-skill --strict
  skillpack validate ./my-skill --json
  skillpack validate ./my-skill --create-baseline
  skillpack validate ./my-skill --baseline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				a.cfg.Format = config.FormatJSON
			}
			return a.runValidate(cmd, args[0], bf)
		},
	}

	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
	validateCmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	validateCmd.Flags().BoolVar(&bf.use, "baseline", false, "Ignore issues recorded in the baseline file")
	validateCmd.Flags().BoolVar(&bf.create, "create-baseline", false, "Record current issues in the baseline file")
	validateCmd.Flags().StringVar(&bf.path, "baseline-path", baseline.DefaultFile, "Baseline file, relative to the bundle")
	_ = a.v.BindPFlag("strict", validateCmd.Flags().Lookup("strict"))

	return validateCmd
}

func (a *app) runValidate(cmd *cobra.Command, path string, bf baselineFlags) error {
	ctx := cmd.Context()

	engine, err := validator.New(a.cfg.RuleSet(), validator.WithLogger(a.logger))
	if err != nil {
		return err
	}

	a.logger.Debug("validating skill", "path", path)
	valid, issues := engine.Validate(ctx, path)
	if ctx.Err() != nil {
		return a.interrupted(cmd.ErrOrStderr(), "Validation")
	}

	root := filepath.Clean(path)
	baselineFile := bf.path
	if !filepath.IsAbs(baselineFile) {
		baselineFile = filepath.Join(root, baselineFile)
	}

	if bf.use && !bf.create {
		if _, err := os.Stat(baselineFile); err == nil {
			b, err := baseline.LoadBaseline(baselineFile)
			if err != nil {
				a.logger.Warn("failed to load baseline", "err", err)
			} else {
				var ignored int
				issues, ignored = b.Filter(root, issues)
				valid = !types.HasErrors(issues)
				if ignored > 0 {
					a.logger.Info("baseline issues ignored", "count", ignored)
				}
			}
		}
	}

	if a.cfg.Strict && types.CountBySeverity(issues, types.SeverityWarning) > 0 {
		valid = false
	}

	name := filepath.Base(path)
	if abs, err := filepath.Abs(path); err == nil {
		name = filepath.Base(abs)
	}
	report := &output.Report{
		Valid:     valid,
		SkillPath: path,
		SkillName: name,
		Issues:    issues,
	}
	if err := outputters.NewOutputter(a.cfg, cmd.OutOrStdout()).Format(report); err != nil {
		return err
	}

	// Creating a baseline accepts the current state.
	if bf.create {
		b := baseline.CreateBaseline(root, issues)
		b.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		if err := b.SaveBaseline(baselineFile); err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		a.logger.Info("baseline created", "path", baselineFile, "issues", len(b.Fingerprints))
		return nil
	}

	if !valid {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}
