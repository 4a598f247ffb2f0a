// Package cmd implements the skillpack command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/skillpack/internal/config"
	"github.com/dotcommander/skillpack/internal/logging"
	"github.com/dotcommander/skillpack/internal/prompt"
)

// Version is set at build time.
var Version = "dev"

// app holds the state shared by the commands of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *log.Logger
	// confirm overrides the confirmation policy chosen from the flags.
	confirm prompt.ConfirmFunc
}

func newApp() *app {
	return &app{v: viper.New()}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skillpack",
		Short: "Validate and package skill bundles",
		Long: `skillpack checks a skill bundle (a directory with a SKILL.md manifest and
optional scripts/, references/ and assets/ folders) against the authoring rules
and packages it into a zip archive with a checksum manifest.

Settings are read from .skillpackrc.json, .skillpackrc.yaml or .skillpackrc.yml
in the working directory and from SKILLPACK_* environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Show all issues and debug logging")
	flags.BoolP("quiet", "q", false, "Only log errors")
	flags.Bool("no-color", false, "Disable colored output")

	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = a.v.BindPFlag("noColor", flags.Lookup("no-color"))

	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newPackageCmd(a))
	return rootCmd
}

// Execute runs the command line and exits with the resulting status.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(newApp()),
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

// errorHandler skips errors that were already reported before returning.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), logging.LevelFor(cfg.Quiet, cfg.Verbose))
	return nil
}

func (a *app) confirmFunc(cmd *cobra.Command) prompt.ConfirmFunc {
	if a.confirm != nil {
		return a.confirm
	}
	return prompt.Default(a.cfg.Yes, cmd.ErrOrStderr())
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitFailure
}
