package outputters

import (
	"fmt"
	"io"

	"github.com/dotcommander/skillpack/internal/archive"
	"github.com/dotcommander/skillpack/internal/config"
	"github.com/dotcommander/skillpack/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
	w      io.Writer
}

// NewOutputter creates a new Outputter writing to w.
func NewOutputter(config *config.Config, w io.Writer) *Outputter {
	return &Outputter{
		config: config,
		w:      w,
	}
}

func (o *Outputter) console() *output.ConsoleFormatter {
	return output.NewConsoleFormatter(o.w, o.config.Verbose, !o.config.NoColor)
}

// Format renders a validation report using the configured format.
func (o *Outputter) Format(report *output.Report) error {
	var formatter output.Formatter
	switch o.config.Format {
	case config.FormatText:
		formatter = o.console()
	case config.FormatJSON:
		formatter = output.NewJSONFormatter(o.w)
	default:
		return fmt.Errorf("unsupported format: %s", o.config.Format)
	}
	return formatter.Format(report)
}

// Packaged prints the success banner unless quiet.
func (o *Outputter) Packaged(res *archive.Result) {
	if o.config.Quiet {
		return
	}
	o.console().FormatPackaged(res)
}

// Batch prints the batch summary. It is printed even when quiet.
func (o *Outputter) Batch(result *archive.BatchResult) {
	o.console().FormatBatch(result)
}
