// Package prompt asks yes/no questions before destructive or risky steps.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ConfirmFunc asks question and reports the answer. It returns ctx.Err()
// when the context is cancelled while waiting.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// AlwaysYes accepts every question without asking.
func AlwaysYes(context.Context, string) (bool, error) { return true, nil }

// AlwaysNo declines every question without asking.
func AlwaysNo(context.Context, string) (bool, error) { return false, nil }

// Interactive reads answers from in after writing the question and a
// "(y/n): " suffix to out. Only "y" and "yes" (any case) accept; end of input
// declines.
func Interactive(in io.Reader, out io.Writer) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, question string) (bool, error) {
		if _, err := fmt.Fprintf(out, "%s (y/n): ", question); err != nil {
			return false, err
		}

		type answer struct {
			line string
			err  error
		}
		ch := make(chan answer, 1)
		go func() {
			line, err := reader.ReadString('\n')
			ch <- answer{line, err}
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case a := <-ch:
			if a.err != nil && a.err != io.EOF {
				return false, fmt.Errorf("reading answer: %w", a.err)
			}
			return accepts(a.line), nil
		}
	}
}

func accepts(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Default picks the confirmation policy for a CLI run. assumeYes wins;
// otherwise stdin must be a terminal to ask, and non-interactive runs decline.
func Default(assumeYes bool, out io.Writer) ConfirmFunc {
	if assumeYes {
		return AlwaysYes
	}
	if IsTerminal(os.Stdin) {
		return Interactive(os.Stdin, out)
	}
	return AlwaysNo
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
