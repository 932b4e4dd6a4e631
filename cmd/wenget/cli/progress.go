package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/wenget/wenget/internal/install"
)

// downloadProgress returns an install.Progress that renders a single
// overwriting status line on an interactive terminal, and nothing on a
// redirected stream (piped output, CI logs) where carriage-return
// repainting just produces noise.
func downloadProgress(label string) install.Progress {
	if jsonOut || !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}
	return func(written, total int64) {
		if total <= 0 {
			fmt.Fprintf(os.Stderr, "\r%s: %s", label, humanize.Bytes(uint64(written)))
			return
		}
		pct := float64(written) / float64(total) * 100
		fmt.Fprintf(os.Stderr, "\r%s: %s / %s (%.0f%%)", label, humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total)), pct)
		if written >= total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
