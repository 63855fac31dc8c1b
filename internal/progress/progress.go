// Package progress renders a terminal progress bar while the environment scans
// and loads recipe sources.
package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar tracks progress across loaded sources. A nil *Bar is a no-op, so callers
// don't need to guard every Add.
type Bar struct {
	bar *progressbar.ProgressBar
}

func New(w io.Writer, n int, description string) *Bar {
	if w == nil || n == 0 {
		return nil
	}

	return &Bar{bar: progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)}
}

func (b *Bar) Add(n int) {
	if b == nil {
		return
	}
	_ = b.bar.Add(n)
}

func (b *Bar) Finish() {
	if b == nil {
		return
	}
	_ = b.bar.Finish()
}
