package executor

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter receives one tick per completed work item, success or
// failure. The executor calls it unconditionally so callers can report
// liveness without knowing pool internals.
type ProgressReporter interface {
	Record()
}

// Silent discards progress ticks.
type Silent struct{}

func (Silent) Record() {}

// Bar renders a console progress bar on stderr.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a progress bar sized for total items.
func NewBar(total int, description string) *Bar {
	return &Bar{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (b *Bar) Record() {
	_ = b.bar.Add(1)
}
