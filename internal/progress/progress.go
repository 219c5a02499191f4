// Package progress draws a terminal progress bar over the days of an export.
package progress

import (
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// Bar implements archive.Progress with a pterm progress bar. A disabled Bar
// does nothing, so callers never need to check.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	out     io.Writer
	total   int
	done    int
	mu      sync.Mutex
	enabled bool
}

// New creates a bar writing to out. The bar is only drawn when out is a
// terminal and the log level is "info".
func New(out io.Writer, isTerminal bool, logLevel string) *Bar {
	return &Bar{
		out:     out,
		enabled: isTerminal && logLevel == "info",
	}
}

func (b *Bar) Enabled() bool { return b.enabled }

// Start begins a bar of total days. Nothing is drawn for an empty run.
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	b.done = 0
	if !b.enabled || total == 0 {
		return
	}
	pb, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Archiving days").
		WithWriter(b.out).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return
	}
	b.pb = pb
}

// Step advances the bar by one day and shows that day in the title.
func (b *Bar) Step(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done++
	if b.pb == nil {
		return
	}
	b.pb.UpdateTitle("Archived " + label)
	b.pb.Increment()
}

// Stop finalizes the bar, whether or not every day was reached.
func (b *Bar) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb == nil {
		return
	}
	b.pb.Stop()
	b.pb = nil
}

// Done reports how many steps were taken since Start.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}
