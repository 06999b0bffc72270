package reembed

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressTracker prints a single refreshing progress line for a run over a
// known number of items. It is safe for concurrent use.
type ProgressTracker struct {
	mu sync.Mutex

	w        io.Writer
	unit     string
	total    int
	every    int
	done     int
	failed   int
	reported int
	start    time.Time
}

// NewProgressTracker creates a tracker writing to w. unit names the counted
// items, such as "chunks" or "files". The line is rewritten whenever at least
// every items completed since the last report; every <= 0 reports each change.
func NewProgressTracker(w io.Writer, unit string, total, every int) *ProgressTracker {
	if w == nil {
		w = io.Discard
	}
	return &ProgressTracker{
		w:     w,
		unit:  unit,
		total: total,
		every: max(every, 1),
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = time.Now()
	p.done, p.failed, p.reported = 0, 0, 0
}

// Update sets the number of completed items.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running() {
		p.advance(done)
	}
}

// Increment marks delta more items as completed.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running() {
		p.advance(p.done + delta)
	}
}

// Fail marks delta more items as completed with an error.
func (p *ProgressTracker) Fail(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running() {
		p.failed += delta
		p.advance(p.done + delta)
	}
}

// Current returns the number of completed items, failed ones included.
func (p *ProgressTracker) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Failed returns the number of items marked with Fail.
func (p *ProgressTracker) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Finish prints the final line and ends it with a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running() {
		return
	}
	p.done = p.total
	p.print()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running() {
		return 0
	}
	return time.Since(p.start)
}

func (p *ProgressTracker) running() bool {
	return !p.start.IsZero()
}

// advance requires p.mu.
func (p *ProgressTracker) advance(done int) {
	p.done = min(done, p.total)
	if p.done-p.reported >= p.every {
		p.print()
		p.reported = p.done
	}
}

// print requires p.mu.
func (p *ProgressTracker) print() {
	var line strings.Builder
	fmt.Fprintf(&line, "\rProgress: %d/%d %s", p.done, p.total, p.unit)
	if p.total > 0 {
		fmt.Fprintf(&line, " (%.1f%%)", float64(p.done)/float64(p.total)*100)
	}
	if p.failed > 0 {
		fmt.Fprintf(&line, ", %d failed", p.failed)
	}

	elapsed := time.Since(p.start)
	if p.done > 0 && elapsed > 0 {
		fmt.Fprintf(&line, " - %.1f %s/s", float64(p.done)/elapsed.Seconds(), p.unit)
		if remaining := p.total - p.done; remaining > 0 {
			eta := time.Duration(float64(elapsed) / float64(p.done) * float64(remaining))
			fmt.Fprintf(&line, ", ETA %s", eta.Round(time.Second))
		}
	}
	io.WriteString(p.w, line.String())
}
