package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
)

const defaultPrintInterval = 100 * time.Millisecond

// renderState is the latest checkpoint of a render still in flight.
type renderState struct {
	iteration int
	plotted   uint64
	fraction  float64
}

// Progress tracks a batch of renders. Besides finished renders it follows the
// checkpoints of renders still running, so the bar and the iteration rate move
// while long renders are in progress.
type Progress struct {
	mu     sync.Mutex
	output io.Writer

	startTime time.Time
	lastPrint time.Time
	interval  time.Duration
	enabled   bool

	total     int
	completed int
	failed    int

	inflight map[int]renderState
	// iterations and plotted of renders that have finished.
	iterations int64
	plotted    uint64
}

// NewProgress creates a progress tracker writing to stderr.
func NewProgress(total int, enabled bool) *Progress {
	return NewProgressTo(os.Stderr, total, enabled)
}

// NewProgressTo creates a progress tracker writing to w.
func NewProgressTo(w io.Writer, total int, enabled bool) *Progress {
	return &Progress{
		output:    w,
		startTime: time.Now(),
		interval:  defaultPrintInterval,
		enabled:   enabled,
		total:     total,
		inflight:  make(map[int]renderState),
	}
}

// Checkpoint records a snapshot of the render running task. It matches
// CheckpointFunc. Output is throttled since checkpoints arrive from every
// worker.
func (p *Progress) Checkpoint(task int, s chaos.Snapshot) {
	p.mu.Lock()
	p.inflight[task] = renderState{
		iteration: s.Iteration,
		plotted:   s.Plotted,
		fraction:  s.Progress(),
	}
	show := p.enabled && time.Since(p.lastPrint) >= p.interval
	p.mu.Unlock()

	if show {
		p.Print()
	}
}

// Update records that task finished. It matches ProgressFunc.
func (p *Progress) Update(task, completed, total, failed int) {
	p.mu.Lock()
	if st, ok := p.inflight[task]; ok {
		p.iterations += int64(st.iteration)
		p.plotted += st.plotted
		delete(p.inflight, task)
	}
	p.completed = completed
	p.total = total
	p.failed = failed
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// stats is a consistent view of the tracker.
type stats struct {
	elapsed    time.Duration
	total      int
	completed  int
	failed     int
	running    int
	fraction   float64
	iterations int64
	plotted    uint64
}

func (p *Progress) stats() stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := stats{
		elapsed:    time.Since(p.startTime),
		total:      p.total,
		completed:  p.completed,
		failed:     p.failed,
		running:    len(p.inflight),
		iterations: p.iterations,
		plotted:    p.plotted,
	}
	done := float64(p.completed)
	for _, r := range p.inflight {
		done += r.fraction
		st.iterations += int64(r.iteration)
		st.plotted += r.plotted
	}
	if p.total > 0 {
		st.fraction = min(1, done/float64(p.total))
	}
	return st
}

// Print writes the current progress line to output.
func (p *Progress) Print() {
	st := p.stats()

	p.mu.Lock()
	p.lastPrint = time.Now()
	p.mu.Unlock()

	const barWidth = 30
	filled := int(st.fraction * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("\r[%s] %5.1f%% %d/%d renders", bar, st.fraction*100, st.completed, st.total)
	if st.running > 0 {
		line += fmt.Sprintf(", %d running", st.running)
	}
	if st.failed > 0 {
		line += fmt.Sprintf(" (%d failed)", st.failed)
	}
	line += fmt.Sprintf(" - %s iter/s", formatCount(rate(float64(st.iterations), st.elapsed)))

	switch {
	case st.completed == st.total:
		line += fmt.Sprintf(" - Done in %s", formatDuration(st.elapsed))
	case st.fraction > 0:
		eta := time.Duration(float64(st.elapsed) * (1 - st.fraction) / st.fraction)
		line += fmt.Sprintf(" - ETA: %s", formatDuration(eta))
	}

	// Pad to clear previous line content
	line += "          "

	p.mu.Lock()
	fmt.Fprint(p.output, line)
	p.mu.Unlock()
}

// Done prints the final progress and a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.output)
	}
}

// Summary describes the finished batch.
func (p *Progress) Summary() string {
	st := p.stats()
	return fmt.Sprintf("Rendered %d/%d presets (%d failed) in %s: %s iterations, %s points plotted (%s iter/s)",
		st.completed-st.failed, st.total, st.failed, formatDuration(st.elapsed),
		formatCount(float64(st.iterations)), formatCount(float64(st.plotted)),
		formatCount(rate(float64(st.iterations), st.elapsed)))
}

func rate(n float64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return n / elapsed.Seconds()
}

// formatCount abbreviates n with a k, M or G suffix.
func formatCount(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.2fG", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.1fk", n/1e3)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
