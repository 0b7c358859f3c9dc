// Package worker runs independent renders in parallel.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
)

// Renderer produces one output per task. Implementations must be safe for
// concurrent use; each call is expected to run its own chaos game and pass
// every checkpoint snapshot to report.
type Renderer interface {
	Generate(ctx context.Context, task Task, report func(chaos.Snapshot)) (output string, err error)
}

// Task is a single render request.
type Task struct {
	Preset string
	// Source is an optional flame file that overrides the built-in preset.
	Source string
	Force  bool
}

// Result is the outcome of a task. Output is a file path or archive ID,
// depending on the Renderer.
type Result struct {
	Task    Task
	Output  string
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes. task is the index of
// the finished task.
type ProgressFunc func(task, completed, total, failed int)

// CheckpointFunc is called from the worker goroutines with the checkpoints of
// the render running task. All checkpoints of a task precede its ProgressFunc call.
type CheckpointFunc func(task int, s chaos.Snapshot)

// Config configures the worker pool.
type Config struct {
	Workers      int
	Renderer     Renderer
	OnProgress   ProgressFunc
	OnCheckpoint CheckpointFunc
}

// Pool runs tasks on a fixed number of workers.
type Pool struct {
	workers      int
	renderer     Renderer
	onProgress   ProgressFunc
	onCheckpoint CheckpointFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:      workers,
		renderer:     cfg.Renderer,
		onProgress:   cfg.OnProgress,
		onCheckpoint: cfg.OnCheckpoint,
	}
}

// Run executes all tasks and returns one result per task, in task order.
// It blocks until every task has finished or been cancelled. Tasks that never
// start because ctx was cancelled report ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	type indexed struct {
		i int
		r Result
	}

	taskCh := make(chan int, len(tasks))
	resultCh := make(chan indexed, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range taskCh {
				resultCh <- indexed{i: i, r: p.run(ctx, i, tasks[i])}
			}
		}()
	}

	for i := range tasks {
		taskCh <- i
	}
	close(taskCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, len(tasks))
	completed, failed := 0, 0
	for ir := range resultCh {
		results[ir.i] = ir.r
		completed++
		if ir.r.Err != nil {
			failed++
		}
		if p.onProgress != nil {
			p.onProgress(ir.i, completed, len(tasks), failed)
		}
	}

	return results
}

func (p *Pool) run(ctx context.Context, index int, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{Task: task, Err: err}
	}

	report := func(chaos.Snapshot) {}
	if p.onCheckpoint != nil {
		report = func(s chaos.Snapshot) { p.onCheckpoint(index, s) }
	}

	start := time.Now()
	out, err := p.renderer.Generate(ctx, task, report)
	return Result{
		Task:    task,
		Output:  out,
		Err:     err,
		Elapsed: time.Since(start),
	}
}
