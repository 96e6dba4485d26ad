// Package tasks runs periodic background jobs such as the storage usage
// refresh and favorites backups.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of background work.
type Job struct {
	Name string
	// Interval between runs. Zero or negative runs the job once at start
	// and afterwards only when triggered.
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// ResultFunc observes every completed job run.
type ResultFunc func(name string, duration time.Duration, err error)

type entry struct {
	Job
	wake chan struct{}
}

// Runner executes registered jobs, each on its own goroutine.
type Runner struct {
	logger   *zap.Logger
	onResult ResultFunc

	jobs   []*entry
	byName map[string]*entry

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	active map[string]time.Time // job name -> start of the current run
}

// New creates a task runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger: logger,
		byName: make(map[string]*entry),
		active: make(map[string]time.Time),
	}
}

// OnResult installs a callback invoked after each job run, including
// failed ones. Runs cancelled by shutdown are not reported.
func (r *Runner) OnResult(fn ResultFunc) {
	r.onResult = fn
}

// Register adds a job. Register must not be called after Start.
func (r *Runner) Register(job Job) {
	e := &entry{Job: job, wake: make(chan struct{}, 1)}
	r.jobs = append(r.jobs, e)
	r.byName[job.Name] = e
}

// Trigger asks the named job to run as soon as it is idle. Triggers that
// arrive while a run is pending collapse into one. It never blocks and
// reports whether the job exists.
func (r *Runner) Trigger(name string) bool {
	e, ok := r.byName[name]
	if !ok {
		return false
	}
	select {
	case e.wake <- struct{}{}:
	default:
	}
	return true
}

// Start launches every registered job. Call Stop to shut down.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, e := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, e)
	}
	r.logger.Info("background task runner started", zap.Int("job_count", len(r.jobs)))
}

// Stop cancels all jobs and waits for them to return. If ctx ends first it
// logs the jobs still running and returns ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", r.running()))
		return ctx.Err()
	}
}

// running lists the jobs mid-run, longest running first.
func (r *Runner) running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return r.active[names[i]].Before(r.active[names[j]]) })
	return names
}

func (r *Runner) loop(ctx context.Context, e *entry) {
	defer r.wg.Done()

	// The first run covers any trigger that arrived before Start.
	select {
	case <-e.wake:
	default:
	}
	r.execute(ctx, e.Job)

	var tick <-chan time.Time
	if e.Interval > 0 {
		t := time.NewTicker(e.Interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", e.Name))
			return
		case <-tick:
		case <-e.wake:
		}
		r.execute(ctx, e.Job)
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	start := time.Now()
	r.mu.Lock()
	r.active[job.Name] = start
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.active, job.Name)
		r.mu.Unlock()
	}()

	err := job.Run(ctx)
	took := time.Since(start)
	if ctx.Err() != nil {
		r.logger.Debug("job cancelled during shutdown", zap.String("job", job.Name), zap.Duration("duration", took))
		return
	}
	if r.onResult != nil {
		r.onResult(job.Name, took, err)
	}
	if err != nil {
		r.logger.Error("job failed", zap.String("job", job.Name), zap.Duration("duration", took), zap.Error(err))
		return
	}
	r.logger.Debug("job completed", zap.String("job", job.Name), zap.Duration("duration", took))
}

// RunOnce runs the named job synchronously on the caller's goroutine.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	e, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("tasks: no job named %q", name)
	}
	return e.Run(ctx)
}
