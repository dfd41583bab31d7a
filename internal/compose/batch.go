package compose

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"
)

// Outcome is the result of one job in a batch.
type Outcome struct {
	// Index is the job's position in the batch.
	Index  int     `json:"index"`
	Source string  `json:"source"`
	Result *Result `json:"result,omitempty"`

	// Err is the full error chain; Error is its Summary.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the job succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report collects the outcomes of a batch in input order.
type Report struct {
	Outcomes  []Outcome     `json:"outcomes"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Failures returns the failed outcomes in input order.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// RunBatch composites jobs with at most workers running at once
// (runtime.NumCPU() if workers < 1).
//
// Every job gets an Outcome: a failing job never stops the others. Once ctx
// is done no further jobs start; they are reported with ctx's error.
func (c *Compositor) RunBatch(ctx context.Context, jobs []Job, workers int) *Report {
	jobs = slices.Clone(jobs)
	sources := make([]string, len(jobs))
	for i := range jobs {
		jobs[i] = jobs[i].withID()
		sources[i] = jobs[i].Name()
	}
	return c.run(ctx, sources, workers, func(i int) (*Result, error) {
		return c.Composite(jobs[i])
	})
}

// ConvertBatch converts jobs the way RunBatch composites them.
func (c *Compositor) ConvertBatch(ctx context.Context, jobs []ConvertJob, workers int) *Report {
	jobs = slices.Clone(jobs)
	sources := make([]string, len(jobs))
	for i := range jobs {
		jobs[i] = jobs[i].withID()
		sources[i] = jobs[i].Name()
	}
	return c.run(ctx, sources, workers, func(i int) (*Result, error) {
		return c.Convert(jobs[i])
	})
}

func (c *Compositor) run(ctx context.Context, sources []string, workers int, do func(int) (*Result, error)) *Report {
	start := time.Now()
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	report := &Report{Outcomes: make([]Outcome, len(sources))}
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, source := range sources {
		report.Outcomes[i] = Outcome{Index: i, Source: source}

		if !acquire(ctx, semaphore) {
			report.Outcomes[i].Err = fmt.Errorf("%s not started: %w", source, ctx.Err())
			continue
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			o := &report.Outcomes[idx]
			o.Result, o.Err = do(idx)
		}(i)
	}
	wg.Wait()

	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		if o.Err != nil {
			o.Error = Summary(o.Err)
			report.Failed++
			c.log.Error("compose: job failed", "index", i, "source", o.Source, "error", o.Err)
			continue
		}
		report.Succeeded++
	}
	report.Elapsed = time.Since(start)

	c.log.Info("compose: batch finished",
		"jobs", len(sources),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"elapsed", report.Elapsed,
	)
	return report
}

// acquire takes a semaphore slot unless ctx is done first.
func acquire(ctx context.Context, semaphore chan struct{}) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case semaphore <- struct{}{}:
		return true
	}
}
