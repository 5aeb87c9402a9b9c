package rcm

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one target file's worth of rm/cp/mv work, run independently by
// RunBatch. Soft (per-file) failures are returned, not propagated; a
// hard failure aborts the rest of the batch.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
	Hard bool // true if a failure here should cancel the remaining jobs
}

// Result pairs a job's name with the error it returned, if any.
type Result struct {
	Name string
	Err  error
}

// RunBatch runs jobs concurrently (bounded by Go's scheduler, not an
// explicit worker cap — the teacher's batch operations are never large
// enough to need one) using an errgroup.Group so that the first job
// marked Hard to fail cancels ctx for the rest, while every other job's
// error is still collected and returned rather than discarded, per
// xmlcu-cp/xmlcu-mv's multi-file mode and xmlcu-find -exec.
func RunBatch(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			err := j.Run(gctx)
			results[i] = Result{Name: j.Name, Err: err}
			if err != nil && j.Hard {
				return err
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
