package rcm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunBatchCollectsSoftFailures(t *testing.T) {
	jobs := []Job{
		{Name: "a", Run: func(ctx context.Context) error { return nil }},
		{Name: "b", Run: func(ctx context.Context) error { return errors.New("boom") }},
		{Name: "c", Run: func(ctx context.Context) error { return nil }},
	}
	results := RunBatch(context.Background(), jobs)
	assert.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestRunBatchHardFailureCancelsContext(t *testing.T) {
	cancelled := make(chan struct{}, 1)
	jobs := []Job{
		{Name: "hard", Run: func(ctx context.Context) error { return errors.New("stop") }, Hard: true},
		{
			Name: "watcher",
			Run: func(ctx context.Context) error {
				<-ctx.Done()
				cancelled <- struct{}{}
				return nil
			},
		},
	}
	RunBatch(context.Background(), jobs)
	select {
	case <-cancelled:
	default:
		t.Fatal("expected the watcher job's context to be cancelled by the hard failure")
	}
}
