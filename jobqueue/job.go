package jobqueue

import (
	"context"

	"github.com/tillberg/buildqueue/freshness"
)

// Job is one unit of compilation work belonging to a node.
type Job interface {
	// Run performs the work. The freshness says whether a prior build's
	// output may be reused.
	Run(ctx context.Context, fresh freshness.Freshness) error
	// Describe returns a one-line description for diagnostics.
	Describe() string
}

// Unit pairs a job with its own freshness, independent of any dependency.
type Unit struct {
	Job   Job
	Fresh freshness.Freshness
}

type Work func(ctx context.Context) error

type funcJob struct {
	desc  string
	dirty Work
	fresh Work
}

// NewJob returns a Job that runs dirty when it must be rebuilt and fresh
// otherwise. A nil fresh does nothing.
func NewJob(desc string, dirty, fresh Work) Job {
	return &funcJob{desc: desc, dirty: dirty, fresh: fresh}
}

func (j *funcJob) Run(ctx context.Context, fresh freshness.Freshness) error {
	work := j.fresh
	if fresh == freshness.Dirty {
		work = j.dirty
	}
	if work == nil {
		return nil
	}
	return work(ctx)
}

func (j *funcJob) Describe() string {
	return j.desc
}
