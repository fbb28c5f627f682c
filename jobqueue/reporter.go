package jobqueue

import (
	"github.com/tillberg/alog"

	"github.com/tillberg/buildqueue/freshness"
	"github.com/tillberg/buildqueue/graph"
)

// Reporter receives the user-facing events of an execution. It is only ever
// called from the goroutine running Execute.
type Reporter interface {
	// Status is reported once per package when its Start stage is dispatched.
	Status(pkg *graph.Package, fresh freshness.Freshness)
	// Describe is reported for each job that is about to run dirty.
	Describe(pkg *graph.Package, job Job)
	// Draining is reported after a failure while other jobs are still running.
	Draining(active int)
}

// LogReporter writes events to an alog logger, showing fresh packages and
// job descriptions only when verbose.
type LogReporter struct {
	Logger  *alog.Logger
	Verbose bool
}

func (r *LogReporter) Status(pkg *graph.Package, fresh freshness.Freshness) {
	switch fresh {
	case freshness.Fresh:
		if r.Verbose {
			r.Logger.Printf("@(dim:%12s) %s\n", "Fresh", pkg.ID)
		}
	case freshness.Dirty:
		r.Logger.Printf("@(green:%12s) %s\n", "Compiling", pkg.ID)
	}
}

func (r *LogReporter) Describe(pkg *graph.Package, job Job) {
	if r.Verbose {
		r.Logger.Printf("@(dim:%12s [%s]) %s\n", "Running", pkg.ID.Name, job.Describe())
	}
}

func (r *LogReporter) Draining(active int) {
	r.Logger.Printf("@(warn:Build failed, waiting for other jobs to finish...) @(dim:(%d active))\n", active)
}
