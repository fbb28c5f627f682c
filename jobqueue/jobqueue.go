// Package jobqueue schedules the build stages of every package in a resolved
// graph onto a bounded pool of workers.
//
// Each package contributes one node per Stage. A node is dispatched once all
// of the nodes it depends on have finished, which happens when every one of
// their jobs has reported back. Freshness flows along the same edges, so a
// package whose dependency was rebuilt is rebuilt as well.
package jobqueue

import (
	"context"

	"github.com/tillberg/alog"

	"github.com/tillberg/buildqueue/depqueue"
	"github.com/tillberg/buildqueue/freshness"
	"github.com/tillberg/buildqueue/graph"
	"github.com/tillberg/buildqueue/pool"
)

type nodeWork struct {
	pkg   *graph.Package
	units []Unit
}

// pendingBuild tracks a dispatched node until all of its jobs report back.
type pendingBuild struct {
	// Number of jobs still running
	amt int
	// Any dirty job makes the whole node dirty
	fresh freshness.Freshness
}

// message is sent exactly once for every job that is dispatched, and once for
// every node that has no jobs at all.
type message struct {
	id    graph.PackageId
	stage Stage
	fresh freshness.Freshness
	err   error
}

// JobQueue owns all scheduling state for a single execution. Only the
// goroutine calling Execute touches it; workers report back over a channel.
type JobQueue struct {
	pool     *pool.Pool
	queue    *depqueue.Queue[Key, Resolve, nodeWork]
	resolve  Resolve
	reporter Reporter
	rx       chan message
	units    int
	active   int
	pending  map[Key]*pendingBuild
	state    map[graph.PackageId]freshness.Freshness
	Verbose  bool
}

func New(resolve Resolve, workers int, reporter Reporter) *JobQueue {
	return &JobQueue{
		pool:     pool.New(workers),
		queue:    depqueue.New[Key, Resolve, nodeWork](Dependencies),
		resolve:  resolve,
		reporter: reporter,
		pending:  map[Key]*pendingBuild{},
		state:    map[graph.PackageId]freshness.Freshness{},
	}
}

// Enqueue registers the jobs of one stage of pkg. It must be called for every
// stage of every package before Execute.
func (q *JobQueue) Enqueue(pkg *graph.Package, stage Stage, units []Unit) {
	// Record the freshness state of this package as dirty if any job is
	// dirty or fresh otherwise
	fresh := freshness.Fresh
	for _, u := range units {
		fresh = fresh.Combine(u.Fresh)
	}
	q.state[pkg.ID] = q.state[pkg.ID].Combine(fresh)

	if len(units) == 0 {
		q.units++
	} else {
		q.units += len(units)
	}
	q.queue.Enqueue(q.resolve, fresh, Key{pkg.ID, stage}, nodeWork{pkg: pkg, units: units})
}

// Execute runs every enqueued job, in dependency order, and returns once all
// of them have succeeded or the first one has failed. After a failure nothing
// new is started, but jobs already running are waited for before returning.
// A JobQueue can only be executed once.
func (q *JobQueue) Execute(ctx context.Context) error {
	defer q.pool.Close()
	// Every dispatched unit sends exactly one message, so with room for all
	// of them no send ever blocks, including synthetic sends from here.
	q.rx = make(chan message, q.units)

	// Each turn of this loop schedules as much work as possible, then waits
	// for one job to finish.
	for {
		for {
			fresh, key, work, ok := q.queue.Dequeue()
			if !ok {
				break
			}
			q.run(ctx, work.pkg, key.Stage, fresh, work.units)
		}
		if q.queue.Len() == 0 {
			break
		}
		if q.active == 0 {
			alog.Panicf("%d nodes remain but none can run; a dependency was never enqueued", q.queue.Len())
		}

		msg := <-q.rx
		q.active--
		if msg.err != nil {
			if q.active > 0 {
				q.reporter.Draining(q.active)
				for ; q.active > 0; q.active-- {
					<-q.rx
				}
			}
			return msg.err
		}
		key := Key{msg.id, msg.stage}
		state := q.pending[key]
		if state == nil {
			alog.Panicf("completion for %s %s, which is not in flight", msg.id, msg.stage)
		}
		state.amt--
		state.fresh = state.fresh.Combine(msg.fresh)
		if state.amt == 0 {
			q.queue.Finish(key, state.fresh)
			delete(q.pending, key)
		}
	}

	if q.Verbose {
		alog.Printf("@(dim:jobs completed)\n")
	}
	return nil
}

// run dispatches every job of one node. fresh is the combined freshness of
// the node itself and everything it depends on.
func (q *JobQueue) run(ctx context.Context, pkg *graph.Package, stage Stage, fresh freshness.Freshness, units []Unit) {
	njobs := len(units)
	amt := njobs
	if amt == 0 {
		amt = 1
	}
	id := pkg.ID

	if stage == StageStart {
		q.reporter.Status(pkg, fresh.Combine(q.state[id]))
	}

	q.active += amt
	q.pending[Key{id, stage}] = &pendingBuild{amt: amt, fresh: fresh}

	for _, u := range units {
		job := u.Job
		jobFresh := u.Fresh.Combine(fresh)
		if jobFresh == freshness.Dirty {
			q.reporter.Describe(pkg, job)
		}
		q.pool.Execute(func() {
			q.rx <- message{id, stage, jobFresh, job.Run(ctx, jobFresh)}
		})
	}

	if njobs == 0 {
		q.rx <- message{id, stage, fresh, nil}
	}
}
