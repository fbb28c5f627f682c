// Package depqueue is a topological work queue. Nodes are handed out only
// once everything they depend on has been finished, and freshness flows from
// each finished node to the nodes that depend on it.
package depqueue

import (
	"fmt"

	"github.com/tillberg/buildqueue/freshness"
)

// Dependency computes the keys that key depends on, given a shared context.
type Dependency[K comparable, C any] func(key K, ctx C) []K

type node[K comparable, V any] struct {
	value V
	fresh freshness.Freshness
	// Dependencies not yet finished
	waiting map[K]struct{}
}

// Queue is not safe for concurrent use.
type Queue[K comparable, C any, V any] struct {
	deps       Dependency[K, C]
	queued     map[K]*node[K, V]
	dependents map[K][]K
	ready      []K
	pending    map[K]struct{}
	finished   map[K]freshness.Freshness
}

func New[K comparable, C any, V any](deps Dependency[K, C]) *Queue[K, C, V] {
	return &Queue[K, C, V]{
		deps:       deps,
		queued:     map[K]*node[K, V]{},
		dependents: map[K][]K{},
		pending:    map[K]struct{}{},
		finished:   map[K]freshness.Freshness{},
	}
}

// Enqueue registers key with its payload. Enqueueing a key that is still
// queued replaces the payload and combines the freshness values.
func (q *Queue[K, C, V]) Enqueue(ctx C, fresh freshness.Freshness, key K, value V) {
	if n, ok := q.queued[key]; ok {
		n.value = value
		n.fresh = n.fresh.Combine(fresh)
		return
	}
	if q.dequeued(key) {
		panic(fmt.Sprintf("depqueue: %v enqueued after it was dequeued", key))
	}
	n := &node[K, V]{
		value:   value,
		fresh:   fresh,
		waiting: map[K]struct{}{},
	}
	for _, dep := range q.deps(key, ctx) {
		if depFresh, done := q.finished[dep]; done {
			n.fresh = n.fresh.Combine(depFresh)
			continue
		}
		if _, dup := n.waiting[dep]; dup {
			continue
		}
		n.waiting[dep] = struct{}{}
		q.dependents[dep] = append(q.dependents[dep], key)
	}
	q.queued[key] = n
	if len(n.waiting) == 0 {
		q.ready = append(q.ready, key)
	}
}

// Dequeue returns a node whose dependencies have all finished, along with the
// combined freshness of its own enqueue and of those dependencies. It never
// blocks; ok is false when no node is currently ready.
func (q *Queue[K, C, V]) Dequeue() (fresh freshness.Freshness, key K, value V, ok bool) {
	if len(q.ready) == 0 {
		return fresh, key, value, false
	}
	key = q.ready[0]
	q.ready = q.ready[1:]
	n := q.queued[key]
	delete(q.queued, key)
	q.pending[key] = struct{}{}
	return n.fresh, key, n.value, true
}

// Finish marks a dequeued node as done. Its freshness is folded into every
// node that depends on it.
func (q *Queue[K, C, V]) Finish(key K, fresh freshness.Freshness) {
	if _, ok := q.pending[key]; !ok {
		panic(fmt.Sprintf("depqueue: %v finished without being dequeued", key))
	}
	delete(q.pending, key)
	q.finished[key] = fresh
	for _, dependent := range q.dependents[key] {
		n := q.queued[dependent]
		n.fresh = n.fresh.Combine(fresh)
		delete(n.waiting, key)
		if len(n.waiting) == 0 {
			q.ready = append(q.ready, dependent)
		}
	}
	delete(q.dependents, key)
}

// Len returns the number of nodes that have not yet been finished.
func (q *Queue[K, C, V]) Len() int {
	return len(q.queued) + len(q.pending)
}

func (q *Queue[K, C, V]) dequeued(key K) bool {
	if _, ok := q.pending[key]; ok {
		return true
	}
	_, ok := q.finished[key]
	return ok
}
