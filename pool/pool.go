// Package pool runs functions on a fixed number of worker goroutines.
package pool

import "sync"

type Pool struct {
	In chan<- func()
	wg sync.WaitGroup
}

// New starts a pool of the given number of workers (at least one). Work
// submitted beyond what the workers can take is held in an unbounded queue.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	in := make(chan func())
	out := make(chan func())
	p := &Pool{In: in}
	go feed(in, out)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work(out)
	}
	return p
}

// Execute queues fn to be run by the next idle worker. It must not be called
// after Close.
func (p *Pool) Execute(fn func()) {
	p.In <- fn
}

// Close stops accepting work and waits for everything already submitted.
func (p *Pool) Close() {
	close(p.In)
	p.wg.Wait()
}

func (p *Pool) work(outChan <-chan func()) {
	defer p.wg.Done()
	for fn := range outChan {
		fn()
	}
}

func feed(inChan <-chan func(), outChan chan<- func()) {
	defer close(outChan)
	var queue []func()
	var closed bool
	for {
		if len(queue) == 0 {
			if closed {
				return
			}
			fn, ok := <-inChan
			if !ok {
				closed = true
			} else {
				queue = append(queue, fn)
			}
		} else if closed {
			outChan <- queue[0]
			queue[0] = nil
			queue = queue[1:]
		} else {
			select {
			case fn, ok := <-inChan:
				if !ok {
					closed = true
				} else {
					queue = append(queue, fn)
				}
			case outChan <- queue[0]:
				queue[0] = nil
				queue = queue[1:]
			}
		}
	}
}
