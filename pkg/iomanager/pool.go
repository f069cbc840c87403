package iomanager

import "sync"

type request func()

// pool runs requests on a fixed number of goroutines. With one worker,
// requests run in submission order.
type pool struct {
	numWorkers int
	requests   chan request
	once       sync.Once
	wg         sync.WaitGroup
}

func newPool(numWorkers int) *pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &pool{
		numWorkers: numWorkers,
		requests:   make(chan request, 64),
	}
}

func (p *pool) start() {
	p.once.Do(func() {
		for range p.numWorkers {
			p.wg.Go(func() {
				for req := range p.requests {
					if req != nil {
						req()
					}
				}
			})
		}
	})
}

func (p *pool) submit(req request) {
	p.requests <- req
}

// close drains queued requests and waits for the workers to exit.
func (p *pool) close() {
	close(p.requests)
	p.wg.Wait()
}
