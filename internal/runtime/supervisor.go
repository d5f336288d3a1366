package runtime

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

type worker struct {
	name   string
	run    func(context.Context) error
	closeF func() error
}

// Supervisor runs a set of named workers until the context is cancelled and
// then closes them in reverse registration order.
type Supervisor struct {
	mu      sync.Mutex
	workers []worker
	started int
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

func (s *Supervisor) Add(name string, run func(context.Context) error, closeF func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker{name: name, run: run, closeF: closeF})
}

// Start launches every worker added so far. Workers added afterwards are
// neither run nor closed.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers[s.started:] {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.WithField("worker", w.name).Debug("Worker starting")
			if err := w.run(ctx); err != nil {
				log.WithField("worker", w.name).WithError(err).Error("Worker failed")
				s.errOnce.Do(func() { s.err = err })
				return
			}
			log.WithField("worker", w.name).Debug("Worker exited")
		}()
	}
	s.started = len(s.workers)
	return nil
}

// Wait blocks until ctx is done, closes the started workers in reverse order
// and returns the first worker error.
func (s *Supervisor) Wait(ctx context.Context) error {
	<-ctx.Done() // wait for signal

	s.mu.Lock()
	started := s.workers[:s.started]
	s.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		if started[i].closeF == nil {
			continue
		}
		if err := started[i].closeF(); err != nil {
			log.WithField("worker", started[i].name).WithError(err).Warn("Worker close failed")
		}
	}
	s.wg.Wait()
	return s.err
}
