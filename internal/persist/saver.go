package persist

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrClosed is reported for changes submitted after Close.
var ErrClosed = errors.New("saver closed")

// Future is the pending result of one queued change.
type Future struct {
	Change Change
	done   chan struct{}
	err    error
}

func newFuture(c Change) *Future { return &Future{Change: c, done: make(chan struct{})} }

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Done is closed once the change has been applied or has failed.
func (f *Future) Done() <-chan struct{} { return f.done }

// Err is the outcome; it is only meaningful after Done is closed.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the change completes or ctx ends.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitAll waits for every future and returns the first failure.
func WaitAll(ctx context.Context, fs []*Future) error {
	var first error
	for _, f := range fs {
		if err := f.Wait(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Saver applies changes to a Repository on one worker goroutine, in the
// order they were submitted. Submit never blocks; the queue grows as needed.
// Failures are never retried or rolled back.
type Saver struct {
	repo     Repository
	ctx      context.Context
	onResult func(Change, error)

	mu      sync.Mutex
	pending *sync.Cond
	closed  bool
	queue   []*Future
	wg      sync.WaitGroup
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithResult registers a callback run on the worker after each change.
func WithResult(fn func(Change, error)) SaverOption {
	return func(s *Saver) { s.onResult = fn }
}

// NewSaver starts the worker. ctx bounds every repository call.
func NewSaver(ctx context.Context, repo Repository, opts ...SaverOption) *Saver {
	s := &Saver{repo: repo, ctx: ctx}
	s.pending = sync.NewCond(&s.mu)
	for _, o := range opts {
		o(s)
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// next blocks until a change is queued, or returns nil once closed and
// drained.
func (s *Saver) next() *Future {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		s.pending.Wait()
	}
	if len(s.queue) == 0 {
		return nil
	}
	f := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return f
}

func (s *Saver) run() {
	defer s.wg.Done()
	for f := s.next(); f != nil; f = s.next() {
		err := Apply(s.ctx, s.repo, f.Change)
		if err != nil && s.onResult == nil {
			log.Printf("save: %v", err)
		}
		if s.onResult != nil {
			s.onResult(f.Change, err)
		}
		f.resolve(err)
	}
}

// Submit queues changes and returns one future per change.
func (s *Saver) Submit(changes ...Change) []*Future {
	out := make([]*Future, 0, len(changes))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		f := newFuture(c)
		out = append(out, f)
		if s.closed {
			f.resolve(fail(c.Op.String(), c.ID, ErrClosed))
			continue
		}
		s.queue = append(s.queue, f)
	}
	s.pending.Signal()
	return out
}

// Close stops accepting changes and waits for the queue to drain.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}
