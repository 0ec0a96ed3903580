package telegram

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dispatcher runs jobs on a fixed set of workers. Jobs with the same key run
// on the same worker, in submission order.
type Dispatcher[T any] struct {
	queues []chan T
	handle func(context.Context, T)
}

func NewDispatcher[T any](workers, queueSize int, handle func(context.Context, T)) *Dispatcher[T] {
	if workers < 1 {
		workers = 1
	}
	queues := make([]chan T, workers)
	for i := range queues {
		queues[i] = make(chan T, queueSize)
	}
	return &Dispatcher[T]{queues: queues, handle: handle}
}

func (d *Dispatcher[T]) slot(key int64) int {
	k := uint64(key)
	return int(k % uint64(len(d.queues)))
}

// Dispatch queues job for key, blocking while that worker's queue is full.
// It returns false when ctx ends first.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, key int64, job T) bool {
	select {
	case d.queues[d.slot(key)] <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops accepting jobs. Run returns once queued jobs are drained.
func (d *Dispatcher[T]) Close() {
	for _, q := range d.queues {
		close(q)
	}
}

// Run processes jobs until Close is called.
func (d *Dispatcher[T]) Run(ctx context.Context) error {
	var g errgroup.Group
	for _, q := range d.queues {
		g.Go(func() error {
			for job := range q {
				d.handle(ctx, job)
			}
			return nil
		})
	}
	return g.Wait()
}
