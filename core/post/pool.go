package post

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// taskPool is the bounded set of concurrent execution slots shared by agent
// loops and delayed-message timers. Acquisition never blocks: when every slot
// is taken, Spawn fails immediately with [ErrTaskPoolExhausted] so the caller
// can apply its own policy.
type taskPool struct {
	ctx     context.Context
	log     *slog.Logger
	slots   chan struct{}
	metrics Metrics

	inflight atomic.Int32
	wg       sync.WaitGroup
}

func newTaskPool(ctx context.Context, log *slog.Logger, size int, m Metrics) *taskPool {
	return &taskPool{
		ctx:     ctx,
		log:     log,
		slots:   make(chan struct{}, size),
		metrics: m,
	}
}

// Spawn runs f on its own goroutine, holding one pool slot until f returns.
func (p *taskPool) Spawn(f func()) error {
	select {
	case <-p.ctx.Done():
		return ErrShutdown
	default:
	}

	select {
	case p.slots <- struct{}{}:
	default:
		return ErrTaskPoolExhausted
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.slots }()

		p.metrics.TasksInFlight(int(p.inflight.Add(1)))
		defer func() {
			p.metrics.TasksInFlight(int(p.inflight.Add(-1)))
		}()

		p.runTask(f)
	}()
	return nil
}

func (p *taskPool) runTask(f func()) {
	defer func() {
		if r := recover(); r != nil {
			// contain: log the panic but keep the pool usable
			p.log.Error("task panicked", slog.Any("recovered", r))
		}
	}()
	f()
}

// Wait blocks until all in-flight tasks complete.
func (p *taskPool) Wait() { p.wg.Wait() }
