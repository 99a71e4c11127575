package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrQueueFull = errors.New("worker queue full")
	ErrClosed    = errors.New("worker pool closed")
)

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs submitted tasks on a fixed number of goroutines, optionally
// throttled to a number of tasks per second.
type Pool struct {
	workers int
	tasks   chan Task
	logger  *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	limiter *rate.Limiter
}

func NewPool(workers, buffer int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, buffer),
		logger:  logger,
	}
}

// SetRateLimit throttles task starts to perSecond. Zero or less removes the
// limit. Call it before Start.
func (p *Pool) SetRateLimit(perSecond int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if perSecond <= 0 {
		p.limiter = nil
		return
	}
	p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Submit queues t without blocking.
func (p *Pool) Submit(t Task) error {
	if t.Run == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers. They exit when ctx is cancelled or after Close
// once the queue is drained.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.loop(ctx)
	}
}

func (p *Pool) loop(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.mu.RLock()
			limiter := p.limiter
			p.mu.RUnlock()
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			p.run(ctx, t)
		}
	}
}

func (p *Pool) run(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked", zap.String("task", t.Name), zap.Any("panic", r))
		}
	}()
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		p.logger.Warn("task failed", zap.String("task", t.Name), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	p.logger.Debug("task done", zap.String("task", t.Name), zap.Duration("elapsed", time.Since(start)))
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
