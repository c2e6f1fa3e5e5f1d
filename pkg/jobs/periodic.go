package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of a periodic job.
type Task func(context.Context) error

// PeriodicConfig configures a periodic job.
type PeriodicConfig struct {
	Interval   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// RunOnStart runs the task once immediately instead of waiting a full interval.
	RunOnStart bool
	Logger     *zap.Logger
}

// Periodic runs a task on a fixed interval in a background goroutine.
// A failed run is retried after RetryDelay up to MaxRetries times; the
// next tick starts a fresh attempt count.
type Periodic struct {
	name string
	task Task
	cfg  PeriodicConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	runs    int
}

// NewPeriodic builds a periodic job. Interval must be positive for Start to do anything.
func NewPeriodic(name string, task Task, cfg PeriodicConfig) *Periodic {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Periodic{name: name, task: task, cfg: cfg}
}

// Start launches the loop. Calling it again, or with a non-positive interval, is a no-op.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.cfg.Interval <= 0 {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.wg.Add(1)
	go p.loop(ctx)
	p.cfg.Logger.Sugar().Infow("periodic job started", "job", p.name, "interval", p.cfg.Interval)
}

// Stop cancels the loop and waits for an in-flight run to return.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.cfg.Logger.Sugar().Infow("periodic job stopped", "job", p.name)
}

// Runs reports how many task invocations have completed, retries included.
func (p *Periodic) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

func (p *Periodic) loop(ctx context.Context) {
	defer p.wg.Done()
	if p.cfg.RunOnStart {
		p.runWithRetry(ctx)
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runWithRetry(ctx)
		}
	}
}

func (p *Periodic) runWithRetry(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		err := p.task(ctx)
		p.mu.Lock()
		p.runs++
		p.mu.Unlock()
		if err == nil || ctx.Err() != nil {
			return
		}
		if attempt >= p.cfg.MaxRetries {
			p.cfg.Logger.Sugar().Errorw("periodic job failed", "job", p.name, "attempts", attempt+1, "error", err)
			return
		}
		p.cfg.Logger.Sugar().Warnw("periodic job failed, retrying", "job", p.name, "attempt", attempt+1, "error", err)

		timer := time.NewTimer(p.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
