// Package tasks runs fire-and-forget side effects on their own goroutines
// and keeps a short history of how each one ended.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carshow/internal/logging"
)

const DefaultHistory = 200

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome describes one dispatched task.
type Outcome struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Subject    string     `json:"subject,omitempty"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

type Func func(ctx context.Context) error

// Dispatcher starts tasks detached from the caller's cancellation.
// Tasks are never retried; a failure is logged and recorded.
type Dispatcher struct {
	logger logging.Logger
	now    func() time.Time

	wg sync.WaitGroup

	mu      sync.Mutex
	history []*Outcome
	next    int
	full    bool
}

func NewDispatcher(size int, logger logging.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultHistory
	}
	return &Dispatcher{
		logger:  logger,
		now:     time.Now,
		history: make([]*Outcome, size),
	}
}

// Go runs fn on a new goroutine and returns the task id immediately.
// subject names the entity the task works on, for operators.
func (d *Dispatcher) Go(ctx context.Context, name, subject string, fn Func) string {
	o := &Outcome{
		ID:        uuid.NewString(),
		Name:      name,
		Subject:   subject,
		Status:    StatusRunning,
		StartedAt: d.now().UTC(),
	}
	d.record(o)

	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := d.run(ctx, fn)
		d.finish(ctx, o, err)
	}()
	return o.ID
}

func (d *Dispatcher) run(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (d *Dispatcher) finish(ctx context.Context, o *Outcome, err error) {
	d.mu.Lock()
	at := d.now().UTC()
	o.FinishedAt = &at
	if err != nil {
		o.Status = StatusFailed
		o.Error = err.Error()
	} else {
		o.Status = StatusSucceeded
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Error(ctx, "task failed", "task", o.Name, "subject", o.Subject, "task_id", o.ID, "error", err)
		return
	}
	d.logger.Debug(ctx, "task done", "task", o.Name, "subject", o.Subject, "task_id", o.ID)
}

func (d *Dispatcher) record(o *Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history[d.next] = o
	d.next = (d.next + 1) % len(d.history)
	if d.next == 0 {
		d.full = true
	}
}

// Recent returns copies of the recorded outcomes, newest first.
func (d *Dispatcher) Recent() []Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.next
	if d.full {
		n = len(d.history)
	}
	out := make([]Outcome, 0, n)
	for i := 1; i <= n; i++ {
		idx := (d.next - i + len(d.history)) % len(d.history)
		out = append(out, *d.history[idx])
	}
	return out
}

// Wait blocks until every started task has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
