// Package forkjoin runs recursive task trees on a bounded set of goroutines.
//
// A task is forked onto a new goroutine only when the resource controller
// has a free worker slot; otherwise it runs inline in the joining goroutine.
// Nested joins therefore never wait for a slot and cannot deadlock.
// Launched tasks are never cancelled.
package forkjoin

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/flystore/internal/resource"
)

// Task is a unit of work. It may call InvokeAll on the same pool.
type Task func(ctx context.Context) error

// PanicError carries a panic raised by a task to the joining goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("forkjoin: task panicked: %v\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Stats counts how tasks were scheduled.
type Stats struct {
	Forked atomic.Int64
	Inline atomic.Int64
}

// Pool schedules tasks against the worker slots of a resource controller.
type Pool struct {
	rc *resource.Controller
}

// New returns a pool bounded by rc. A nil rc gets a controller with
// GOMAXPROCS worker slots.
func New(rc *resource.Controller) *Pool {
	if rc == nil {
		rc = resource.NewController(resource.Config{})
	}
	return &Pool{rc: rc}
}

// Controller returns the controller bounding the pool.
func (p *Pool) Controller() *resource.Controller { return p.rc }

// InvokeAll runs every task and waits for all of them. Errors are joined.
// If any task panicked, the first panic is re-raised as *PanicError in the
// caller after every task has finished. st may be nil.
func (p *Pool) InvokeAll(ctx context.Context, st *Stats, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var (
		g      errgroup.Group
		errs   = make([]error, len(tasks))
		panics = make([]*PanicError, len(tasks))
		inline []int
	)

	// The first task always runs here; the rest fork while slots are free.
	inline = append(inline, 0)
	for i := 1; i < len(tasks); i++ {
		if !p.rc.TryAcquireWorker() {
			inline = append(inline, i)
			continue
		}
		if st != nil {
			st.Forked.Add(1)
		}
		g.Go(func() error {
			defer p.rc.ReleaseWorker()
			panics[i], errs[i] = run(ctx, tasks[i])
			return errs[i]
		})
	}

	for _, i := range inline {
		if st != nil {
			st.Inline.Add(1)
		}
		panics[i], errs[i] = run(ctx, tasks[i])
	}
	_ = g.Wait()

	for _, pe := range panics {
		if pe != nil {
			panic(pe)
		}
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, t Task) (pe *PanicError, err error) {
	defer func() {
		if r := recover(); r != nil {
			if nested, ok := r.(*PanicError); ok {
				pe = nested
				return
			}
			pe = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return nil, t(ctx)
}
