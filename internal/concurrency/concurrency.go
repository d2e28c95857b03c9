// Package concurrency fans a class's methods out across a worker pool for
// parallel lifting, the way a teacher WorkerPool dispatches jobs to
// goroutines — except sized and synchronized with
// golang.org/x/sync/errgroup instead of hand-rolled channels and
// sync.WaitGroup. A failing method is recorded on its own outcome and does
// not cancel the others; only cancellation of the caller's context stops
// further work.
package concurrency

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"jclift/internal/classfile"
	"jclift/internal/lifter"
)

// MethodOutcome pairs a method's declaration with its lift result, so a
// caller can render or report by name after the fan-out completes.
type MethodOutcome struct {
	Method classfile.Member
	Result lifter.MethodResult
}

// Options configures the worker pool. A zero value picks sensible
// defaults (GOMAXPROCS workers).
type Options struct {
	// MaxWorkers caps concurrent in-flight lifts; <= 0 means
	// runtime.GOMAXPROCS(0).
	MaxWorkers int
}

// LiftClass lifts every method of class concurrently and returns one
// MethodOutcome per method, in declaration order. A single method's lift
// failure never aborts the others — it's recorded on that method's
// Result.Err — but ctx cancellation (caller-driven, e.g. a request
// deadline) stops scheduling further work and is returned as the error.
func LiftClass(ctx context.Context, class *classfile.Class, opts Options) ([]MethodOutcome, error) {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	outcomes := make([]MethodOutcome, len(class.Methods))
	for i, m := range class.Methods {
		i, m := i, m
		outcomes[i] = MethodOutcome{Method: m}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if m.Code == nil {
				return nil
			}
			outcomes[i].Result = lifter.LiftMethod(m.Code, class.Pool)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
