// Package testutil holds helpers shared by package tests.
package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"onboard/internal/sentinel"
	dErrors "onboard/pkg/domain-errors"
)

// ConcurrentResult tallies outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds
}

// RunConcurrent runs fn on goroutines goroutines released at the same moment
// and classifies each result. Store-level conflicts and domain conflict or
// invalid-transition errors both count as conflicts.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg                              sync.WaitGroup
		successes, errs, conflicts, nfs atomic.Int32
		start                           = make(chan struct{})
	)

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict),
				dErrors.HasCode(err, dErrors.CodeConflict),
				dErrors.HasCode(err, dErrors.CodeInvalidTransition):
				conflicts.Add(1)
			case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
				nfs.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: nfs.Load(),
	}
}
