package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Ensemble runs several independent simulations concurrently, at most
// GOMAXPROCS at a time. build is called once per run and must return a
// simulator that owns its plant and controller.
type Ensemble struct {
	build func(idx int) (*Simulator, error)
	runs  int
}

func NewEnsemble(runs int, build func(idx int) (*Simulator, error)) *Ensemble {
	return &Ensemble{build: build, runs: runs}
}

// Run returns results in index order. Any failed run fails the whole
// ensemble; the error joins every failure.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.runs)
	errs := make([]error, e.runs)
	slots := make(chan struct{}, runtime.GOMAXPROCS(0))

	var wg sync.WaitGroup
	for idx := range e.runs {
		wg.Add(1)
		slots <- struct{}{}
		go func() {
			defer func() {
				<-slots
				wg.Done()
			}()

			s, err := e.build(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("build run %d: %w", idx, err)
				return
			}
			if results[idx], err = s.Run(ctx, cfg); err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
			}
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}
