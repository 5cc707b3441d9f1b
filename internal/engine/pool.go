package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"patchmatch/internal/collect"
	"patchmatch/internal/distro"
	"patchmatch/internal/logging"
)

// Unit is one (package, distro pair) to compare
type Unit struct {
	Package string
	DistroA string
	DistroB string
	RootA   string
	RootB   string
}

// UnitResult carries the outcome of one unit. Err is set when the
// unit could not even be collected; a degraded-but-computed comparison
// is not an error. The collections stay attached so callers can
// persist the patches behind the comparison.
type UnitResult struct {
	Unit     Unit
	Result   *ComparisonResult
	ColA     *collect.Collection
	ColB     *collect.Collection
	Err      error
	Duration time.Duration
}

// Batch runs comparison units on a bounded worker pool. Each worker
// owns its unit's collections outright, so no locking is needed beyond
// the channels.
type Batch struct {
	ID        string
	engine    *Engine
	collector *collect.Collector
	registry  *distro.Registry
	logger    *logging.Logger
	workers   int
	queueSize int
}

// NewBatch creates a batch run with a fresh run ID. queueSize buffers
// the dispatch channel so the dispatcher stays ahead of slow workers;
// zero means unbuffered.
func NewBatch(eng *Engine, collector *collect.Collector, registry *distro.Registry, logger *logging.Logger, workers, queueSize int) *Batch {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Batch{
		ID:        uuid.New().String(),
		engine:    eng,
		collector: collector,
		registry:  registry,
		logger:    logger,
		workers:   workers,
		queueSize: queueSize,
	}
}

// Run processes every unit and returns results in input order. A
// failing unit yields a UnitResult with Err set and never stops its
// siblings. Cancelling the context stops dispatch; in-flight units
// finish (each is bounded CPU work).
func (b *Batch) Run(ctx context.Context, units []Unit) []UnitResult {
	results := make([]UnitResult, len(units))

	type job struct {
		index int
		unit  Unit
	}
	queue := make(chan job, b.queueSize)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range queue {
				start := time.Now()
				result, colA, colB, err := b.runUnit(j.unit)
				results[j.index] = UnitResult{
					Unit:     j.unit,
					Result:   result,
					ColA:     colA,
					ColB:     colB,
					Err:      err,
					Duration: time.Since(start),
				}
			}
		}(w)
	}

	dispatched := 0
dispatch:
	for i, unit := range units {
		select {
		case queue <- job{index: i, unit: unit}:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(queue)
	wg.Wait()

	if dispatched < len(units) {
		b.logger.Warn("Batch cancelled before all units ran", map[string]interface{}{
			"runId":      b.ID,
			"dispatched": dispatched,
			"total":      len(units),
		})
		for i := dispatched; i < len(units); i++ {
			results[i] = UnitResult{Unit: units[i], Err: ctx.Err()}
		}
	}

	return results
}

// runUnit collects both sides and compares them
func (b *Batch) runUnit(u Unit) (*ComparisonResult, *collect.Collection, *collect.Collection, error) {
	distroA, ok := b.registry.Lookup(u.DistroA)
	if !ok {
		return nil, nil, nil, unknownDistro(u.DistroA)
	}
	distroB, ok := b.registry.Lookup(u.DistroB)
	if !ok {
		return nil, nil, nil, unknownDistro(u.DistroB)
	}

	colA, err := b.collector.Collect(distroA, u.Package, u.RootA)
	if err != nil {
		return nil, nil, nil, err
	}
	colB, err := b.collector.Collect(distroB, u.Package, u.RootB)
	if err != nil {
		return nil, nil, nil, err
	}

	return b.engine.Compare(colA, colB), colA, colB, nil
}
