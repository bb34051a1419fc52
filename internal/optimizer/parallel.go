package optimizer

import (
	"context"
	"runtime"
	"sync"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type itemSlot struct {
	item domain.OptimizedItem
	err  error
}

// OptimizeInventoryLevelsParallel optimizes a batch across a fixed
// worker pool. Items are independent, so workers share nothing: each
// writes its outcome to a private slot keyed by input index and the
// result is reassembled in input order afterwards, identical to the
// sequential form. workers <= 0 means one worker per CPU.
//
// The context is checked between item submissions; a cancelled batch
// returns ctx.Err() and no partial result.
func (o *Optimizer) OptimizeInventoryLevelsParallel(ctx context.Context, items []domain.Item, workers int) (Result, error) {
	if len(items) == 0 {
		return Result{Items: make([]domain.OptimizedItem, 0)}, nil
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	slots := make([]itemSlot, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				item, err := o.OptimizeItem(items[idx])
				slots[idx] = itemSlot{item: item, err: err}
			}
		}()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Items: make([]domain.OptimizedItem, 0, len(items))}
	for i, s := range slots {
		if s.err != nil {
			res.Failures = append(res.Failures, domain.ItemFailure{
				SKUID: items[i].SKUID,
				Error: s.err.Error(),
			})
			continue
		}
		res.Items = append(res.Items, s.item)
	}
	return res, nil
}
