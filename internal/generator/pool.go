package generator

import (
	"context"
	"sync"
)

// MakeChunks splits items into at most n contiguous chunks of near equal
// size, preserving order
func MakeChunks[T any](items []T, n int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := (len(items) + n - 1) / n

	chunks := make([][]T, 0, n)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

type chunkTask[T any] struct {
	index int
	items []T
}

type chunkResult[R any] struct {
	index int
	out   []R
	err   error
}

// runChunks processes chunks on a fixed pool of workers and returns the
// concatenated results in chunk order, regardless of completion order. It
// blocks until every dispatched chunk has finished. The context is only
// consulted between dispatches; a running chunk is never interrupted.
func runChunks[T, R any](ctx context.Context, chunks [][]T, workers int, process func([]T) ([]R, error)) ([]R, error) {
	tasks := make(chan chunkTask[T])
	results := make(chan chunkResult[R], len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				out, err := process(task.items)
				results <- chunkResult[R]{index: task.index, out: out, err: err}
			}
		}()
	}

	var dispatchErr error
dispatch:
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		select {
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		case tasks <- chunkTask[T]{index: i, items: chunk}:
		}
	}
	close(tasks)
	wg.Wait()
	close(results)

	ordered := make([][]R, len(chunks))
	var firstErr error
	firstErrIndex := len(chunks)
	for res := range results {
		if res.err != nil && res.index < firstErrIndex {
			firstErr, firstErrIndex = res.err, res.index
		}
		ordered[res.index] = res.out
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}

	var merged []R
	for _, out := range ordered {
		merged = append(merged, out...)
	}
	return merged, nil
}
