package dyn

import "sync"

// ParallelFor executes fn over chunks of [0, n) on up to workers
// goroutines and waits for all of them. With workers <= 1, or when n
// is below minChunk, it runs fn(0, n) on the calling goroutine.
// ParallelFor returns only after every chunk has finished, so two
// consecutive calls are separated by a full barrier.
func ParallelFor(workers, n, minChunk int, fn func(start, end int)) {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}

	if minChunk > 0 && n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(s, e int) {
			defer wg.Done()
			if s < e {
				fn(s, e)
			}
		}(start, end)
	}
	wg.Wait()
}
