package algo

import "sync"

// parallelFor runs fn for every index in [0, n) on at most workers goroutines.
// Each call must only write to its own output slot.
func parallelFor(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := range n {
			fn(i)
		}
		return
	}
	workers = min(workers, n)

	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range jobs {
				fn(i)
			}
		})
	}
	wg.Wait()
}

// parallelForErr is parallelFor for fallible work. It returns the error of the lowest failing index.
func parallelForErr(n, workers int, fn func(i int) error) error {
	errs := make([]error, n)
	parallelFor(n, workers, func(i int) {
		errs[i] = fn(i)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
