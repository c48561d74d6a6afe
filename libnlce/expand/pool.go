package expand

import (
	"golang.org/x/sync/errgroup"
)

// fanOut runs work on numWorkers goroutines (worker IDs 0..numWorkers-1) and waits for all of them.
func fanOut(numWorkers int, work func(worker int) error) error {
	var group errgroup.Group
	for w := 0; w < numWorkers; w++ {
		worker := w
		group.Go(func() error {
			return work(worker)
		})
	}
	return group.Wait()
}
