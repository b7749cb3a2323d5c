package testutil

import (
	"sync"
	"testing"
)

// RunConcurrent executes fn concurrently n times and waits for all
// goroutines to finish. Panics are reported as test failures.
func RunConcurrent(t *testing.T, n int, fn func(workerID int)) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(n)

	for i := range n {
		go func(workerID int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("worker %d panicked: %v", workerID, r)
				}
			}()
			fn(workerID)
		}(i)
	}

	wg.Wait()
}

// AssertNoRaces runs fn multiple times concurrently to flush out race
// conditions. Meant to be paired with `go test -race`.
func AssertNoRaces(t *testing.T, fn func(), iterations int) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping race detection test in short mode")
	}

	RunConcurrent(t, iterations, func(_ int) {
		fn()
	})
}
