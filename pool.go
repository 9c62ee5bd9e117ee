package mdtypst

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one chapter converts at a time.
	MinWorkers = 1

	// MaxWorkers caps automatic sizing. Explicit values may exceed it.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for the host process.
	cpuDivisor = 2
)

// ResolveWorkers returns the number of chapters converted in parallel.
// A positive workers value is used as is. Otherwise the count is derived
// from GOMAXPROCS (adjusted by automaxprocs in containers).
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
