package dispatch

import (
	"github.com/shirou/gopsutil/v3/cpu"
)

const (
	minPoolWorkers = 8
	maxPoolWorkers = 1000
)

// Pool is the fixed set of Worker goroutines every client session is
// assigned onto, sized once (lazily, on first use) and never resized
// afterward — spec §3.2/§9's "fix the slot count at first allocation".
// Sizing follows the teacher's own `DynamicCapacityManager`/`WorkerPool`
// convention of deriving a worker count from measured CPU resources
// rather than trusting a caller-supplied number outright.
type Pool struct {
	workers []*Worker
	out     *outputQueue
}

// newPool builds a Pool with clamp(hardwareConcurrency*5/4, 8, 1000)
// workers sharing a single output queue.
func newPool(outQueueSize int) *Pool {
	n := poolSize()
	out := newOutputQueue(outQueueSize)
	p := &Pool{out: out, workers: make([]*Worker, n)}
	for i := range p.workers {
		p.workers[i] = newWorker(i, out)
	}
	return p
}

// poolSize derives the worker count the same way go-server/src/capacity.go
// derives connection capacity: measure first, fall back conservatively.
func poolSize() int {
	hw := hardwareConcurrency()
	n := hw * 5 / 4
	return clamp(n, minPoolWorkers, maxPoolWorkers)
}

func hardwareConcurrency() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return minPoolWorkers
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// leastLoaded returns the worker with the fewest hosted sessions,
// breaking ties by the first one found — spec §4.2's slot-selection
// rule, verbatim.
func (p *Pool) leastLoaded() *Worker {
	best := p.workers[0]
	bestLoad := best.load()
	for _, w := range p.workers[1:] {
		if l := w.load(); l < bestLoad {
			best, bestLoad = w, l
		}
	}
	return best
}

// PoolStats is the read-only snapshot Pool.Stats exposes to the
// observability surface, mirroring the teacher's Hub.GetStats()/
// MessageRouter.PrintStats() style introspection methods.
type PoolStats struct {
	WorkerCount   int
	SessionsTotal int32
	HighWatermark int32
}

func (p *Pool) Stats() PoolStats {
	stats := PoolStats{WorkerCount: len(p.workers)}
	for _, w := range p.workers {
		l := w.load()
		stats.SessionsTotal += l
		if l > stats.HighWatermark {
			stats.HighWatermark = l
		}
	}
	return stats
}

func (p *Pool) close() {
	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		<-w.done
	}
}
