package sph

import (
	"runtime"
	"sync"
)

// defaultParallelThreshold is the minimum particle count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 256

// workerScratch holds per-worker reusable buffers and counters.
type workerScratch struct {
	Candidates []int32
	Dists      []float64
	Weights    []float64

	// Counters summed after each phase
	Guards   int
	WallHits int
}

func (s *workerScratch) resetCounters() {
	s.Guards = 0
	s.WallHits = 0
}

// phaseFunc processes particles [i0, i1) using one worker's scratch.
// It must only write to slots inside its range.
type phaseFunc func(i0, i1 int, scratch *workerScratch)

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	fn         phaseFunc
}

// workerPool runs phases over the particle index with persistent workers.
type workerPool struct {
	scratches  []workerScratch
	numWorkers int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newWorkerPool(workers, threshold int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].Candidates = make([]int32, 0, 64)
		scratches[i].Dists = make([]float64, 0, 64)
		scratches[i].Weights = make([]float64, 0, 64)
	}
	return &workerPool{
		numWorkers: workers,
		threshold:  threshold,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *workerPool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *workerPool) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *workerPool) worker(workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// run executes fn over [0, n) and returns once every chunk is done. This is the
// barrier between phases: nothing from the next phase starts before it returns.
func (p *workerPool) run(n int, fn phaseFunc) {
	if n == 0 {
		return
	}

	if n < p.threshold || p.numWorkers == 1 {
		fn(0, n, &p.scratches[0])
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, fn: fn}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// resetCounters clears every worker's counters.
func (p *workerPool) resetCounters() {
	for i := range p.scratches {
		p.scratches[i].resetCounters()
	}
}

// counters sums guard and wall-hit counts across workers.
func (p *workerPool) counters() (guards, wallHits int) {
	for i := range p.scratches {
		guards += p.scratches[i].Guards
		wallHits += p.scratches[i].WallHits
	}
	return guards, wallHits
}
