package executor

import "sync"

// sliceAccessor is the trivial Accessor over a plain []uint64, used by the
// goroutine-pool Executor below.
type sliceAccessor struct {
	buf []uint64
}

func (a *sliceAccessor) At(i int) uint64     { return a.buf[i] }
func (a *sliceAccessor) Set(i int, v uint64) { a.buf[i] = v }
func (a *sliceAccessor) Len() int            { return len(a.buf) }

// waitGroupHandle adapts a *sync.WaitGroup to Handle.
type waitGroupHandle struct{ wg *sync.WaitGroup }

func (h waitGroupHandle) Wait() { h.wg.Wait() }

// GoroutinePool is a reference Executor backed by Go's own runtime
// scheduler: Submit fans n work items out across at most Workers
// goroutines and blocks nothing until Wait/Handle.Wait is called. No pack
// repo in this module's corpus imports a worker-pool library (no
// errgroup, no ants), so this is plain sync.WaitGroup/channel fan-out,
// the stdlib idiom the corpus itself falls back to for concurrency.
type GoroutinePool struct {
	Workers int
	name    string
	pending sync.WaitGroup
}

// NewGoroutinePool returns a pool with the given worker count (at least 1)
// and device name.
func NewGoroutinePool(workers int, name string) *GoroutinePool {
	if workers < 1 {
		workers = 1
	}
	return &GoroutinePool{Workers: workers, name: name}
}

func (p *GoroutinePool) NewAccessor(buf []uint64) Accessor {
	return &sliceAccessor{buf: buf}
}

func (p *GoroutinePool) Submit(n int, fn func(i int)) Handle {
	var wg sync.WaitGroup
	if n <= 0 {
		return waitGroupHandle{&wg}
	}

	workers := p.Workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		p.pending.Add(1)
		go func(lo, hi int) {
			defer p.pending.Done()
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	return waitGroupHandle{&wg}
}

func (p *GoroutinePool) Wait() { p.pending.Wait() }

func (p *GoroutinePool) Device() Device {
	return Device{Name: p.name, WorkGroupSize: p.Workers, MemoryBytes: 0}
}
