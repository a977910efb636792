package structs

import "sync"

// BufferPool hands out reusable values of type T and takes them back once the
// caller is done, the shape ring.BufferPool/core/rlwe.Pool build their
// polynomial and ciphertext buffers on top of instead of allocating fresh
// backing arrays on every temporary.
type BufferPool[T any] interface {
	Get() T
	Put(T)
}

// syncPool is a BufferPool backed by sync.Pool, the standard-library
// primitive for this (no ecosystem package in the pack offers a typed
// alternative, and sync.Pool is what a GC-aware, concurrency-safe object
// pool looks like in idiomatic Go).
type syncPool[T any] struct {
	pool sync.Pool
}

// NewSyncPool returns a BufferPool that allocates fresh values with newFunc
// whenever the pool is empty.
func NewSyncPool[T any](newFunc func() T) BufferPool[T] {
	return &syncPool[T]{pool: sync.Pool{New: func() any { return newFunc() }}}
}

func (p *syncPool[T]) Get() T  { return p.pool.Get().(T) }
func (p *syncPool[T]) Put(v T) { p.pool.Put(v) }

// NewSyncPoolUint64 returns a BufferPool of *[]uint64 backing arrays of
// length n, the pool ring.Poly/ringqp.Poly buffers are carved out of.
func NewSyncPoolUint64(n int) BufferPool[*[]uint64] {
	return NewSyncPool(func() *[]uint64 {
		buf := make([]uint64, n)
		return &buf
	})
}

// freeList is a bounded, channel-backed BufferPool: Get drains the channel
// or allocates fresh when it's empty, Put drops the value instead of
// blocking when the channel is full. Unlike sync.Pool it is never emptied
// by the GC, at the cost of a fixed capacity.
type freeList[T any] struct {
	ch      chan T
	newFunc func() T
}

// NewFreeList returns a BufferPool holding up to size values.
func NewFreeList[T any](size int, newFunc func() T) BufferPool[T] {
	return &freeList[T]{ch: make(chan T, size), newFunc: newFunc}
}

func (f *freeList[T]) Get() T {
	select {
	case v := <-f.ch:
		return v
	default:
		return f.newFunc()
	}
}

func (f *freeList[T]) Put(v T) {
	select {
	case f.ch <- v:
	default:
	}
}

// buffFromUintPool adapts a BufferPool[*[]uint64] into a BufferPool[T] via
// get/put closures that carve T's backing storage out of the underlying
// uint64 arrays (e.g. a ring.Poly's Buff field), so every higher-level
// buffer pool ultimately draws from the same pool of raw arrays.
type buffFromUintPool[T any] struct {
	uintPool BufferPool[*[]uint64]
	get      func(BufferPool[*[]uint64]) T
	put      func(BufferPool[*[]uint64], T)
}

// NewBuffFromUintPool builds a BufferPool[T] that gets/puts through
// uintPool via the given closures.
func NewBuffFromUintPool[T any](uintPool BufferPool[*[]uint64], get func(BufferPool[*[]uint64]) T, put func(BufferPool[*[]uint64], T)) BufferPool[T] {
	return &buffFromUintPool[T]{uintPool: uintPool, get: get, put: put}
}

func (b *buffFromUintPool[T]) Get() T  { return b.get(b.uintPool) }
func (b *buffFromUintPool[T]) Put(v T) { b.put(b.uintPool, v) }
