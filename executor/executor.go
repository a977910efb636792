// Package executor defines the data-parallel runtime the core consumes
// (spec §6.1): no specific executor is mandated, the core only depends on
// these interfaces. A minimal in-process implementation is provided for
// tests and for callers with no other runtime available.
package executor

// Device describes the parallel device an Executor runs kernels on.
type Device struct {
	Name          string
	WorkGroupSize int
	MemoryBytes   int64
}

// Accessor binds read/write access to a tensor's backing storage for the
// duration of a kernel submission.
type Accessor interface {
	// At returns the value at linear index i.
	At(i int) uint64
	// Set writes v at linear index i. Implementations backing a read-only
	// accessor may panic.
	Set(i int, v uint64)
	// Len returns the accessor's element count.
	Len() int
}

// Handle identifies a submitted kernel; Wait blocks until it (and anything
// it was chained after) has completed.
type Handle interface {
	Wait()
}

// Executor submits data-parallel kernels over a 1-D range, per spec §6.1:
// "submit a data-parallel kernel over a 1-D range with a functor taking
// (linear_index)".
type Executor interface {
	// NewAccessor binds an Accessor to buf for the lifetime of kernels
	// submitted against it.
	NewAccessor(buf []uint64) Accessor
	// Submit runs fn(i) for every i in [0, n), returning a Handle the
	// caller can Wait on.
	Submit(n int, fn func(i int)) Handle
	// Wait blocks until every kernel submitted on this executor has
	// completed.
	Wait()
	// Device returns the device this executor runs on.
	Device() Device
}
